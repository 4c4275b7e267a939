package constants

const (
	// DEFAULT_NFTS_LIMIT is the default page size for NFT listings
	DEFAULT_NFTS_LIMIT = 50
	// DEFAULT_TRANSACTIONS_LIMIT is the default page size for transaction listings
	DEFAULT_TRANSACTIONS_LIMIT = 50
	// DEFAULT_OFFSET is the default pagination offset
	DEFAULT_OFFSET = 0
	// MAX_LIMIT caps any requested page size
	MAX_LIMIT = 200
)
