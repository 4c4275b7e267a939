package fractional

import (
	"go.temporal.io/sdk/workflow"
)

// FractionalizeRequest is the argument of the fractionalization workflow.
// Preconditions (ownership, share range, current flag state) are checked
// before the workflow starts; the store re-enforces the flag atomically.
type FractionalizeRequest struct {
	NFTID      string `json:"nft_id"`
	NFTName    string `json:"nft_name"`
	OwnerID    string `json:"owner_id"`
	ShareCount int    `json:"share_count"`
}

// FractionalizeResult reports a committed fractionalization
type FractionalizeResult struct {
	NFTID           string `json:"nft_id"`
	FractionTokenID string `json:"fraction_token_id"`
	TransactionHash string `json:"transaction_hash"`
	ShareCount      int    `json:"share_count"`
}

// TransferRequest is the argument of the share transfer workflow
type TransferRequest struct {
	NFTID           string `json:"nft_id"`
	FractionTokenID string `json:"fraction_token_id"`
	FromUserID      string `json:"from_user_id"`
	ToUserID        string `json:"to_user_id"`
	Amount          int    `json:"amount"`
}

// TransferResult reports a committed share transfer
type TransferResult struct {
	NFTID           string `json:"nft_id"`
	TransactionHash string `json:"transaction_hash"`
}

// WorkerCore defines the interface for the ownership-change workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockWorkerCore
type WorkerCore interface {
	// FractionalizeNFT runs the issue-then-apply saga for splitting an NFT
	// into shares
	FractionalizeNFT(ctx workflow.Context, req *FractionalizeRequest) (*FractionalizeResult, error)

	// TransferShares moves shares between holders and logs the transfer
	TransferShares(ctx workflow.Context, req *TransferRequest) (*TransferResult, error)
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor) WorkerCore {
	return &workerCore{executor: executor}
}
