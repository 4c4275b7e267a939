package hedera

import (
	"context"
	"fmt"

	"github.com/fractionft/fractionft/internal/adapter"
	"github.com/fractionft/fractionft/internal/domain"
)

// TokenInfo represents token details from the mirror node API
type TokenInfo struct {
	TokenID     string `json:"token_id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
	TotalSupply string `json:"total_supply"`
	TreasuryID  string `json:"treasury_account_id"`
	Deleted     bool   `json:"deleted"`
}

// NFTInfo represents a single NFT serial from the mirror node API
type NFTInfo struct {
	TokenID      string `json:"token_id"`
	SerialNumber int64  `json:"serial_number"`
	AccountID    string `json:"account_id"`
	Metadata     string `json:"metadata"`
	Deleted      bool   `json:"deleted"`
}

// Client defines the interface for mirror node operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/hedera_client.go -package=mocks -mock_names=Client=MockHederaClient
type Client interface {
	// GetTokenInfo fetches token details from the mirror node
	GetTokenInfo(ctx context.Context, tokenID domain.TokenID) (*TokenInfo, error)
	// GetNFTInfo fetches a single NFT serial from the mirror node
	GetNFTInfo(ctx context.Context, tokenID domain.TokenID, serialNumber int64) (*NFTInfo, error)
}

// MirrorClient implements Client against the public mirror node REST API
type MirrorClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
}

// NewMirrorClient creates a new mirror node client
func NewMirrorClient(httpClient adapter.HTTPClient, apiURL string) Client {
	return &MirrorClient{
		httpClient: httpClient,
		apiURL:     apiURL,
	}
}

// GetTokenInfo fetches token details from the mirror node
func (c *MirrorClient) GetTokenInfo(ctx context.Context, tokenID domain.TokenID) (*TokenInfo, error) {
	if !tokenID.Valid() {
		return nil, fmt.Errorf("invalid token ID: %s", tokenID)
	}

	url := fmt.Sprintf("%s/api/v1/tokens/%s", c.apiURL, tokenID)

	var info TokenInfo
	if err := c.httpClient.Get(ctx, url, &info); err != nil {
		return nil, fmt.Errorf("failed to call mirror node API: %w", err)
	}

	return &info, nil
}

// GetNFTInfo fetches a single NFT serial from the mirror node
func (c *MirrorClient) GetNFTInfo(ctx context.Context, tokenID domain.TokenID, serialNumber int64) (*NFTInfo, error) {
	if !tokenID.Valid() {
		return nil, fmt.Errorf("invalid token ID: %s", tokenID)
	}

	url := fmt.Sprintf("%s/api/v1/tokens/%s/nfts/%d", c.apiURL, tokenID, serialNumber)

	var info NFTInfo
	if err := c.httpClient.Get(ctx, url, &info); err != nil {
		return nil, fmt.Errorf("failed to call mirror node API: %w", err)
	}

	return &info, nil
}
