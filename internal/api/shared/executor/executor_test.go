package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/fractionft/fractionft/internal/api/shared/dto"
	apierrors "github.com/fractionft/fractionft/internal/api/shared/errors"
	"github.com/fractionft/fractionft/internal/api/shared/executor"
	"github.com/fractionft/fractionft/internal/fractional"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/store/schema"
	"github.com/fractionft/fractionft/internal/types"
)

// fakeStore implements store.Store with function fields so each test wires
// only the calls it expects
type fakeStore struct {
	getNFTByIDFn     func(ctx context.Context, id string) (*schema.NFT, error)
	getProfileByIDFn func(ctx context.Context, id string) (*schema.Profile, error)
	getHoldingsFn    func(ctx context.Context, nftID string) ([]*schema.FractionalToken, error)
}

func (f *fakeStore) GetProfileByID(ctx context.Context, id string) (*schema.Profile, error) {
	if f.getProfileByIDFn != nil {
		return f.getProfileByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeStore) EnsureProfile(ctx context.Context, id string, email string) (*schema.Profile, error) {
	return &schema.Profile{ID: id, Email: email}, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id string, input store.UpdateProfileInput) (*schema.Profile, error) {
	return &schema.Profile{ID: id}, nil
}

func (f *fakeStore) CreateNFT(ctx context.Context, input store.CreateNFTInput) (*schema.NFT, error) {
	return nil, nil
}

func (f *fakeStore) GetNFTByID(ctx context.Context, id string) (*schema.NFT, error) {
	if f.getNFTByIDFn != nil {
		return f.getNFTByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeStore) GetNFTsByOwner(ctx context.Context, ownerID string, limit int, offset int) ([]*schema.NFT, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) FractionalizeNFT(ctx context.Context, input store.FractionalizeInput) (*schema.NFT, error) {
	return nil, nil
}

func (f *fakeStore) TransferShares(ctx context.Context, input store.TransferSharesInput) error {
	return nil
}

func (f *fakeStore) GetHoldingsByNFT(ctx context.Context, nftID string) ([]*schema.FractionalToken, error) {
	if f.getHoldingsFn != nil {
		return f.getHoldingsFn(ctx, nftID)
	}
	return nil, nil
}

func (f *fakeStore) GetTransactionsByNFT(ctx context.Context, nftID string, limit int, offset int) ([]*schema.Transaction, error) {
	return nil, nil
}

func (f *fakeStore) FindOrphanedFractionalizations(ctx context.Context, cutoff time.Time, limit int) ([]*schema.NFT, error) {
	return nil, nil
}

func (f *fakeStore) RevertFractionalization(ctx context.Context, nftID string) (bool, error) {
	return false, nil
}

// fakeWorkflowRun implements client.WorkflowRun
type fakeWorkflowRun struct {
	id    string
	runID string
	getFn func(valuePtr interface{}) error
}

func (f *fakeWorkflowRun) GetID() string    { return f.id }
func (f *fakeWorkflowRun) GetRunID() string { return f.runID }

func (f *fakeWorkflowRun) Get(ctx context.Context, valuePtr interface{}) error {
	if f.getFn != nil {
		return f.getFn(valuePtr)
	}
	return nil
}

func (f *fakeWorkflowRun) GetWithOptions(ctx context.Context, valuePtr interface{}, options client.WorkflowRunGetOptions) error {
	return f.Get(ctx, valuePtr)
}

// fakeOrchestrator counts workflow starts
type fakeOrchestrator struct {
	run   *fakeWorkflowRun
	calls int
}

func (f *fakeOrchestrator) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.calls++
	if f.run != nil {
		return f.run, nil
	}
	return &fakeWorkflowRun{}, nil
}

// transferFixture wires a fractionalized NFT, an existing recipient and the
// given holdings
func transferFixture(holdings []*schema.FractionalToken) (*fakeStore, *fakeOrchestrator, executor.Executor) {
	st := &fakeStore{
		getNFTByIDFn: func(ctx context.Context, id string) (*schema.NFT, error) {
			return &schema.NFT{
				ID:               id,
				OwnerID:          "user-1",
				Name:             "Cosmic Whale #42",
				IsFractionalized: true,
				TotalFractions:   types.IntPtr(100),
				FractionTokenID:  types.StringPtr("0.0.5001"),
			}, nil
		},
		getProfileByIDFn: func(ctx context.Context, id string) (*schema.Profile, error) {
			return &schema.Profile{ID: id, Email: "holder@example.com"}, nil
		},
		getHoldingsFn: func(ctx context.Context, nftID string) ([]*schema.FractionalToken, error) {
			return holdings, nil
		},
	}
	orch := &fakeOrchestrator{}
	return st, orch, executor.NewExecutor(st, orch, "fractionalization")
}

func TestTransferShares_InsufficientBalanceRejectedBeforeWorkflow(t *testing.T) {
	_, orch, exec := transferFixture([]*schema.FractionalToken{
		{NFTID: "nft-1", HolderID: "user-1", Amount: 30},
	})

	_, err := exec.TransferShares(context.Background(), "user-1", "nft-1", dto.TransferRequest{
		ToUserID: "user-2",
		Amount:   100,
	})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrCodeConflict, apiErr.Code)
	// No ledger movement may start for a transfer the books cannot honor
	assert.Zero(t, orch.calls)
}

func TestTransferShares_NoHoldingRejectedBeforeWorkflow(t *testing.T) {
	_, orch, exec := transferFixture([]*schema.FractionalToken{
		{NFTID: "nft-1", HolderID: "user-9", Amount: 100},
	})

	_, err := exec.TransferShares(context.Background(), "user-1", "nft-1", dto.TransferRequest{
		ToUserID: "user-2",
		Amount:   10,
	})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)
	assert.Zero(t, orch.calls)
}

func TestTransferShares_SufficientBalanceStartsWorkflow(t *testing.T) {
	_, orch, exec := transferFixture([]*schema.FractionalToken{
		{NFTID: "nft-1", HolderID: "user-1", Amount: 30},
	})
	orch.run = &fakeWorkflowRun{
		id:    "transfer-run",
		runID: "run-1",
		getFn: func(valuePtr interface{}) error {
			if result, ok := valuePtr.(*fractional.TransferResult); ok {
				*result = fractional.TransferResult{NFTID: "nft-1", TransactionHash: "0.0.2@1700000000.000000002"}
			}
			return nil
		},
	}

	resp, err := exec.TransferShares(context.Background(), "user-1", "nft-1", dto.TransferRequest{
		ToUserID: "user-2",
		Amount:   10,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, 1, orch.calls)
	assert.Equal(t, "nft-1", resp.NFTID)
	assert.Equal(t, "user-1", resp.FromUserID)
	assert.Equal(t, "user-2", resp.ToUserID)
	assert.Equal(t, 10, resp.Amount)
	assert.Equal(t, "0.0.2@1700000000.000000002", resp.TransactionHash)
	assert.Equal(t, "transfer-run", resp.WorkflowID)
}
