package fractional_test

import (
	"context"
	"time"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/issuer"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/store/schema"
)

// fakeStore implements store.Store with function fields so each test wires
// only the calls it expects
type fakeStore struct {
	getProfileByIDFn   func(ctx context.Context, id string) (*schema.Profile, error)
	fractionalizeFn    func(ctx context.Context, input store.FractionalizeInput) (*schema.NFT, error)
	transferSharesFn   func(ctx context.Context, input store.TransferSharesInput) error
	getNFTByIDFn       func(ctx context.Context, id string) (*schema.NFT, error)
	findOrphanedFn     func(ctx context.Context, cutoff time.Time, limit int) ([]*schema.NFT, error)
	revertFn           func(ctx context.Context, nftID string) (bool, error)
	fractionalizeCalls []store.FractionalizeInput
	transferCalls      []store.TransferSharesInput
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
	f.fractionalizeCalls = append(f.fractionalizeCalls, input)
	if f.fractionalizeFn != nil {
		return f.fractionalizeFn(ctx, input)
	}
	return &schema.NFT{ID: input.NFTID, IsFractionalized: true}, nil
}

func (f *fakeStore) TransferShares(ctx context.Context, input store.TransferSharesInput) error {
	f.transferCalls = append(f.transferCalls, input)
	if f.transferSharesFn != nil {
		return f.transferSharesFn(ctx, input)
	}
	return nil
}

func (f *fakeStore) GetHoldingsByNFT(ctx context.Context, nftID string) ([]*schema.FractionalToken, error) {
	return nil, nil
}

func (f *fakeStore) GetTransactionsByNFT(ctx context.Context, nftID string, limit int, offset int) ([]*schema.Transaction, error) {
	return nil, nil
}

func (f *fakeStore) FindOrphanedFractionalizations(ctx context.Context, cutoff time.Time, limit int) ([]*schema.NFT, error) {
	if f.findOrphanedFn != nil {
		return f.findOrphanedFn(ctx, cutoff, limit)
	}
	return nil, nil
}

func (f *fakeStore) RevertFractionalization(ctx context.Context, nftID string) (bool, error) {
	if f.revertFn != nil {
		return f.revertFn(ctx, nftID)
	}
	return false, nil
}

// fakeIssuer implements issuer.TokenIssuer
type fakeIssuer struct {
	createFractionalFn func(ctx context.Context, name string, symbol string, supply int) (*issuer.IssueReceipt, error)
	transferFn         func(ctx context.Context, tokenID domain.TokenID, to domain.AccountID, amount int) (*issuer.TransferReceipt, error)
	retireFn           func(ctx context.Context, tokenID domain.TokenID) error
	transferCalls      []domain.TokenID
	retireCalls        []domain.TokenID
}

func (f *fakeIssuer) CreateNFT(ctx context.Context, name string, symbol string, metadata string) (*issuer.MintReceipt, error) {
	return nil, domain.ErrNotImplemented
}

func (f *fakeIssuer) CreateFractionalToken(ctx context.Context, name string, symbol string, supply int) (*issuer.IssueReceipt, error) {
	if f.createFractionalFn != nil {
		return f.createFractionalFn(ctx, name, symbol, supply)
	}
	return &issuer.IssueReceipt{TokenID: "0.0.5001", Supply: supply, TransactionID: "0.0.2@1700000000.000000001"}, nil
}

func (f *fakeIssuer) Transfer(ctx context.Context, tokenID domain.TokenID, to domain.AccountID, amount int) (*issuer.TransferReceipt, error) {
	f.transferCalls = append(f.transferCalls, tokenID)
	if f.transferFn != nil {
		return f.transferFn(ctx, tokenID, to, amount)
	}
	return &issuer.TransferReceipt{Status: "SUCCESS", TransactionID: "0.0.2@1700000000.000000002"}, nil
}

func (f *fakeIssuer) RetireToken(ctx context.Context, tokenID domain.TokenID) error {
	f.retireCalls = append(f.retireCalls, tokenID)
	if f.retireFn != nil {
		return f.retireFn(ctx, tokenID)
	}
	return nil
}

// fakePublisher implements messaging.Publisher
type fakePublisher struct {
	publishFn func(ctx context.Context, event *domain.OwnershipEvent) error
	published []*domain.OwnershipEvent
}

func (f *fakePublisher) PublishEvent(ctx context.Context, event *domain.OwnershipEvent) error {
	f.published = append(f.published, event)
	if f.publishFn != nil {
		return f.publishFn(ctx, event)
	}
	return nil
}

func (f *fakePublisher) Close() {}

// fakeClock implements adapter.Clock with a fixed instant
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time                  { return f.now }
func (f *fakeClock) Since(t time.Time) time.Duration { return f.now.Sub(t) }
func (f *fakeClock) Sleep(d time.Duration)           {}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- f.now
	return ch
}
