package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/logger"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/store/schema"
	"github.com/fractionft/fractionft/internal/sweeper"
	"github.com/fractionft/fractionft/internal/types"
)

// fakeStore implements store.Store; only the reconciliation methods matter here
type fakeStore struct {
	mu            sync.Mutex
	orphans       []*schema.NFT
	scanCount     int
	revertFn      func(nftID string) (bool, error)
	revertedNFTs  []string
	scannedCutoff time.Time
}

func (f *fakeStore) FindOrphanedFractionalizations(ctx context.Context, cutoff time.Time, limit int) ([]*schema.NFT, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCount++
	f.scannedCutoff = cutoff
	if f.scanCount > 1 {
		// Only the first cycle finds work
		return nil, nil
	}
	return f.orphans, nil
}

func (f *fakeStore) RevertFractionalization(ctx context.Context, nftID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reverted, err := f.revertFn(nftID)
	if err == nil && reverted {
		f.revertedNFTs = append(f.revertedNFTs, nftID)
	}
	return reverted, err
}

func (f *fakeStore) GetProfileByID(ctx context.Context, id string) (*schema.Profile, error) {
	return nil, nil
}

func (f *fakeStore) EnsureProfile(ctx context.Context, id string, email string) (*schema.Profile, error) {
	return nil, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id string, input store.UpdateProfileInput) (*schema.Profile, error) {
	return nil, nil
}

func (f *fakeStore) CreateNFT(ctx context.Context, input store.CreateNFTInput) (*schema.NFT, error) {
	return nil, nil
}

func (f *fakeStore) GetNFTByID(ctx context.Context, id string) (*schema.NFT, error) {
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
	return nil, nil
}

func (f *fakeStore) GetTransactionsByNFT(ctx context.Context, nftID string, limit int, offset int) ([]*schema.Transaction, error) {
	return nil, nil
}

// fakePublisher implements messaging.Publisher and signals each publish
type fakePublisher struct {
	mu        sync.Mutex
	published []*domain.OwnershipEvent
	notify    chan struct{}
}

func (f *fakePublisher) PublishEvent(ctx context.Context, event *domain.OwnershipEvent) error {
	f.mu.Lock()
	f.published = append(f.published, event)
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakePublisher) Close() {}

func (f *fakePublisher) events() []*domain.OwnershipEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.OwnershipEvent(nil), f.published...)
}

// fakeClock fires After immediately so cycles never block the test
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

func newTestReconciler(st *fakeStore, pub *fakePublisher, clock *fakeClock) sweeper.Sweeper {
	_ = logger.Initialize(logger.Config{Debug: true})
	return sweeper.NewReconciler(&sweeper.ReconcilerConfig{
		Interval:       time.Millisecond,
		GracePeriod:    10 * time.Minute,
		BatchSize:      10,
		WorkerPoolSize: 2,
	}, st, pub, clock)
}

func TestReconciler_RevertsOrphans(t *testing.T) {
	st := &fakeStore{
		orphans: []*schema.NFT{
			{ID: "nft-1", IsFractionalized: true, FractionTokenID: types.StringPtr("0.0.5001")},
			{ID: "nft-2", IsFractionalized: true, FractionTokenID: types.StringPtr("0.0.5002")},
		},
		revertFn: func(nftID string) (bool, error) { return true, nil },
	}
	pub := &fakePublisher{notify: make(chan struct{}, 10)}
	clock := &fakeClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}

	r := newTestReconciler(st, pub, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	// Wait for both reversal events
	for range 2 {
		select {
		case <-pub.notify:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reversal events")
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, r.Stop(stopCtx))
	require.NoError(t, <-done)

	st.mu.Lock()
	assert.ElementsMatch(t, []string{"nft-1", "nft-2"}, st.revertedNFTs)
	// Cutoff honors the grace period
	assert.Equal(t, clock.now.Add(-10*time.Minute), st.scannedCutoff)
	st.mu.Unlock()

	events := pub.events()
	require.Len(t, events, 2)
	for _, event := range events {
		assert.Equal(t, domain.OwnershipEventReversal, event.EventType)
		assert.NotEmpty(t, event.EventID)
		assert.NotNil(t, event.FractionTokenID)
	}
}

func TestReconciler_SkipsRepairedOrphans(t *testing.T) {
	scanned := make(chan struct{}, 1)
	st := &fakeStore{
		orphans: []*schema.NFT{
			{ID: "nft-1", IsFractionalized: true},
		},
		revertFn: func(nftID string) (bool, error) {
			// A holding appeared between the scan and the revert
			select {
			case scanned <- struct{}{}:
			default:
			}
			return false, nil
		},
	}
	pub := &fakePublisher{notify: make(chan struct{}, 1)}
	clock := &fakeClock{now: time.Now()}

	r := newTestReconciler(st, pub, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	select {
	case <-scanned:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for revert attempt")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, r.Stop(stopCtx))
	require.NoError(t, <-done)

	// No reversal, no event
	st.mu.Lock()
	assert.Empty(t, st.revertedNFTs)
	st.mu.Unlock()
	assert.Empty(t, pub.events())
}

func TestReconciler_RetriesTransientRevertFailure(t *testing.T) {
	var attempts int
	var attemptsMu sync.Mutex
	st := &fakeStore{
		orphans: []*schema.NFT{
			{ID: "nft-1", IsFractionalized: true, FractionTokenID: types.StringPtr("0.0.5001")},
		},
		revertFn: func(nftID string) (bool, error) {
			attemptsMu.Lock()
			defer attemptsMu.Unlock()
			attempts++
			if attempts == 1 {
				return false, errors.New("connection reset")
			}
			return true, nil
		},
	}
	pub := &fakePublisher{notify: make(chan struct{}, 1)}
	clock := &fakeClock{now: time.Now()}

	r := newTestReconciler(st, pub, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	select {
	case <-pub.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reversal event")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, r.Stop(stopCtx))
	require.NoError(t, <-done)

	st.mu.Lock()
	assert.Equal(t, []string{"nft-1"}, st.revertedNFTs)
	st.mu.Unlock()

	attemptsMu.Lock()
	assert.GreaterOrEqual(t, attempts, 2)
	attemptsMu.Unlock()
}

func TestReconciler_RestartAfterStop(t *testing.T) {
	st := &fakeStore{revertFn: func(nftID string) (bool, error) { return false, nil }}
	pub := &fakePublisher{notify: make(chan struct{}, 1)}
	r := newTestReconciler(st, pub, &fakeClock{now: time.Now()})

	for run := 1; run <= 2; run++ {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- r.Start(ctx) }()

		// Each run must get through at least one scan cycle
		require.Eventually(t, func() bool {
			st.mu.Lock()
			defer st.mu.Unlock()
			return st.scanCount >= run
		}, 5*time.Second, time.Millisecond)

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		require.NoError(t, r.Stop(stopCtx))
		require.NoError(t, <-done)
		stopCancel()
		cancel()
	}
}

func TestReconciler_DoubleStart(t *testing.T) {
	st := &fakeStore{revertFn: func(nftID string) (bool, error) { return false, nil }}
	pub := &fakePublisher{notify: make(chan struct{}, 1)}
	r := newTestReconciler(st, pub, &fakeClock{now: time.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	// Give the first Start a moment to claim the running flag
	require.Eventually(t, func() bool {
		return r.Start(ctx) != nil
	}, 5*time.Second, 10*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, r.Stop(stopCtx))
	require.NoError(t, <-done)
}
