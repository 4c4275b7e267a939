package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/fractionft/fractionft/internal/adapter"
	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/logger"
	"github.com/fractionft/fractionft/internal/messaging"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/store/schema"
)

// ReconcilerConfig holds configuration for the fractionalization reconciler
type ReconcilerConfig struct {
	Interval       time.Duration // Time to sleep between sweep cycles
	GracePeriod    time.Duration // Orphans younger than this are left alone
	BatchSize      int           // Orphans to process per cycle
	WorkerPoolSize int           // Concurrent rollback workers
}

// reconciler rolls back orphaned fractionalizations: NFTs whose flag was
// flipped but whose holdings never materialized (a crash between the flag
// commit and anything that would have repaired it). The grace period keeps
// in-flight workflows out of the sweep.
type reconciler struct {
	config    *ReconcilerConfig
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewReconciler creates a new fractionalization reconciler
func NewReconciler(
	config *ReconcilerConfig,
	st store.Store,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Sweeper {
	return &reconciler{
		config:    config,
		store:     st,
		publisher: publisher,
		clock:     clock,
	}
}

// Name returns the sweeper's name
func (r *reconciler) Name() string {
	return "fractionalization-reconciler"
}

// Start begins the reconciler's main loop. A stopped reconciler may be
// started again.
func (r *reconciler) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("reconciler already running")
	}

	// Fresh channels per run so a restart never sees the closed pair from
	// the previous run
	stop := make(chan struct{})
	stopped := make(chan struct{})
	r.stopChan = stop
	r.stoppedCh = stopped

	defer func() {
		// Release Stop before clearing the flag; the next Start may reassign
		// the channels as soon as the flag clears
		close(stopped)
		r.running.Store(false)
	}()

	logger.InfoCtx(ctx, "Starting fractionalization reconciler",
		zap.Duration("interval", r.config.Interval),
		zap.Duration("grace_period", r.config.GracePeriod),
		zap.Int("batch_size", r.config.BatchSize),
		zap.Int("worker_pool_size", r.config.WorkerPoolSize),
	)

	r.pool = pond.NewPool(
		r.config.WorkerPoolSize,
		pond.WithQueueSize(r.config.BatchSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Reconciler stopping due to context cancellation", zap.Error(ctx.Err()))
			r.cleanup()
			return nil
		case <-stop:
			logger.InfoCtx(ctx, "Reconciler stop requested")
			r.cleanup()
			return nil
		default:
			if err := r.runSweepCycle(ctx, stop); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (r *reconciler) cleanup() {
	if r.pool != nil {
		r.pool.StopAndWait()
	}
}

// Stop gracefully stops the reconciler with timeout support
func (r *reconciler) Stop(ctx context.Context) error {
	if !r.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping fractionalization reconciler")
	close(r.stopChan)

	select {
	case <-r.stoppedCh:
		logger.InfoCtx(ctx, "Reconciler stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconciler stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (r *reconciler) runSweepCycle(ctx context.Context, stop <-chan struct{}) error {
	startTime := r.clock.Now()

	cutoff := startTime.Add(-r.config.GracePeriod)
	orphans, err := r.store.FindOrphanedFractionalizations(ctx, cutoff, r.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to find orphaned fractionalizations: %w", err)
	}

	if len(orphans) == 0 {
		if !r.sleep(ctx, r.config.Interval, stop) {
			return ctx.Err()
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found orphaned fractionalizations", zap.Int("count", len(orphans)))

	var revertedCount, skippedCount, failedCount atomic.Int32

	for _, nft := range orphans {
		r.pool.Submit(func() {
			switch reverted, err := r.revertWithRetry(ctx, nft); {
			case err != nil:
				failedCount.Add(1)
				logger.ErrorCtx(ctx, fmt.Errorf("failed to revert orphaned fractionalization: %w", err),
					zap.String("nft_id", nft.ID),
				)
			case reverted:
				revertedCount.Add(1)
			default:
				// A holding appeared or the flag cleared since the scan
				skippedCount.Add(1)
			}
		})
	}

	r.pool.StopAndWait()

	// Recreate pool for next cycle
	r.pool = pond.NewPool(
		r.config.WorkerPoolSize,
		pond.WithQueueSize(r.config.BatchSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Reconciliation cycle completed",
		zap.Duration("duration", r.clock.Since(startTime)),
		zap.Int("found", len(orphans)),
		zap.Int32("reverted", revertedCount.Load()),
		zap.Int32("skipped", skippedCount.Load()),
		zap.Int32("failed", failedCount.Load()),
	)

	if !r.sleep(ctx, r.config.Interval, stop) {
		return ctx.Err()
	}

	return nil
}

// revertWithRetry rolls a single orphan back, retrying transient database
// failures, and announces the reversal on success
func (r *reconciler) revertWithRetry(ctx context.Context, nft *schema.NFT) (bool, error) {
	var reverted bool

	operation := func() error {
		var err error
		reverted, err = r.store.RevertFractionalization(ctx, nft.ID)
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		return false, err
	}

	if reverted {
		logger.InfoCtx(ctx, "Reverted orphaned fractionalization",
			zap.String("nft_id", nft.ID),
		)

		event := &domain.OwnershipEvent{
			EventID:         domain.NewOwnershipEventID(),
			EventType:       domain.OwnershipEventReversal,
			NFTID:           nft.ID,
			FractionTokenID: nft.FractionTokenID,
			Timestamp:       r.clock.Now().UTC(),
		}
		if err := r.publisher.PublishEvent(ctx, event); err != nil {
			// The reversal log entry is the record of truth, the event is
			// best-effort fan-out
			logger.WarnCtx(ctx, "Failed to publish reversal event",
				zap.Error(err),
				zap.String("nft_id", nft.ID),
			)
		}
	}

	return reverted, nil
}

// sleep sleeps for the given duration but can be interrupted by context
// cancellation or a stop request. Returns false when interrupted.
func (r *reconciler) sleep(ctx context.Context, duration time.Duration, stop <-chan struct{}) bool {
	select {
	case <-r.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-stop:
		return false
	}
}
