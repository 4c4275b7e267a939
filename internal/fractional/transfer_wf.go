package fractional

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/issuer"
	"github.com/fractionft/fractionft/internal/logger"
	"github.com/fractionft/fractionft/internal/types"
)

// TransferShares moves shares between holders. The ledger mirror runs first
// when the recipient has a wallet on file; the bookkeeping transaction then
// debits, credits and logs in one commit. When the bookkeeping fails after a
// committed mirror, the workflow surfaces a PartialFailure carrying the ledger
// transaction instead of pretending either outcome.
func (w *workerCore) TransferShares(ctx workflow.Context, req *TransferRequest) (*TransferResult, error) {
	logger.InfoWf(ctx, "Processing share transfer",
		zap.String("nftID", req.NFTID),
		zap.String("from", req.FromUserID),
		zap.String("to", req.ToUserID),
		zap.Int("amount", req.Amount),
	)

	// Step 1: Mirror the movement on the ledger. Single attempt, token
	// movements are not idempotent.
	mirrorOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	mirrorCtx := workflow.WithActivityOptions(ctx, mirrorOptions)

	var mirror *issuer.TransferReceipt
	err := workflow.ExecuteActivity(mirrorCtx, w.executor.MirrorShareTransfer, MirrorTransferInput{
		FractionTokenID: req.FractionTokenID,
		ToUserID:        req.ToUserID,
		Amount:          req.Amount,
	}).Get(ctx, &mirror)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to mirror share transfer"),
			zap.Error(err),
			zap.String("nftID", req.NFTID),
		)
		return nil, err
	}

	transactionHash := ""
	if mirror != nil {
		transactionHash = mirror.TransactionID
	}

	// Step 2: Apply the bookkeeping
	applyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	applyCtx := workflow.WithActivityOptions(ctx, applyOptions)

	err = workflow.ExecuteActivity(applyCtx, w.executor.ApplyShareTransfer, ApplyTransferInput{
		NFTID:           req.NFTID,
		FromUserID:      req.FromUserID,
		ToUserID:        req.ToUserID,
		Amount:          req.Amount,
		TransactionHash: transactionHash,
	}).Get(ctx, nil)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to apply share transfer"),
			zap.Error(err),
			zap.String("nftID", req.NFTID),
		)

		if mirror != nil {
			// The mirrored tokens sit in the recipient's wallet and cannot be
			// pulled back without their signature. Surface both sides rather
			// than reporting a plain bookkeeping failure; the transaction log
			// never recorded the transfer, so the books stay consistent on
			// their own.
			logger.ErrorWf(ctx,
				fmt.Errorf("bookkeeping failed after ledger movement committed"),
				zap.String("nftID", req.NFTID),
				zap.String("ledgerTransactionID", mirror.TransactionID),
			)
			return nil, temporal.NewApplicationErrorWithCause(
				fmt.Sprintf("bookkeeping failed after ledger transaction %s committed", mirror.TransactionID),
				"PartialFailure",
				&domain.PartialFailureError{
					Stage: "apply",
					Cause: err,
				},
			)
		}
		return nil, err
	}

	// Step 3: Announce. Best effort.
	publishOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	publishCtx := workflow.WithActivityOptions(ctx, publishOptions)

	event := &domain.OwnershipEvent{
		EventType:       domain.OwnershipEventTransfer,
		NFTID:           req.NFTID,
		FractionTokenID: types.StringPtr(req.FractionTokenID),
		FromUserID:      types.StringPtr(req.FromUserID),
		ToUserID:        types.StringPtr(req.ToUserID),
		Amount:          req.Amount,
	}
	if transactionHash != "" {
		event.TransactionHash = types.StringPtr(transactionHash)
	}
	if err := workflow.ExecuteActivity(publishCtx, w.executor.PublishOwnershipEvent, event).Get(ctx, nil); err != nil {
		logger.WarnWf(ctx, "Failed to publish transfer event",
			zap.Error(err),
			zap.String("nftID", req.NFTID),
		)
	}

	logger.InfoWf(ctx, "Share transfer committed",
		zap.String("nftID", req.NFTID),
		zap.Int("amount", req.Amount),
	)

	return &TransferResult{
		NFTID:           req.NFTID,
		TransactionHash: transactionHash,
	}, nil
}
