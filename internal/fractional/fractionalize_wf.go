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

// FractionalizeNFT splits an NFT into fungible shares.
//
// The saga has one external effect (token issuance) followed by one database
// transaction (flag flip, initial holding, audit log entry). Issuance runs
// first so a failure there leaves every table untouched. When the bookkeeping
// fails after issuance succeeded, the issued token is retired; if that
// compensation also fails, the workflow surfaces a PartialFailure error
// instead of pretending either outcome.
func (w *workerCore) FractionalizeNFT(ctx workflow.Context, req *FractionalizeRequest) (*FractionalizeResult, error) {
	logger.InfoWf(ctx, "Processing fractionalization",
		zap.String("nftID", req.NFTID),
		zap.String("ownerID", req.OwnerID),
		zap.Int("shareCount", req.ShareCount),
	)

	// Step 1: Issue the share token. Single attempt; the issuer is not
	// idempotent, so a retry after an ambiguous failure could mint twice.
	issueOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	issueCtx := workflow.WithActivityOptions(ctx, issueOptions)

	var receipt issuer.IssueReceipt
	err := workflow.ExecuteActivity(issueCtx, w.executor.IssueFractionalToken, IssueTokenInput{
		NFTID:      req.NFTID,
		NFTName:    req.NFTName,
		ShareCount: req.ShareCount,
	}).Get(ctx, &receipt)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to issue fractional token"),
			zap.Error(err),
			zap.String("nftID", req.NFTID),
		)
		return nil, err
	}

	// Step 2: Apply the bookkeeping. Single attempt for the same reason; the
	// guarded UPDATE inside makes a lost race non-retryable anyway.
	applyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	applyCtx := workflow.WithActivityOptions(ctx, applyOptions)

	var applied ApplyFractionalizationResult
	err = workflow.ExecuteActivity(applyCtx, w.executor.ApplyFractionalization, ApplyFractionalizationInput{
		NFTID:    req.NFTID,
		HolderID: req.OwnerID,
		Receipt:  receipt,
	}).Get(ctx, &applied)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to apply fractionalization, retiring issued token"),
			zap.Error(err),
			zap.String("nftID", req.NFTID),
			zap.String("fractionTokenID", receipt.TokenID.String()),
		)

		// Compensate: retire the token issued in step 1. Retried hard, the
		// alternative is a leaked token nothing references.
		retireOptions := workflow.ActivityOptions{
			StartToCloseTimeout: 1 * time.Minute,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval:    time.Second,
				BackoffCoefficient: 2.0,
				MaximumAttempts:    5,
			},
		}
		retireCtx := workflow.WithActivityOptions(ctx, retireOptions)

		retireErr := workflow.ExecuteActivity(retireCtx, w.executor.RetireFractionalToken, receipt.TokenID.String()).Get(ctx, nil)
		if retireErr != nil {
			logger.ErrorWf(ctx,
				fmt.Errorf("compensation failed, issued token leaked"),
				zap.Error(retireErr),
				zap.String("fractionTokenID", receipt.TokenID.String()),
			)
			return nil, temporal.NewApplicationErrorWithCause(
				fmt.Sprintf("bookkeeping failed and issued token %s could not be retired", receipt.TokenID),
				"PartialFailure",
				&domain.PartialFailureError{
					Stage:           "apply",
					Cause:           err,
					CompensationErr: retireErr,
				},
			)
		}

		return nil, err
	}

	// Step 3: Announce the new ownership shape. Best effort, the committed
	// transaction log is the record of truth.
	publishOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	publishCtx := workflow.WithActivityOptions(ctx, publishOptions)

	event := &domain.OwnershipEvent{
		EventType:       domain.OwnershipEventFractionalization,
		NFTID:           req.NFTID,
		FractionTokenID: types.StringPtr(applied.FractionTokenID),
		ToUserID:        types.StringPtr(req.OwnerID),
		Amount:          req.ShareCount,
		TransactionHash: types.StringPtr(applied.TransactionHash),
	}
	if err := workflow.ExecuteActivity(publishCtx, w.executor.PublishOwnershipEvent, event).Get(ctx, nil); err != nil {
		logger.WarnWf(ctx, "Failed to publish fractionalization event",
			zap.Error(err),
			zap.String("nftID", req.NFTID),
		)
	}

	logger.InfoWf(ctx, "Fractionalization committed",
		zap.String("nftID", req.NFTID),
		zap.String("fractionTokenID", applied.FractionTokenID),
	)

	return &FractionalizeResult{
		NFTID:           req.NFTID,
		FractionTokenID: applied.FractionTokenID,
		TransactionHash: applied.TransactionHash,
		ShareCount:      req.ShareCount,
	}, nil
}
