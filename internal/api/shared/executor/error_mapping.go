package executor

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	apierrors "github.com/fractionft/fractionft/internal/api/shared/errors"
	"github.com/fractionft/fractionft/internal/domain"
)

// mapPreconditionError translates the domain gate sentinels into API errors
func mapPreconditionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidShareCount):
		return apierrors.NewValidationError(err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		return apierrors.NewValidationError(err.Error())
	case errors.Is(err, domain.ErrNFTNotFound):
		return apierrors.NewNotFoundError("NFT not found")
	case errors.Is(err, domain.ErrNotOwner):
		return apierrors.NewForbiddenError("Only the owner can perform this action")
	case errors.Is(err, domain.ErrAlreadyFractionalized):
		return apierrors.NewConflictError("NFT is already fractionalized")
	case errors.Is(err, domain.ErrNotFractionalized):
		return apierrors.NewConflictError("NFT is not fractionalized")
	case errors.Is(err, domain.ErrHoldingNotFound):
		return apierrors.NewNotFoundError("Sender holds no shares of this NFT")
	case errors.Is(err, domain.ErrInsufficientShares):
		return apierrors.NewConflictError("Transfer exceeds sender balance")
	case errors.Is(err, domain.ErrSelfTransfer):
		return apierrors.NewValidationError(err.Error())
	default:
		return apierrors.NewInternalError(err.Error())
	}
}

// mapWorkflowError translates a workflow outcome into an API error. Activities
// convert domain sentinels into typed non-retryable application errors, so the
// type string is the contract here.
func mapWorkflowError(err error, fallback string) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return apierrors.NewServiceError(fmt.Sprintf("%s: %v", fallback, err))
	}

	switch appErr.Type() {
	case "InvalidShareCount", "InvalidAmount", "SelfTransfer":
		return apierrors.NewValidationError(appErr.Message())
	case "NFTNotFound", "HoldingNotFound":
		return apierrors.NewNotFoundError(appErr.Message())
	case "AlreadyFractionalized", "NotFractionalized", "InsufficientShares":
		return apierrors.NewConflictError(appErr.Message())
	case "PartialFailure":
		return apierrors.NewPartialFailureError(appErr.Message())
	default:
		return apierrors.NewServiceError(fmt.Sprintf("%s: %s", fallback, appErr.Message()))
	}
}
