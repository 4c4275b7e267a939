package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/fractionft/fractionft/internal/api/shared/constants"
	"github.com/fractionft/fractionft/internal/api/shared/dto"
	apierrors "github.com/fractionft/fractionft/internal/api/shared/errors"
	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/fractional"
	temporalprovider "github.com/fractionft/fractionft/internal/providers/temporal"
	"github.com/fractionft/fractionft/internal/store"
)

// Executor is the interface for the API executor. It owns the precondition
// gates and translates workflow outcomes into API errors; the store enforces
// the same invariants atomically underneath.
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetProfile retrieves a profile, ensuring the row exists for the
	// authenticated identity
	GetProfile(ctx context.Context, userID string, email string) (*dto.ProfileResponse, error)

	// UpdateProfile applies a partial profile update
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)

	// RegisterNFT registers a new, not-yet-fractionalized NFT for the
	// authenticated user
	RegisterNFT(ctx context.Context, userID string, req dto.RegisterNFTRequest) (*dto.NFTResponse, error)

	// GetNFT retrieves a single NFT by ID
	GetNFT(ctx context.Context, nftID string) (*dto.NFTResponse, error)

	// ListNFTs retrieves the authenticated user's NFTs, newest first
	ListNFTs(ctx context.Context, ownerID string, limit *int, offset *int) (*dto.NFTListResponse, error)

	// FractionalizeNFT splits an NFT into shares through the fractionalization
	// saga and waits for the outcome
	FractionalizeNFT(ctx context.Context, actingUserID string, nftID string, fractions int) (*dto.FractionalizeResponse, error)

	// TransferShares moves shares to another profile through the transfer
	// workflow and waits for the outcome
	TransferShares(ctx context.Context, actingUserID string, nftID string, req dto.TransferRequest) (*dto.TransferResponse, error)

	// GetHoldings retrieves all share holdings of an NFT
	GetHoldings(ctx context.Context, nftID string) (*dto.HoldingListResponse, error)

	// GetTransactions retrieves an NFT's transaction log, newest first
	GetTransactions(ctx context.Context, nftID string, limit *int, offset *int) (*dto.TransactionListResponse, error)
}

type executor struct {
	store                 store.Store
	orchestrator          temporalprovider.TemporalOrchestrator
	orchestratorTaskQueue string
}

// NewExecutor creates a new API executor
func NewExecutor(st store.Store, orchestrator temporalprovider.TemporalOrchestrator, orchestratorTaskQueue string) Executor {
	return &executor{
		store:                 st,
		orchestrator:          orchestrator,
		orchestratorTaskQueue: orchestratorTaskQueue,
	}
}

func (e *executor) GetProfile(ctx context.Context, userID string, email string) (*dto.ProfileResponse, error) {
	profile, err := e.store.EnsureProfile(ctx, userID, email)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get profile: %v", err))
	}
	return dto.MapProfileToDTO(profile), nil
}

func (e *executor) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := e.store.UpdateProfile(ctx, userID, store.UpdateProfileInput{
		Username:      req.Username,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to update profile: %v", err))
	}
	if profile == nil {
		return nil, apierrors.NewNotFoundError("Profile not found")
	}
	return dto.MapProfileToDTO(profile), nil
}

func (e *executor) RegisterNFT(ctx context.Context, userID string, req dto.RegisterNFTRequest) (*dto.NFTResponse, error) {
	network := req.Network
	if network == "" {
		network = string(domain.NetworkHederaTestnet)
	}

	nft, err := e.store.CreateNFT(ctx, store.CreateNFTInput{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TokenID:     req.TokenID,
		Network:     network,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to register NFT: %v", err))
	}

	return dto.MapNFTToDTO(nft), nil
}

func (e *executor) GetNFT(ctx context.Context, nftID string) (*dto.NFTResponse, error) {
	nft, err := e.store.GetNFTByID(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get NFT: %v", err))
	}
	if nft == nil {
		return nil, nil
	}
	return dto.MapNFTToDTO(nft), nil
}

func (e *executor) ListNFTs(ctx context.Context, ownerID string, limit *int, offset *int) (*dto.NFTListResponse, error) {
	if limit == nil {
		defaultLimit := constants.DEFAULT_NFTS_LIMIT
		limit = &defaultLimit
	}
	if offset == nil {
		defaultOffset := constants.DEFAULT_OFFSET
		offset = &defaultOffset
	}

	nfts, total, err := e.store.GetNFTsByOwner(ctx, ownerID, *limit, *offset)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list NFTs: %v", err))
	}

	nftDTOs := make([]dto.NFTResponse, len(nfts))
	for i, nft := range nfts {
		nftDTOs[i] = *dto.MapNFTToDTO(nft)
	}

	var nextOffset *int
	if int64(*offset+len(nfts)) < total {
		offsetVal := *offset + len(nfts)
		nextOffset = &offsetVal
	}

	return &dto.NFTListResponse{
		NFTs:   nftDTOs,
		Offset: nextOffset,
		Total:  total,
	}, nil
}

func (e *executor) FractionalizeNFT(ctx context.Context, actingUserID string, nftID string, fractions int) (*dto.FractionalizeResponse, error) {
	nft, err := e.store.GetNFTByID(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get NFT: %v", err))
	}

	// Gate on preconditions before touching the ledger. The store re-checks
	// the flag atomically, so a lost race still fails cleanly below.
	if err := fractional.ValidateFractionalize(nft, actingUserID, fractions); err != nil {
		return nil, mapPreconditionError(err)
	}

	w := fractional.NewWorkerCore(nil)
	options := client.StartWorkflowOptions{
		// One workflow per NFT at a time; a concurrent duplicate start is
		// rejected by the server
		ID:                       fmt.Sprintf("fractionalize-%s", nftID),
		TaskQueue:                e.orchestratorTaskQueue,
		WorkflowExecutionTimeout: 10 * time.Minute,
	}
	wfRun, err := e.orchestrator.ExecuteWorkflow(ctx, options, w.FractionalizeNFT, &fractional.FractionalizeRequest{
		NFTID:      nft.ID,
		NFTName:    nft.Name,
		OwnerID:    actingUserID,
		ShareCount: fractions,
	})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, apierrors.NewConflictError("Fractionalization already in progress")
		}
		return nil, apierrors.NewServiceError(fmt.Sprintf("Failed to start fractionalization: %v", err))
	}

	var result fractional.FractionalizeResult
	if err := wfRun.Get(ctx, &result); err != nil {
		return nil, mapWorkflowError(err, "Fractionalization failed")
	}

	updated, err := e.store.GetNFTByID(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to reload NFT: %v", err))
	}

	return &dto.FractionalizeResponse{
		NFT:             *dto.MapNFTToDTO(updated),
		FractionTokenID: result.FractionTokenID,
		TransactionHash: result.TransactionHash,
		WorkflowID:      wfRun.GetID(),
		RunID:           wfRun.GetRunID(),
	}, nil
}

func (e *executor) TransferShares(ctx context.Context, actingUserID string, nftID string, req dto.TransferRequest) (*dto.TransferResponse, error) {
	nft, err := e.store.GetNFTByID(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get NFT: %v", err))
	}

	if err := fractional.ValidateTransfer(nft, actingUserID, req.ToUserID, req.Amount); err != nil {
		return nil, mapPreconditionError(err)
	}

	recipient, err := e.store.GetProfileByID(ctx, req.ToUserID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get recipient: %v", err))
	}
	if recipient == nil {
		return nil, apierrors.NewNotFoundError("Recipient profile not found")
	}

	// Gate the sender balance before anything touches the ledger. The store
	// re-checks under a row lock, so a stale read here still fails cleanly
	// inside the workflow.
	holdings, err := e.store.GetHoldingsByNFT(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get holdings: %v", err))
	}
	senderBalance := 0
	for _, holding := range holdings {
		if holding.HolderID == actingUserID {
			senderBalance = holding.Amount
			break
		}
	}
	if senderBalance == 0 {
		return nil, mapPreconditionError(domain.ErrHoldingNotFound)
	}
	if senderBalance < req.Amount {
		return nil, mapPreconditionError(domain.ErrInsufficientShares)
	}

	var fractionTokenID string
	if nft.FractionTokenID != nil {
		fractionTokenID = *nft.FractionTokenID
	}

	w := fractional.NewWorkerCore(nil)
	options := client.StartWorkflowOptions{
		TaskQueue:                e.orchestratorTaskQueue,
		WorkflowExecutionTimeout: 10 * time.Minute,
	}
	wfRun, err := e.orchestrator.ExecuteWorkflow(ctx, options, w.TransferShares, &fractional.TransferRequest{
		NFTID:           nft.ID,
		FractionTokenID: fractionTokenID,
		FromUserID:      actingUserID,
		ToUserID:        req.ToUserID,
		Amount:          req.Amount,
	})
	if err != nil {
		return nil, apierrors.NewServiceError(fmt.Sprintf("Failed to start transfer: %v", err))
	}

	var result fractional.TransferResult
	if err := wfRun.Get(ctx, &result); err != nil {
		return nil, mapWorkflowError(err, "Transfer failed")
	}

	return &dto.TransferResponse{
		NFTID:           nft.ID,
		FromUserID:      actingUserID,
		ToUserID:        req.ToUserID,
		Amount:          req.Amount,
		TransactionHash: result.TransactionHash,
		WorkflowID:      wfRun.GetID(),
		RunID:           wfRun.GetRunID(),
	}, nil
}

func (e *executor) GetHoldings(ctx context.Context, nftID string) (*dto.HoldingListResponse, error) {
	nft, err := e.store.GetNFTByID(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get NFT: %v", err))
	}
	if nft == nil {
		return nil, apierrors.NewNotFoundError("NFT not found")
	}

	holdings, err := e.store.GetHoldingsByNFT(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get holdings: %v", err))
	}

	holdingDTOs := make([]dto.HoldingResponse, len(holdings))
	for i, holding := range holdings {
		holdingDTOs[i] = *dto.MapHoldingToDTO(holding)
	}

	return &dto.HoldingListResponse{
		Holdings:       holdingDTOs,
		TotalFractions: nft.TotalFractions,
	}, nil
}

func (e *executor) GetTransactions(ctx context.Context, nftID string, limit *int, offset *int) (*dto.TransactionListResponse, error) {
	if limit == nil {
		defaultLimit := constants.DEFAULT_TRANSACTIONS_LIMIT
		limit = &defaultLimit
	}
	if offset == nil {
		defaultOffset := constants.DEFAULT_OFFSET
		offset = &defaultOffset
	}

	nft, err := e.store.GetNFTByID(ctx, nftID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get NFT: %v", err))
	}
	if nft == nil {
		return nil, apierrors.NewNotFoundError("NFT not found")
	}

	transactions, err := e.store.GetTransactionsByNFT(ctx, nftID, *limit, *offset)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get transactions: %v", err))
	}

	txDTOs := make([]dto.TransactionResponse, len(transactions))
	for i, tx := range transactions {
		txDTOs[i] = *dto.MapTransactionToDTO(tx)
	}

	var nextOffset *int
	if len(transactions) == *limit {
		offsetVal := *offset + len(transactions)
		nextOffset = &offsetVal
	}

	return &dto.TransactionListResponse{
		Transactions: txDTOs,
		Offset:       nextOffset,
	}, nil
}
