package fractional_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/fractional"
	"github.com/fractionft/fractionft/internal/logger"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/store/schema"
	"github.com/fractionft/fractionft/internal/types"
)

// TransferWorkflowTestSuite is the test suite for the share transfer workflow
type TransferWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env       *testsuite.TestWorkflowEnvironment
	store     *fakeStore
	issuer    *fakeIssuer
	publisher *fakePublisher
}

// SetupTest is called before each test
func (s *TransferWorkflowTestSuite) SetupTest() {
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.store = &fakeStore{}
	s.issuer = &fakeIssuer{}
	s.publisher = &fakePublisher{}
}

// TestTransferWorkflowTestSuite runs the test suite
func TestTransferWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(TransferWorkflowTestSuite))
}

func (s *TransferWorkflowTestSuite) newWorkerCore() fractional.WorkerCore {
	exec := fractional.NewExecutor(s.store, s.issuer, s.publisher, &fakeClock{})
	s.env.RegisterActivity(exec.MirrorShareTransfer)
	s.env.RegisterActivity(exec.ApplyShareTransfer)
	s.env.RegisterActivity(exec.PublishOwnershipEvent)
	return fractional.NewWorkerCore(exec)
}

func (s *TransferWorkflowTestSuite) TestTransfer_Success_NoWallet() {
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.TransferShares, &fractional.TransferRequest{
		NFTID:           "nft-1",
		FractionTokenID: "0.0.5001",
		FromUserID:      "user-1",
		ToUserID:        "user-2",
		Amount:          10,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result fractional.TransferResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("nft-1", result.NFTID)
	// Recipient has no wallet on file, nothing mirrored
	s.Empty(result.TransactionHash)

	s.Require().Len(s.store.transferCalls, 1)
	s.Equal("user-1", s.store.transferCalls[0].FromUserID)
	s.Equal("user-2", s.store.transferCalls[0].ToUserID)
	s.Equal(10, s.store.transferCalls[0].Amount)

	s.Require().Len(s.publisher.published, 1)
	s.Equal(domain.OwnershipEventTransfer, s.publisher.published[0].EventType)
}

func (s *TransferWorkflowTestSuite) TestTransfer_Success_MirroredToWallet() {
	s.store.getProfileByIDFn = func(ctx context.Context, id string) (*schema.Profile, error) {
		return &schema.Profile{ID: id, Email: "holder@example.com", WalletAddress: types.StringPtr("0.0.54321")}, nil
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.TransferShares, &fractional.TransferRequest{
		NFTID:           "nft-1",
		FractionTokenID: "0.0.5001",
		FromUserID:      "user-1",
		ToUserID:        "user-2",
		Amount:          10,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result fractional.TransferResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.NotEmpty(result.TransactionHash)

	// The ledger transaction id carries through to the log entry
	s.Require().Len(s.store.transferCalls, 1)
	s.Equal(result.TransactionHash, s.store.transferCalls[0].TransactionHash)
}

func (s *TransferWorkflowTestSuite) TestTransfer_InsufficientShares() {
	s.store.transferSharesFn = func(ctx context.Context, input store.TransferSharesInput) error {
		return domain.ErrInsufficientShares
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.TransferShares, &fractional.TransferRequest{
		NFTID:           "nft-1",
		FractionTokenID: "0.0.5001",
		FromUserID:      "user-1",
		ToUserID:        "user-2",
		Amount:          1000,
	})

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)

	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	s.Equal("InsufficientShares", appErr.Type())
	s.Empty(s.publisher.published)
}

func (s *TransferWorkflowTestSuite) TestTransfer_ApplyFailureAfterMirror_PartialFailure() {
	s.store.getProfileByIDFn = func(ctx context.Context, id string) (*schema.Profile, error) {
		return &schema.Profile{ID: id, Email: "holder@example.com", WalletAddress: types.StringPtr("0.0.54321")}, nil
	}
	s.store.transferSharesFn = func(ctx context.Context, input store.TransferSharesInput) error {
		return domain.ErrInsufficientShares
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.TransferShares, &fractional.TransferRequest{
		NFTID:           "nft-1",
		FractionTokenID: "0.0.5001",
		FromUserID:      "user-1",
		ToUserID:        "user-2",
		Amount:          1000,
	})

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)

	// The ledger moved but the books did not; that divergence must not come
	// back as a plain bookkeeping error
	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	s.Equal("PartialFailure", appErr.Type())
	s.Contains(appErr.Message(), "0.0.2@1700000000.000000002")

	s.Require().Len(s.issuer.transferCalls, 1)
	s.Len(s.store.transferCalls, 1)
	s.Empty(s.publisher.published)
}

func (s *TransferWorkflowTestSuite) TestTransfer_MirrorFailureStopsBookkeeping() {
	s.store.getProfileByIDFn = func(ctx context.Context, id string) (*schema.Profile, error) {
		return nil, errors.New("connection reset")
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.TransferShares, &fractional.TransferRequest{
		NFTID:           "nft-1",
		FractionTokenID: "0.0.5001",
		FromUserID:      "user-1",
		ToUserID:        "user-2",
		Amount:          10,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Empty(s.store.transferCalls)
	s.Empty(s.publisher.published)
}
