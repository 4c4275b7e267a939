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
	"github.com/fractionft/fractionft/internal/issuer"
	"github.com/fractionft/fractionft/internal/logger"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/store/schema"
)

// FractionalizeWorkflowTestSuite is the test suite for the fractionalization saga
type FractionalizeWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env       *testsuite.TestWorkflowEnvironment
	store     *fakeStore
	issuer    *fakeIssuer
	publisher *fakePublisher
}

// SetupTest is called before each test
func (s *FractionalizeWorkflowTestSuite) SetupTest() {
	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.store = &fakeStore{}
	s.issuer = &fakeIssuer{}
	s.publisher = &fakePublisher{}
}

// TestFractionalizeWorkflowTestSuite runs the test suite
func TestFractionalizeWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(FractionalizeWorkflowTestSuite))
}

// newWorkerCore wires a worker core over the suite fakes and registers its
// activities with the test environment
func (s *FractionalizeWorkflowTestSuite) newWorkerCore() fractional.WorkerCore {
	exec := fractional.NewExecutor(s.store, s.issuer, s.publisher, &fakeClock{})
	s.env.RegisterActivity(exec.IssueFractionalToken)
	s.env.RegisterActivity(exec.ApplyFractionalization)
	s.env.RegisterActivity(exec.RetireFractionalToken)
	s.env.RegisterActivity(exec.MirrorShareTransfer)
	s.env.RegisterActivity(exec.ApplyShareTransfer)
	s.env.RegisterActivity(exec.PublishOwnershipEvent)
	return fractional.NewWorkerCore(exec)
}

func (s *FractionalizeWorkflowTestSuite) TestFractionalize_Success() {
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.FractionalizeNFT, &fractional.FractionalizeRequest{
		NFTID:      "nft-1",
		NFTName:    "Cosmic Whale",
		OwnerID:    "user-1",
		ShareCount: 100,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result fractional.FractionalizeResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("nft-1", result.NFTID)
	s.Equal("0.0.5001", result.FractionTokenID)
	s.Equal(100, result.ShareCount)
	s.NotEmpty(result.TransactionHash)

	// Bookkeeping applied once with the issued token
	s.Require().Len(s.store.fractionalizeCalls, 1)
	s.Equal("0.0.5001", s.store.fractionalizeCalls[0].FractionTokenID)
	s.Equal(100, s.store.fractionalizeCalls[0].ShareCount)

	// Event announced with the owner as initial holder
	s.Require().Len(s.publisher.published, 1)
	s.Equal(domain.OwnershipEventFractionalization, s.publisher.published[0].EventType)
	s.Equal("user-1", *s.publisher.published[0].ToUserID)

	// Nothing to compensate
	s.Empty(s.issuer.retireCalls)
}

func (s *FractionalizeWorkflowTestSuite) TestFractionalize_IssuanceFailure_NoMutation() {
	s.issuer.createFractionalFn = func(ctx context.Context, name string, symbol string, supply int) (*issuer.IssueReceipt, error) {
		return nil, errors.New("ledger unavailable")
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.FractionalizeNFT, &fractional.FractionalizeRequest{
		NFTID:      "nft-1",
		NFTName:    "Cosmic Whale",
		OwnerID:    "user-1",
		ShareCount: 100,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())

	// No bookkeeping, no compensation, no event
	s.Empty(s.store.fractionalizeCalls)
	s.Empty(s.issuer.retireCalls)
	s.Empty(s.publisher.published)
}

func (s *FractionalizeWorkflowTestSuite) TestFractionalize_LostRace_Compensated() {
	s.store.fractionalizeFn = func(ctx context.Context, input store.FractionalizeInput) (*schema.NFT, error) {
		return nil, domain.ErrAlreadyFractionalized
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.FractionalizeNFT, &fractional.FractionalizeRequest{
		NFTID:      "nft-1",
		NFTName:    "Cosmic Whale",
		OwnerID:    "user-1",
		ShareCount: 100,
	})

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)

	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	s.Equal("AlreadyFractionalized", appErr.Type())

	// The token issued for the losing call was retired
	s.Require().Len(s.issuer.retireCalls, 1)
	s.Equal(domain.TokenID("0.0.5001"), s.issuer.retireCalls[0])
	s.Empty(s.publisher.published)
}

func (s *FractionalizeWorkflowTestSuite) TestFractionalize_CompensationFailure_PartialFailure() {
	s.store.fractionalizeFn = func(ctx context.Context, input store.FractionalizeInput) (*schema.NFT, error) {
		return nil, errors.New("connection reset")
	}
	s.issuer.retireFn = func(ctx context.Context, tokenID domain.TokenID) error {
		return errors.New("ledger unavailable")
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.FractionalizeNFT, &fractional.FractionalizeRequest{
		NFTID:      "nft-1",
		NFTName:    "Cosmic Whale",
		OwnerID:    "user-1",
		ShareCount: 100,
	})

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)

	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	s.Equal("PartialFailure", appErr.Type())

	// Retire was retried to exhaustion before giving up
	s.Len(s.issuer.retireCalls, 5)
	s.Empty(s.publisher.published)
}

func (s *FractionalizeWorkflowTestSuite) TestFractionalize_PublishFailureDoesNotFailWorkflow() {
	s.publisher.publishFn = func(ctx context.Context, event *domain.OwnershipEvent) error {
		return errors.New("broker unavailable")
	}
	core := s.newWorkerCore()

	s.env.ExecuteWorkflow(core.FractionalizeNFT, &fractional.FractionalizeRequest{
		NFTID:      "nft-1",
		NFTName:    "Cosmic Whale",
		OwnerID:    "user-1",
		ShareCount: 100,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	s.Require().Len(s.store.fractionalizeCalls, 1)
}
