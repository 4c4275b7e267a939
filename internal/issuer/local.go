package issuer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fractionft/fractionft/internal/domain"
)

// localIssuer is the development issuer. It synthesizes well-formed ledger
// identifiers deterministically from a base entity number instead of hiding
// randomness behind cryptographic-looking output.
type localIssuer struct {
	mu       sync.Mutex
	operator domain.AccountID
	next     int64
	now      func() time.Time
}

// NewLocalIssuer creates a development issuer that allocates token numbers
// starting at baseEntityNum
func NewLocalIssuer(operator domain.AccountID, baseEntityNum int64) TokenIssuer {
	return &localIssuer{
		operator: operator,
		next:     baseEntityNum,
		now:      time.Now,
	}
}

// allocate returns a fresh entity number and a ledger-style transaction ID
func (l *localIssuer) allocate() (domain.TokenID, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tokenID := domain.TokenID(fmt.Sprintf("0.0.%d", l.next))
	l.next++

	ts := l.now().UTC()
	txID := fmt.Sprintf("%s@%d.%09d", l.operator, ts.Unix(), ts.Nanosecond())
	return tokenID, txID
}

func (l *localIssuer) CreateNFT(ctx context.Context, name string, symbol string, metadata string) (*MintReceipt, error) {
	tokenID, txID := l.allocate()
	return &MintReceipt{
		TokenID:       tokenID,
		SerialNumber:  "1",
		TransactionID: txID,
	}, nil
}

func (l *localIssuer) CreateFractionalToken(ctx context.Context, name string, symbol string, supply int) (*IssueReceipt, error) {
	tokenID, txID := l.allocate()
	return &IssueReceipt{
		TokenID:       tokenID,
		Supply:        supply,
		TransactionID: txID,
	}, nil
}

func (l *localIssuer) Transfer(ctx context.Context, tokenID domain.TokenID, to domain.AccountID, amount int) (*TransferReceipt, error) {
	_, txID := l.allocate()
	return &TransferReceipt{
		Status:        "SUCCESS",
		TransactionID: txID,
	}, nil
}

func (l *localIssuer) RetireToken(ctx context.Context, tokenID domain.TokenID) error {
	return nil
}
