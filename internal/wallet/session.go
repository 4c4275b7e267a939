package wallet

import (
	"fmt"
	"sync"

	"github.com/fractionft/fractionft/internal/domain"
)

// State represents the wallet session lifecycle state
type State string

const (
	// StateDisconnected means no wallet is paired
	StateDisconnected State = "disconnected"
	// StatePairing means a pairing string was issued but no wallet approved it
	StatePairing State = "pairing"
	// StateConnected means a wallet approved the pairing and supplied an account
	StateConnected State = "connected"
)

// Metadata describes the connected wallet
type Metadata struct {
	AccountID domain.AccountID
	Network   domain.Network
	PublicKey string
}

// Extension is the browser wallet boundary. A nil extension models the
// extension not being installed.
//
//go:generate mockgen -source=session.go -destination=../mocks/wallet_extension.go -package=mocks -mock_names=Extension=MockWalletExtension
type Extension interface {
	// Approve asks the extension to approve the pairing and return the wallet metadata
	Approve(pairingString string) (*Metadata, error)
	// Sign submits a transaction payload to the extension for signing
	Sign(payload []byte) ([]byte, error)
}

// Session tracks one wallet connect/disconnect lifecycle. It is an explicit
// object handed to whoever needs wallet state, not process-global, and is
// safe for concurrent use.
type Session struct {
	mu            sync.Mutex
	extension     Extension
	network       domain.Network
	appName       string
	state         State
	pairingString string
	metadata      *Metadata
}

// NewSession creates a disconnected wallet session bound to an extension
// boundary. Pass a nil extension when none is installed.
func NewSession(extension Extension, network domain.Network, appName string) *Session {
	return &Session{
		extension: extension,
		network:   network,
		appName:   appName,
		state:     StateDisconnected,
	}
}

// Initialize produces the pairing handshake string. Idempotent; callable any
// number of times before a connection attempt.
func (s *Session) Initialize() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pairingString == "" {
		s.pairingString = fmt.Sprintf("hashpack://connect?network=%s&app=%s", s.network, s.appName)
	}
	if s.state == StateDisconnected {
		s.state = StatePairing
	}
	return s.pairingString
}

// Connect attempts to pair with the wallet extension. Fails with
// domain.ErrExtensionNotFound when no extension is installed.
func (s *Session) Connect() (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConnected {
		return s.metadata, nil
	}

	if s.extension == nil {
		return nil, domain.ErrExtensionNotFound
	}

	if s.pairingString == "" {
		s.pairingString = fmt.Sprintf("hashpack://connect?network=%s&app=%s", s.network, s.appName)
	}

	metadata, err := s.extension.Approve(s.pairingString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}

	s.metadata = metadata
	s.state = StateConnected
	return metadata, nil
}

// Disconnect returns the session to the disconnected state. Unconditional
// and idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metadata = nil
	s.state = StateDisconnected
}

// SendTransaction submits a transaction payload through the connected
// wallet. Fails with domain.ErrWalletNotConnected before Connect.
func (s *Session) SendTransaction(payload []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return nil, domain.ErrWalletNotConnected
	}

	signed, err := s.extension.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// IsConnected reports whether a wallet approved the pairing
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateConnected
}

// ConnectedAccount returns the paired account, empty when disconnected
func (s *Session) ConnectedAccount() domain.AccountID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metadata == nil {
		return ""
	}
	return s.metadata.AccountID
}

// PairingString returns the handshake string issued by Initialize
func (s *Session) PairingString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairingString
}

// CurrentState returns the lifecycle state
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
