package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"lunaswap/core/logger"
)

// Balances is the displayed pair of balances for one session.
type Balances struct {
	Sol  float64 `json:"sol"`
	Usdc string  `json:"usdc"`
}

// WalletState is one wallet session's state. It is replaced wholesale on
// connect and disconnect; the Manager hands out copies only.
type WalletState struct {
	Connected    bool              `json:"connected"`
	Address      string            `json:"address"`
	PublicKey    *solana.PublicKey `json:"publicKey"`
	TokenAccount *solana.PublicKey `json:"tokenAccount"`
	Balances     Balances          `json:"balances"`

	// Reserved flags, never set by current logic.
	FullAccessGranted     bool `json:"fullAccessGranted"`
	PersistentApprovalSet bool `json:"persistentApprovalSet"`
}

func emptyState() WalletState {
	return WalletState{Balances: Balances{Sol: 0, Usdc: "0.00"}}
}

// ChainReader is the RPC collaborator used for balance queries.
type ChainReader interface {
	GetBalance(ctx context.Context, pk solana.PublicKey) (uint64, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (string, error)
}

// DeriveTokenAccount derives the associated token account for an owner.
type DeriveTokenAccount func(owner solana.PublicKey) (solana.PublicKey, uint8, error)

// Manager owns one wallet session: connect and disconnect round-trips to the
// provider, the post-connect balance reads, and provider event handling.
//
// Every state write, whether from an explicit call or a provider event
// callback, goes through the mutex. Callbacks arrive on the provider's own
// schedule, so overlapping updates resolve last-write-wins.
type Manager struct {
	mu       sync.Mutex
	provider Provider
	chain    ChainReader
	derive   DeriveTokenAccount
	state    WalletState
}

func NewManager(provider Provider, chain ChainReader, derive DeriveTokenAccount) *Manager {
	return &Manager{
		provider: provider,
		chain:    chain,
		derive:   derive,
		state:    emptyState(),
	}
}

// Connect transitions the session to Connected and returns a snapshot of the
// resulting state. An already-approved provider session is reused without a
// new approval round-trip.
func (m *Manager) Connect(ctx context.Context) (WalletState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provider == nil || !m.provider.Ready() {
		return m.state, ErrProviderUnavailable
	}

	if m.provider.Connected() {
		if key := m.provider.PublicKey(); key != nil {
			logger.Wallet("reusing existing provider session for %s", key.String())
			m.handleConnect(ctx, *key)
			return m.state, nil
		}
	}

	key, err := m.provider.Connect(ctx)
	if err != nil {
		reason := ClassifyProviderError(err)
		logger.Error("WALLET", "provider connect failed (%s): %v", reason, err)
		return m.state, newConnectionError(reason)
	}

	m.handleConnect(ctx, key)
	return m.state, nil
}

// handleConnect populates the session state for key. The three follow-up
// reads are independently fault-tolerant: a failed read leaves its zero
// value and never aborts the connect. Callers hold m.mu.
func (m *Manager) handleConnect(ctx context.Context, key solana.PublicKey) {
	st := emptyState()
	st.Connected = true
	st.PublicKey = &key
	st.Address = FormatAddress(key.String())

	if m.derive != nil {
		if ata, _, err := m.derive(key); err != nil {
			logger.Warn("WALLET", "token account derivation failed: %v", err)
		} else {
			st.TokenAccount = &ata
		}
	}

	if lamports, err := m.chain.GetBalance(ctx, key); err != nil {
		logger.Warn("WALLET", "SOL balance fetch failed: %v", err)
	} else {
		st.Balances.Sol = float64(lamports) / float64(solana.LAMPORTS_PER_SOL)
	}

	if st.TokenAccount != nil {
		if raw, err := m.chain.GetTokenAccountBalance(ctx, *st.TokenAccount); err != nil {
			logger.Warn("WALLET", "USDC balance fetch failed: %v", err)
		} else {
			st.Balances.Usdc = formatTokenAmount(raw)
		}
	}

	m.state = st
	logger.Success("WALLET", "connected %s (%.4f SOL, %s USDC)", st.Address, st.Balances.Sol, st.Balances.Usdc)
}

// Disconnect attempts a best-effort provider disconnect and unconditionally
// resets the session state, returning the zeroed snapshot.
func (m *Manager) Disconnect(ctx context.Context) WalletState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provider != nil {
		if err := m.provider.Disconnect(ctx); err != nil {
			logger.Warn("WALLET", "provider disconnect failed: %v", err)
		}
	}

	m.state = emptyState()
	logger.Wallet("disconnected")
	return m.state
}

// SetupEventListeners subscribes to the provider's out-of-band notifications:
// connect and accountChanged re-run the connect-handling path with the
// reported key, disconnect resets local state. No ordering relative to
// in-flight manager calls is guaranteed.
func (m *Manager) SetupEventListeners(ctx context.Context) {
	if m.provider == nil {
		return
	}

	m.provider.On(EventConnect, func(key *solana.PublicKey) {
		if key == nil {
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handleConnect(ctx, *key)
	})

	m.provider.On(EventDisconnect, func(*solana.PublicKey) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.state = emptyState()
		logger.Wallet("provider reported disconnect")
	})

	m.provider.On(EventAccountChanged, func(key *solana.PublicKey) {
		if key == nil {
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		logger.Wallet("account changed to %s", key.String())
		m.handleConnect(ctx, *key)
	})
}

// State returns a copy of the current session state.
func (m *Manager) State() WalletState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FormatAddress shortens a full address to "first6...last6". Inputs shorter
// than 12 characters are not guarded.
func FormatAddress(addr string) string {
	return fmt.Sprintf("%s...%s", addr[:6], addr[len(addr)-6:])
}

func formatTokenAmount(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
