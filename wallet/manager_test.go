package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a synchronous Provider for manager tests. Unlike the real
// keystore provider it delivers events inline, which keeps tests deterministic.
type stubProvider struct {
	ready      bool
	connected  bool
	key        *solana.PublicKey
	connectKey solana.PublicKey
	connectErr error

	connectCalls    int
	disconnectCalls int
	handlers        map[ProviderEvent][]func(*solana.PublicKey)
}

func newStubProvider(key solana.PublicKey) *stubProvider {
	return &stubProvider{
		ready:      true,
		connectKey: key,
		handlers:   make(map[ProviderEvent][]func(*solana.PublicKey)),
	}
}

func (p *stubProvider) Ready() bool                  { return p.ready }
func (p *stubProvider) Connected() bool              { return p.connected }
func (p *stubProvider) PublicKey() *solana.PublicKey { return p.key }

func (p *stubProvider) Connect(ctx context.Context) (solana.PublicKey, error) {
	p.connectCalls++
	if p.connectErr != nil {
		return solana.PublicKey{}, p.connectErr
	}
	p.connected = true
	p.key = &p.connectKey
	return p.connectKey, nil
}

func (p *stubProvider) Disconnect(ctx context.Context) error {
	p.disconnectCalls++
	p.connected = false
	p.key = nil
	return nil
}

func (p *stubProvider) On(event ProviderEvent, handler func(*solana.PublicKey)) {
	p.handlers[event] = append(p.handlers[event], handler)
}

func (p *stubProvider) emit(event ProviderEvent, key *solana.PublicKey) {
	for _, h := range p.handlers[event] {
		h(key)
	}
}

type stubChain struct {
	lamports    uint64
	lamportsErr error
	tokenAmount string
	tokenErr    error
}

func (c *stubChain) GetBalance(ctx context.Context, pk solana.PublicKey) (uint64, error) {
	return c.lamports, c.lamportsErr
}

func (c *stubChain) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (string, error) {
	return c.tokenAmount, c.tokenErr
}

func testKey() solana.PublicKey {
	return solana.NewWallet().PrivateKey.PublicKey()
}

func deriveTo(ata solana.PublicKey) DeriveTokenAccount {
	return func(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
		return ata, 255, nil
	}
}

func deriveFail(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.PublicKey{}, 0, errors.New("derivation failed")
}

func TestConnectSuccess(t *testing.T) {
	key := testKey()
	ata := testKey()
	provider := newStubProvider(key)
	chain := &stubChain{lamports: 2_500_000_000, tokenAmount: "12.3456"}

	m := NewManager(provider, chain, deriveTo(ata))
	st, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.True(t, st.Connected)
	assert.Equal(t, key, *st.PublicKey)
	assert.Equal(t, FormatAddress(key.String()), st.Address)
	assert.Equal(t, ata, *st.TokenAccount)
	assert.InDelta(t, 2.5, st.Balances.Sol, 1e-9)
	assert.Equal(t, "12.35", st.Balances.Usdc)
	assert.False(t, st.FullAccessGranted)
	assert.False(t, st.PersistentApprovalSet)
}

func TestConnectNilProvider(t *testing.T) {
	m := NewManager(nil, &stubChain{}, nil)
	st, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.False(t, st.Connected)
}

func TestConnectProviderNotReady(t *testing.T) {
	provider := newStubProvider(testKey())
	provider.ready = false

	m := NewManager(provider, &stubChain{}, nil)
	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestConnectRejected(t *testing.T) {
	provider := newStubProvider(testKey())
	provider.connectErr = &ProviderError{Code: 4001, Message: "User rejected the request"}

	m := NewManager(provider, &stubChain{}, nil)
	st, err := m.Connect(context.Background())

	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonRejected, ce.Reason)
	assert.Contains(t, ce.Error(), "rejected")
	assert.False(t, st.Connected)
}

func TestConnectReusesExistingSession(t *testing.T) {
	key := testKey()
	provider := newStubProvider(key)
	provider.connected = true
	provider.key = &key
	// A fresh approval round-trip would fail; reuse must not attempt one.
	provider.connectErr = errors.New("should not be called")

	m := NewManager(provider, &stubChain{lamports: 1_000_000_000}, nil)
	st, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.True(t, st.Connected)
	assert.Equal(t, 0, provider.connectCalls)
	assert.InDelta(t, 1.0, st.Balances.Sol, 1e-9)
}

func TestConnectDerivationFailureNonFatal(t *testing.T) {
	provider := newStubProvider(testKey())
	chain := &stubChain{lamports: 1_000_000_000, tokenAmount: "5.00"}

	m := NewManager(provider, chain, deriveFail)
	st, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.True(t, st.Connected)
	assert.Nil(t, st.TokenAccount)
	// Token balance is skipped without a derived account.
	assert.Equal(t, "0.00", st.Balances.Usdc)
	assert.InDelta(t, 1.0, st.Balances.Sol, 1e-9)
}

func TestConnectBalanceFailuresNonFatal(t *testing.T) {
	provider := newStubProvider(testKey())
	chain := &stubChain{
		lamportsErr: errors.New("rpc down"),
		tokenErr:    errors.New("rpc down"),
	}

	m := NewManager(provider, chain, deriveTo(testKey()))
	st, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.True(t, st.Connected)
	assert.Zero(t, st.Balances.Sol)
	assert.Equal(t, "0.00", st.Balances.Usdc)
	assert.NotNil(t, st.TokenAccount)
}

func TestDisconnectResetsState(t *testing.T) {
	provider := newStubProvider(testKey())
	m := NewManager(provider, &stubChain{lamports: 1_000_000_000}, nil)

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	st := m.Disconnect(context.Background())
	assert.False(t, st.Connected)
	assert.Empty(t, st.Address)
	assert.Nil(t, st.PublicKey)
	assert.Equal(t, "0.00", st.Balances.Usdc)
	assert.Equal(t, 1, provider.disconnectCalls)
}

func TestDisconnectWithoutSession(t *testing.T) {
	m := NewManager(newStubProvider(testKey()), &stubChain{}, nil)
	st := m.Disconnect(context.Background())
	assert.False(t, st.Connected)
}

func TestEventListeners(t *testing.T) {
	key := testKey()
	other := testKey()
	provider := newStubProvider(key)
	chain := &stubChain{lamports: 3_000_000_000, tokenAmount: "1.5"}

	m := NewManager(provider, chain, deriveTo(testKey()))
	m.SetupEventListeners(context.Background())

	provider.emit(EventConnect, &key)
	st := m.State()
	assert.True(t, st.Connected)
	assert.Equal(t, key, *st.PublicKey)
	assert.InDelta(t, 3.0, st.Balances.Sol, 1e-9)

	provider.emit(EventAccountChanged, &other)
	st = m.State()
	assert.True(t, st.Connected)
	assert.Equal(t, other, *st.PublicKey)

	provider.emit(EventDisconnect, nil)
	st = m.State()
	assert.False(t, st.Connected)
	assert.Nil(t, st.PublicKey)
	assert.Equal(t, "0.00", st.Balances.Usdc)
}

func TestEventListenersIgnoreNilKey(t *testing.T) {
	provider := newStubProvider(testKey())
	m := NewManager(provider, &stubChain{}, nil)
	m.SetupEventListeners(context.Background())

	provider.emit(EventConnect, nil)
	assert.False(t, m.State().Connected)
}

func TestStateReturnsCopy(t *testing.T) {
	provider := newStubProvider(testKey())
	m := NewManager(provider, &stubChain{lamports: 1_000_000_000}, nil)

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	st := m.State()
	st.Connected = false
	st.Address = "mutated"
	assert.True(t, m.State().Connected)
	assert.NotEqual(t, "mutated", m.State().Address)
}

func TestFormatAddress(t *testing.T) {
	addr := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	got := FormatAddress(addr)
	assert.Equal(t, "7xKXtg...osgAsU", got)
	assert.Equal(t, addr[:6]+"..."+addr[len(addr)-6:], got)
}

func TestFormatTokenAmount(t *testing.T) {
	assert.Equal(t, "12.35", formatTokenAmount("12.3456"))
	assert.Equal(t, "5.00", formatTokenAmount("5"))
	assert.Equal(t, "0.00", formatTokenAmount("not a number"))
}
