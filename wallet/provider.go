package wallet

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ProviderEvent identifies an out-of-band provider notification.
type ProviderEvent string

const (
	EventConnect        ProviderEvent = "connect"
	EventDisconnect     ProviderEvent = "disconnect"
	EventAccountChanged ProviderEvent = "accountChanged"
)

// Provider is the wallet-provider collaborator: the external component that
// holds the user's keys and approves or rejects connection requests.
type Provider interface {
	// Ready reports whether the provider is present and of the expected type.
	Ready() bool
	// Connected reports whether the provider already has an active session.
	Connected() bool
	// PublicKey returns the current session identity, nil when there is none.
	PublicKey() *solana.PublicKey
	// Connect runs the provider's approval flow and returns the identity.
	// It suspends until the flow completes; cancellation must come from ctx.
	Connect(ctx context.Context) (solana.PublicKey, error)
	// Disconnect ends the provider session.
	Disconnect(ctx context.Context) error
	// On registers a handler for out-of-band events. The key argument is nil
	// for disconnect events. Handlers run on the provider's own schedule.
	On(event ProviderEvent, handler func(key *solana.PublicKey))
}

// KeystoreProvider implements Provider over a keypair in the local keystore,
// so the module runs headless. It approves every connection; the browser
// extension's own approval UI is outside this module.
type KeystoreProvider struct {
	mu       sync.Mutex
	keystore *Keystore
	name     string
	key      *solana.PrivateKey
	handlers map[ProviderEvent][]func(*solana.PublicKey)
}

func NewKeystoreProvider(ks *Keystore, name string) *KeystoreProvider {
	return &KeystoreProvider{
		keystore: ks,
		name:     name,
		handlers: make(map[ProviderEvent][]func(*solana.PublicKey)),
	}
}

func (p *KeystoreProvider) Ready() bool {
	return p.keystore != nil
}

func (p *KeystoreProvider) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key != nil
}

func (p *KeystoreProvider) PublicKey() *solana.PublicKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key == nil {
		return nil
	}
	pk := p.key.PublicKey()
	return &pk
}

func (p *KeystoreProvider) Connect(ctx context.Context) (solana.PublicKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}

	priv, err := p.keystore.Get(p.name)
	if err != nil {
		return solana.PublicKey{}, &ProviderError{Message: err.Error()}
	}

	p.key = &priv
	pk := priv.PublicKey()
	p.emit(EventConnect, &pk)
	return pk, nil
}

func (p *KeystoreProvider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.key = nil
	p.emit(EventDisconnect, nil)
	return nil
}

func (p *KeystoreProvider) On(event ProviderEvent, handler func(key *solana.PublicKey)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[event] = append(p.handlers[event], handler)
}

// emit delivers an event asynchronously, matching the out-of-band semantics
// of a browser provider. Callers hold p.mu.
func (p *KeystoreProvider) emit(event ProviderEvent, key *solana.PublicKey) {
	for _, h := range p.handlers[event] {
		go h(key)
	}
}

// Signer loads the backing private key without opening a session. Used to
// build an RPC client that can sign transfers.
func (p *KeystoreProvider) Signer() (solana.PrivateKey, error) {
	return p.keystore.Get(p.name)
}
