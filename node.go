package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	sol "github.com/gagliardetto/solana-go"

	"lunaswap/core/logger"
	"lunaswap/core/solana"
	"lunaswap/core/storage"
	"lunaswap/core/wallet"
)

type Config struct {
	ConfigDir   string
	RpcEndpoint string
	Backend     string
}

// SwapNode composes the wallet manager and the data storage for one process.
// After each successful connect it persists a session snapshot and refreshes
// the admin aggregates.
type SwapNode struct {
	mu      sync.Mutex
	config  Config
	store   *storage.DataStorage
	keys    *wallet.Keystore
	manager *wallet.Manager
	solana  *solana.Client
}

func NewSwapNode(cfg Config) (*SwapNode, error) {
	ks, err := wallet.NewKeystore(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	kv, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	return &SwapNode{
		config: cfg,
		store:  storage.NewDataStorage(kv),
		keys:   ks,
	}, nil
}

func openStore(cfg Config) (storage.KVStore, error) {
	switch cfg.Backend {
	case "", "file":
		return storage.NewFileStore(filepath.Join(cfg.ConfigDir, "data"))
	case "leveldb":
		return storage.NewLevelStore(filepath.Join(cfg.ConfigDir, "data.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Start loads the profile keypair and wires the provider, the RPC client and
// the wallet manager.
func (n *SwapNode) Start(ctx context.Context, profile string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	provider := wallet.NewKeystoreProvider(n.keys, profile)

	signer, err := provider.Signer()
	if err != nil {
		return fmt.Errorf("failed to load profile %s: %w", profile, err)
	}

	sc, err := solana.NewClient(n.config.RpcEndpoint, signer)
	if err != nil {
		return err
	}
	n.solana = sc

	n.manager = wallet.NewManager(provider, sc, solana.FindTokenAccount)
	n.manager.SetupEventListeners(ctx)

	logger.Info("NODE", "lunaswap node started (profile %s)", profile)
	return nil
}

// ConnectWallet runs the connect flow and persists the resulting snapshot.
func (n *SwapNode) ConnectWallet(ctx context.Context) (wallet.WalletState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.manager == nil {
		return wallet.WalletState{}, fmt.Errorf("node not started")
	}

	st, err := n.manager.Connect(ctx)
	if err != nil {
		return st, err
	}

	if st.PublicKey != nil {
		if ok := n.store.SaveUserData(st.PublicKey.String(), st.Balances, nil); !ok {
			logger.Warn("NODE", "could not persist session for %s", st.Address)
		}
		n.store.UpdateAdminStats(n.store.GetUserData())
	}
	return st, nil
}

// DisconnectWallet ends the session and returns the zeroed snapshot.
func (n *SwapNode) DisconnectWallet(ctx context.Context) wallet.WalletState {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.manager == nil {
		return wallet.WalletState{}
	}
	return n.manager.Disconnect(ctx)
}

// TransferSOL sends lamports and bumps the admin transfer counter once the
// transaction confirms.
func (n *SwapNode) TransferSOL(ctx context.Context, recipient string, lamports uint64) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.solana == nil {
		return "", fmt.Errorf("node not started")
	}

	to, err := sol.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	sig, err := n.solana.TransferSOL(ctx, to, lamports)
	if err != nil {
		return "", err
	}
	if err := n.solana.WaitForConfirmation(ctx, *sig); err != nil {
		return sig.String(), err
	}

	admin := n.store.GetAdminData()
	admin.TotalTransfers++
	if !n.store.SaveAdminData(&admin) {
		logger.Warn("NODE", "could not persist transfer counter")
	}

	logger.Solana("transferred %d lamports to %s", lamports, recipient)
	return sig.String(), nil
}

// WalletState returns a snapshot of the current session.
func (n *SwapNode) WalletState() wallet.WalletState {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.manager == nil {
		return wallet.WalletState{Balances: wallet.Balances{Usdc: "0.00"}}
	}
	return n.manager.State()
}

func (n *SwapNode) Storage() *storage.DataStorage {
	return n.store
}

func (n *SwapNode) Keystore() *wallet.Keystore {
	return n.keys
}
