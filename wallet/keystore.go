package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gagliardetto/solana-go"
)

const keystoreFile = "keystore.json"

// keystoreData holds all locally managed keypairs, keyed by profile name.
type keystoreData struct {
	Wallets map[string]solana.PrivateKey `json:"wallets"`
}

// Keystore reads from and writes to the local keypair file.
type Keystore struct {
	mu       sync.RWMutex
	filePath string
}

// NewKeystore initializes a Keystore under configDir.
func NewKeystore(configDir string) (*Keystore, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &Keystore{
		filePath: filepath.Join(configDir, keystoreFile),
	}, nil
}

// readData reads the entire keystore file and unmarshals it.
func (ks *Keystore) readData() (*keystoreData, error) {
	data := &keystoreData{
		Wallets: make(map[string]solana.PrivateKey),
	}

	file, err := os.ReadFile(ks.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("failed to read keystore file: %w", err)
	}

	if len(file) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(file, data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore data: %w", err)
	}

	if data.Wallets == nil {
		data.Wallets = make(map[string]solana.PrivateKey)
	}

	return data, nil
}

// Save stores a private key under a given profile name.
func (ks *Keystore) Save(name string, privateKey solana.PrivateKey) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	data, err := ks.readData()
	if err != nil {
		return err
	}

	data.Wallets[name] = privateKey

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore data: %w", err)
	}

	if err := os.WriteFile(ks.filePath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write keystore file: %w", err)
	}
	return nil
}

// Get retrieves a private key by its profile name.
func (ks *Keystore) Get(name string) (solana.PrivateKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	data, err := ks.readData()
	if err != nil {
		return nil, err
	}

	privateKey, ok := data.Wallets[name]
	if !ok {
		return nil, fmt.Errorf("wallet '%s' not found", name)
	}

	return privateKey, nil
}

// Generate creates a new keypair, stores it under name and returns it.
func (ks *Keystore) Generate(name string) (solana.PrivateKey, error) {
	key := solana.NewWallet().PrivateKey
	if err := ks.Save(name, key); err != nil {
		return nil, err
	}
	return key, nil
}

// All returns every stored keypair.
func (ks *Keystore) All() (map[string]solana.PrivateKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	data, err := ks.readData()
	if err != nil {
		return nil, err
	}
	return data.Wallets, nil
}
