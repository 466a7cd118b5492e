package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type AppConfig struct {
	RpcEndpoint    string `json:"rpc_endpoint"`
	StorageBackend string `json:"storage_backend"`
	AutoPersist    bool   `json:"auto_persist"`
}

func defaults() *AppConfig {
	return &AppConfig{
		RpcEndpoint:    "https://api.devnet.solana.com",
		StorageBackend: "file",
		AutoPersist:    true,
	}
}

func LoadOrInit(configDir string) (*AppConfig, error) {
	path := filepath.Join(configDir, "app-config.json")

	// Check if exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaults()
		applyEnv(cfg)
		if err := Save(configDir, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Load existing
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv lets the environment override the stored config without
// rewriting the file.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("LUNASWAP_RPC_ENDPOINT"); v != "" {
		cfg.RpcEndpoint = v
	}
	if v := os.Getenv("LUNASWAP_STORAGE_BACKEND"); v != "" {
		cfg.StorageBackend = v
	}
}

func Save(configDir string, cfg *AppConfig) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "app-config.json")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
