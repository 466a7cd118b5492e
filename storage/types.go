package storage

import "lunaswap/core/wallet"

// Storage keys. User records and the admin record live under exactly these
// two entries.
const (
	UsersKey = "solana_swap_users"
	AdminKey = "solana_swap_admin"
)

// ExportVersion tags export bundles.
const ExportVersion = "1.0"

// UserRecord is one persisted wallet session, unique per address.
// Subsequent saves replace the record wholesale.
type UserRecord struct {
	Address         string          `json:"address"`
	Balances        wallet.Balances `json:"balances"`
	Timestamp       string          `json:"timestamp"`
	ConnectionCount int             `json:"connectionCount"`
	Extra           map[string]any  `json:"extra,omitempty"`
}

// AdminRecord is the single process-wide aggregate record. TotalSwaps,
// TotalTransfers and AdminBalance are maintained by outside collaborators;
// UpdateAdminStats recomputes the rest wholesale.
type AdminRecord struct {
	TotalWallets     int          `json:"totalWallets"`
	TotalSOL         float64      `json:"totalSOL"`
	TotalUSDC        float64      `json:"totalUSDC"`
	TotalSwaps       int          `json:"totalSwaps"`
	TotalTransfers   int          `json:"totalTransfers"`
	AdminBalance     float64      `json:"adminBalance"`
	ConnectedWallets []UserRecord `json:"connectedWallets"`
	LastUpdated      string       `json:"lastUpdated"`
}

// DefaultAdminRecord is the zeroed shape returned when nothing is stored.
func DefaultAdminRecord() AdminRecord {
	return AdminRecord{ConnectedWallets: []UserRecord{}}
}

// ExportBundle is the export/import snapshot shape. Partial bundles (only
// one of UserData/AdminData present) are valid restore inputs.
type ExportBundle struct {
	Timestamp string       `json:"timestamp"`
	UserData  []UserRecord `json:"userData,omitempty"`
	AdminData *AdminRecord `json:"adminData,omitempty"`
	Version   string       `json:"version"`
}

// DataStats summarizes the stored data.
type DataStats struct {
	TotalUsers       int         `json:"totalUsers"`
	TotalConnections int         `json:"totalConnections"`
	LastActivity     *string     `json:"lastActivity"`
	AdminData        AdminRecord `json:"adminData"`
}
