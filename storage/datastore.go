package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"lunaswap/core/logger"
	"lunaswap/core/wallet"
)

// DataStorage persists user sessions and the admin aggregate to a KVStore.
//
// Persistence failures never escape this facade as errors: write paths
// report a boolean and read paths fall back to zero defaults, so a failed
// write cannot crash a wallet-connection flow. Failures are still logged.
type DataStorage struct {
	store KVStore
}

func NewDataStorage(store KVStore) *DataStorage {
	return &DataStorage{store: store}
}

// readUsers loads the stored collection. A missing entry is an empty
// collection; read and parse failures are errors.
func (ds *DataStorage) readUsers() ([]UserRecord, error) {
	data, err := ds.store.Get(UsersKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []UserRecord{}, nil
		}
		return nil, err
	}
	var users []UserRecord
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (ds *DataStorage) readAdmin() (AdminRecord, error) {
	data, err := ds.store.Get(AdminKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultAdminRecord(), nil
		}
		return AdminRecord{}, err
	}
	var admin AdminRecord
	if err := json.Unmarshal(data, &admin); err != nil {
		return AdminRecord{}, err
	}
	if admin.ConnectedWallets == nil {
		admin.ConnectedWallets = []UserRecord{}
	}
	return admin, nil
}

func (ds *DataStorage) writeUsers(users []UserRecord) bool {
	data, err := json.Marshal(users)
	if err != nil {
		logger.Store("failed to marshal user data: %v", err)
		return false
	}
	if err := ds.store.Set(UsersKey, data); err != nil {
		logger.Store("failed to persist user data: %v", err)
		return false
	}
	return true
}

// SaveUserData records a session for address, replacing any existing record
// for that address and incrementing its connection count.
func (ds *DataStorage) SaveUserData(address string, balances wallet.Balances, extra map[string]any) bool {
	users := ds.GetUserData()

	record := UserRecord{
		Address:         address,
		Balances:        balances,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		ConnectionCount: countFor(users, address) + 1,
		Extra:           extra,
	}

	replaced := false
	for i := range users {
		if users[i].Address == address {
			users[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, record)
	}

	return ds.writeUsers(users)
}

func countFor(users []UserRecord, address string) int {
	for _, u := range users {
		if u.Address == address {
			return u.ConnectionCount
		}
	}
	return 0
}

// GetUserData returns the stored collection; absent or unparsable data
// yields an empty collection.
func (ds *DataStorage) GetUserData() []UserRecord {
	users, err := ds.readUsers()
	if err != nil {
		logger.Store("failed to load user data: %v", err)
		return []UserRecord{}
	}
	return users
}

// GetConnectionCount returns the stored count for address, 0 when unknown
// or on any read failure.
func (ds *DataStorage) GetConnectionCount(address string) int {
	return countFor(ds.GetUserData(), address)
}

// SaveAdminData persists the admin record.
func (ds *DataStorage) SaveAdminData(admin *AdminRecord) bool {
	data, err := json.Marshal(admin)
	if err != nil {
		logger.Store("failed to marshal admin data: %v", err)
		return false
	}
	if err := ds.store.Set(AdminKey, data); err != nil {
		logger.Store("failed to persist admin data: %v", err)
		return false
	}
	return true
}

// GetAdminData returns the stored admin record, or the zeroed default shape
// when absent or unparsable.
func (ds *DataStorage) GetAdminData() AdminRecord {
	admin, err := ds.readAdmin()
	if err != nil {
		logger.Store("failed to load admin data: %v", err)
		return DefaultAdminRecord()
	}
	return admin
}

// UpdateAdminStats recomputes the aggregates from users and persists the
// result. Counters maintained by outside collaborators are carried over
// untouched. Returns nil when persisting fails.
func (ds *DataStorage) UpdateAdminStats(users []UserRecord) *AdminRecord {
	admin := ds.GetAdminData()

	totalSOL := decimal.Zero
	totalUSDC := decimal.Zero
	for _, u := range users {
		totalSOL = totalSOL.Add(decimal.NewFromFloat(u.Balances.Sol))
		// Missing or unparsable USDC strings count as zero.
		if usdc, err := decimal.NewFromString(u.Balances.Usdc); err == nil {
			totalUSDC = totalUSDC.Add(usdc)
		}
	}

	admin.TotalWallets = len(users)
	admin.TotalSOL = totalSOL.InexactFloat64()
	admin.TotalUSDC = totalUSDC.InexactFloat64()
	admin.ConnectedWallets = users
	admin.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if !ds.SaveAdminData(&admin) {
		return nil
	}
	return &admin
}

// ClearAllData removes both storage entries.
func (ds *DataStorage) ClearAllData() bool {
	ok := true
	if err := ds.store.Delete(UsersKey); err != nil {
		logger.Store("failed to clear user data: %v", err)
		ok = false
	}
	if err := ds.store.Delete(AdminKey); err != nil {
		logger.Store("failed to clear admin data: %v", err)
		ok = false
	}
	return ok
}

// GetDataStats summarizes the stored data; any failure yields nil rather
// than a partial result.
func (ds *DataStorage) GetDataStats() *DataStats {
	users, err := ds.readUsers()
	if err != nil {
		logger.Store("failed to load user data for stats: %v", err)
		return nil
	}
	admin, err := ds.readAdmin()
	if err != nil {
		logger.Store("failed to load admin data for stats: %v", err)
		return nil
	}

	stats := &DataStats{
		TotalUsers: len(users),
		AdminData:  admin,
	}
	for _, u := range users {
		stats.TotalConnections += u.ConnectionCount
		// RFC3339 UTC timestamps compare correctly as strings.
		if stats.LastActivity == nil || u.Timestamp > *stats.LastActivity {
			ts := u.Timestamp
			stats.LastActivity = &ts
		}
	}
	return stats
}
