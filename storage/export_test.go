package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunaswap/core/wallet"
)

func TestExportData(t *testing.T) {
	ds := newTestStorage()
	require.True(t, ds.SaveUserData("a", wallet.Balances{Sol: 1.5, Usdc: "10.00"}, nil))
	ds.UpdateAdminStats(ds.GetUserData())

	bundle := ds.ExportData()
	require.NotNil(t, bundle)
	assert.Equal(t, ExportVersion, bundle.Version)
	assert.NotEmpty(t, bundle.Timestamp)
	assert.Len(t, bundle.UserData, 1)
	require.NotNil(t, bundle.AdminData)
	assert.Equal(t, 1, bundle.AdminData.TotalWallets)
}

func TestExportDataReadFailure(t *testing.T) {
	ds := NewDataStorage(&failStore{KVStore: NewMemStore(), failGet: true})
	assert.Nil(t, ds.ExportData())
}

func TestExportRestoreRoundtrip(t *testing.T) {
	ds := newTestStorage()
	require.True(t, ds.SaveUserData("a", wallet.Balances{Sol: 1.5, Usdc: "10.00"}, nil))
	require.True(t, ds.SaveUserData("a", wallet.Balances{Sol: 2.0, Usdc: "12.00"}, nil))
	ds.UpdateAdminStats(ds.GetUserData())

	bundle := ds.ExportData()
	require.NotNil(t, bundle)
	raw, err := json.Marshal(bundle)
	require.NoError(t, err)

	require.True(t, ds.ClearAllData())
	assert.Empty(t, ds.GetUserData())

	require.NoError(t, ds.RestoreData(strings.NewReader(string(raw))))

	users := ds.GetUserData()
	require.Len(t, users, 1)
	assert.Equal(t, 2, users[0].ConnectionCount)
	assert.Equal(t, "12.00", users[0].Balances.Usdc)
	assert.Equal(t, 1, ds.GetAdminData().TotalWallets)
}

func TestRestoreDataPartialBundle(t *testing.T) {
	ds := newTestStorage()
	admin := DefaultAdminRecord()
	admin.TotalSwaps = 9
	require.True(t, ds.SaveAdminData(&admin))

	// User data only; the stored admin record must stay untouched.
	input := `{"timestamp":"2026-08-28T00:00:00Z","userData":[{"address":"a","balances":{"sol":1,"usdc":"2.00"},"timestamp":"2026-08-28T00:00:00Z","connectionCount":1}],"version":"1.0"}`
	require.NoError(t, ds.RestoreData(strings.NewReader(input)))

	assert.Len(t, ds.GetUserData(), 1)
	assert.Equal(t, 9, ds.GetAdminData().TotalSwaps)
}

func TestRestoreDataInvalidJSON(t *testing.T) {
	ds := newTestStorage()
	err := ds.RestoreData(strings.NewReader("{broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestBackupData(t *testing.T) {
	ds := newTestStorage()
	require.True(t, ds.SaveUserData("a", wallet.Balances{Sol: 1}, nil))

	dir := t.TempDir()
	require.True(t, ds.BackupData(dir))

	name := "lunaswap-backup-" + time.Now().UTC().Format("2006-01-02") + ".json"
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var bundle ExportBundle
	require.NoError(t, json.Unmarshal(raw, &bundle))
	assert.Equal(t, ExportVersion, bundle.Version)
	assert.Len(t, bundle.UserData, 1)
}

func TestBackupDataBadDirectory(t *testing.T) {
	ds := newTestStorage()
	assert.False(t, ds.BackupData(filepath.Join(t.TempDir(), "does", "not", "exist")))
}
