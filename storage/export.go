package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"lunaswap/core/logger"
)

// ExportData snapshots both storage entries into a bundle, nil on failure.
func (ds *DataStorage) ExportData() *ExportBundle {
	users, err := ds.readUsers()
	if err != nil {
		logger.Store("export failed reading user data: %v", err)
		return nil
	}
	admin, err := ds.readAdmin()
	if err != nil {
		logger.Store("export failed reading admin data: %v", err)
		return nil
	}

	return &ExportBundle{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserData:  users,
		AdminData: &admin,
		Version:   ExportVersion,
	}
}

// BackupData writes the export bundle to a dated file in dir. Returns false
// when the export or the write fails.
func (ds *DataStorage) BackupData(dir string) bool {
	bundle := ds.ExportData()
	if bundle == nil {
		return false
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		logger.Store("failed to marshal backup: %v", err)
		return false
	}

	name := fmt.Sprintf("lunaswap-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
		logger.Store("failed to write backup file: %v", err)
		return false
	}

	logger.Store("backup written to %s", name)
	return true
}

// RestoreData reads an export bundle and overwrites the present entries
// wholesale. Partial bundles are accepted: an absent field leaves the
// corresponding entry untouched. Unlike the regular persistence paths, read
// and parse errors are returned to the caller for explicit handling.
func (ds *DataStorage) RestoreData(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read restore input: %w", err)
	}

	var bundle ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("failed to parse restore input: %w", err)
	}

	if bundle.UserData != nil {
		if !ds.writeUsers(bundle.UserData) {
			return fmt.Errorf("failed to restore user data")
		}
	}
	if bundle.AdminData != nil {
		if !ds.SaveAdminData(bundle.AdminData) {
			return fmt.Errorf("failed to restore admin data")
		}
	}
	return nil
}
