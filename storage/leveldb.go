package storage

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelStore is a KVStore backed by a LevelDB database.
type LevelStore struct {
	db *leveldb.DB
}

func NewLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(key string) ([]byte, error) {
	v, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *LevelStore) Set(key string, value []byte) error {
	return s.db.Put([]byte(key), value, nil)
}

func (s *LevelStore) Delete(key string) error {
	return s.db.Delete([]byte(key), nil)
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}
