package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"autocut/internal/logging"
)

// BadgerStore keeps entries in an embedded Badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens the database in dir/badger.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory not configured")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	opts := badger.DefaultOptions(filepath.Join(dir, "badger"))
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

// Get copies the stored value for key out of the read transaction.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read badger entry: %w", err)
	}
	return value, nil
}

// Put stores value under key.
func (s *BadgerStore) Put(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("write badger entry: %w", err)
	}
	s.logger.Debug("cache entry written", logging.String("cache_key", key), logging.Int("size_bytes", len(value)))
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
