package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v3"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
)

// BadgerStore is the durable key-value store backing workflow definitions
// and execution records.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

func NewBadgerStore(dataDir string, syncWrites bool, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage")

	opts := badger.DefaultOptions(dataDir).
		WithSyncWrites(syncWrites).
		WithLogger(newBadgerLogger())

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.NewStorageError("open", dataDir, err)
	}

	logger.Info("badger store opened", "data_dir", dataDir, "sync_writes", syncWrites)

	return &BadgerStore{
		db:     db,
		logger: logger,
	}, nil
}

func (s *BadgerStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("put", key, err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		s.logger.Error("badger put failed", "key", key, "error", err.Error())
		return domain.NewStorageError("put", key, err)
	}

	s.logger.Debug("badger put", "key", key, "value_length", len(value))
	return nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("get", key, err)
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.NewNotFoundError("key", key)
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.Debug("key not found in badger", "key", key)
			return nil, err
		}
		s.logger.Error("badger read transaction failed", "key", key, "error", err.Error())
		return nil, domain.NewStorageError("get", key, err)
	}

	s.logger.Debug("badger get", "key", key, "value_length", len(value))
	return value, nil
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("delete", key, err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return domain.NewStorageError("delete", key, err)
	}

	return nil
}

func (s *BadgerStore) List(ctx context.Context, prefix string) ([]ports.KeyValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("list", prefix, err)
	}

	var results []ports.KeyValue

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			value, err := item.ValueCopy(nil)
			if err != nil {
				return domain.NewStorageError("list", string(key), err)
			}

			results = append(results, ports.KeyValue{
				Key:   string(key),
				Value: value,
			})
		}

		return nil
	})
	if err != nil {
		return nil, domain.NewStorageError("list", prefix, err)
	}

	s.logger.Debug("badger list", "prefix", prefix, "count", len(results))
	return results, nil
}

func (s *BadgerStore) Close() error {
	s.logger.Info("closing badger store")
	return s.db.Close()
}
