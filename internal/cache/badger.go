package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCache is an in-memory badger store with per-entry TTLs. Nothing is
// written to disk, so snapshots do not survive a restart.
type BadgerCache struct {
	db *badger.DB

	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
}

// Config holds configuration for cache creation
type Config struct {
	MaxMemoryMB   int
	NumGoroutines int
}

// DefaultConfig returns a small in-memory configuration
func DefaultConfig() Config {
	return Config{
		MaxMemoryMB:   16,
		NumGoroutines: 2,
	}
}

// New opens an in-memory badger cache
func New(config Config) (*BadgerCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)

	if config.MaxMemoryMB > 0 {
		// badger rejects memtables whose batch limit is below the value threshold
		mb := max(config.MaxMemoryMB, 8)
		opts = opts.WithMemTableSize(int64(mb) << 20)
	}
	if config.NumGoroutines > 0 {
		opts = opts.WithNumGoroutines(config.NumGoroutines)
	}
	opts = opts.WithNumVersionsToKeep(1)
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (bc *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		if item.IsDeletedOrExpired() {
			return badger.ErrKeyNotFound
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		bc.misses.Add(1)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	bc.hits.Add(1)
	return value, nil
}

func (bc *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := bc.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err == nil {
		bc.sets.Add(1)
	}
	return err
}

func (bc *BadgerCache) Delete(ctx context.Context, key string) error {
	err := bc.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err == nil {
		bc.deletes.Add(1)
	}
	return err
}

// DeleteByPrefix removes every key starting with prefix
func (bc *BadgerCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	var keys [][]byte

	err := bc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = bc.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err == nil {
		bc.deletes.Add(uint64(len(keys)))
	}
	return err
}

func (bc *BadgerCache) GetMetrics() Metrics {
	m := Metrics{
		Hits:    bc.hits.Load(),
		Misses:  bc.misses.Load(),
		Sets:    bc.sets.Load(),
		Deletes: bc.deletes.Load(),
	}

	lsm, vlog := bc.db.Size()
	m.Size = uint64(lsm + vlog)

	_ = bc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			m.Keys++
		}
		return nil
	})
	return m
}

func (bc *BadgerCache) Close() error {
	return bc.db.Close()
}
