// Package badger provides a BadgerDB-backed implementation of driven.TableStore.
//
// Each table snapshot is stored under the key "table/<name>" and replaced in a
// single transaction, so readers see either the previous or the new snapshot.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

// Dir is the sub-directory of the store root holding the badger files.
const Dir = "index/badger"

const keyPrefix = "table/"

var _ driven.TableStore = (*TableStore)(nil)

// Config holds configuration for the badger table store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory disables disk persistence. Useful for testing.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio that triggers a rewrite.
	GCDiscardRatio float64
}

// DefaultConfig returns the configuration used for a store rooted at root.
func DefaultConfig(root string) Config {
	return Config{
		Path:           filepath.Join(root, Dir),
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger routes BadgerDB's internal logging through the logger package.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error("badger: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn("badger: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug("badger: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug("badger: "+strings.TrimSpace(format), args...)
}

// TableStore persists table snapshots in BadgerDB.
type TableStore struct {
	db *badger.DB

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Open opens a badger table store with the given configuration.
func Open(cfg Config) (*TableStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("%w: path is required for persistent database", domain.ErrInvalidInput)
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &TableStore{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// Name returns the backend name.
func (s *TableStore) Name() string {
	return "badger"
}

// Load returns the snapshot stored for table, or domain.ErrNotFound.
func (s *TableStore) Load(_ context.Context, table string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + table))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading table %s: %w", table, err)
	}
	return data, nil
}

// Save replaces the snapshot stored for table.
func (s *TableStore) Save(_ context.Context, table string, data []byte) error {
	if table == "" {
		return fmt.Errorf("%w: table name is empty", domain.ErrInvalidInput)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+table), data)
	})
	if err != nil {
		return fmt.Errorf("saving table %s: %w", table, err)
	}
	return nil
}

// Tables lists the stored table names in lexical order.
func (s *TableStore) Tables() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close stops background GC and closes the database.
func (s *TableStore) Close() error {
	if s.stopCh != nil {
		s.stopOnce.Do(func() {
			close(s.stopCh)
			<-s.doneCh
		})
	}
	return s.db.Close()
}

func (s *TableStore) runGC(interval time.Duration, ratio float64) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing worth collecting.
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn("badger value log GC: %v", err)
			}
		}
	}
}
