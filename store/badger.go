package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/criyle/go-static-judge/submission"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const badgerKeyPrefix = "submission/"

var _ Store = &badgerStore{}

type badgerStore struct {
	db *badger.DB
}

// BadgerConfig defines parameters to open the badger store
type BadgerConfig struct {
	Path       string // ignored when InMemory
	InMemory   bool
	SyncWrites bool
	Logger     *zap.Logger // nil disables badger logging
}

// zapBadgerLogger adapts zap to badger.Logger
type zapBadgerLogger struct {
	*zap.SugaredLogger
}

func (l zapBadgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}

// NewBadgerStore opens a BadgerDB backed submission store
func NewBadgerStore(conf BadgerConfig) (Store, error) {
	if !conf.InMemory && conf.Path == "" {
		return nil, errors.New("badger: path is required for persistent store")
	}

	var opts badger.Options
	if conf.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(conf.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create directory %s: %w", conf.Path, err)
		}
		opts = badger.DefaultOptions(conf.Path)
	}
	opts = opts.WithSyncWrites(conf.SyncWrites).WithNumVersionsToKeep(1)
	if conf.Logger != nil {
		opts = opts.WithLogger(zapBadgerLogger{conf.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &badgerStore{db: db}, nil
}

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

func (s *badgerStore) Save(_ context.Context, sub *submission.Submission) error {
	assignID(sub)
	b, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(sub.ID), b)
	})
}

func (s *badgerStore) FindByID(_ context.Context, id string) (*submission.Submission, error) {
	var sub submission.Submission
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sub)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, submission.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *badgerStore) Remove(_ context.Context, id string) (bool, error) {
	var found bool
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return txn.Delete(badgerKey(id))
	})
	return found, err
}

func (s *badgerStore) List(context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), badgerKeyPrefix))
		}
		return nil
	})
	return ids, err
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
