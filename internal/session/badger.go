package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcInterval = 10 * time.Minute

// BadgerStorage implements fiber.Storage on an embedded badger database.
type BadgerStorage struct {
	db   *badger.DB
	done chan struct{}
	once sync.Once
}

// NewBadgerStorage opens a badger database in dir, or in memory when dir is empty.
func NewBadgerStorage(dir string, logger *slog.Logger) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	s := &BadgerStorage{db: db, done: make(chan struct{})}
	if dir != "" {
		go s.gcLoop()
	}
	return s, nil
}

// Get returns nil, nil for a missing or expired key.
func (s *BadgerStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

// Set stores val under key. A zero exp means no expiry.
func (s *BadgerStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	e := badger.NewEntry([]byte(key), val)
	if exp > 0 {
		e = e.WithTTL(exp)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

func (s *BadgerStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Reset removes every key.
func (s *BadgerStorage) Reset() error {
	return s.db.DropAll()
}

func (s *BadgerStorage) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.db.Close()
}

func (s *BadgerStorage) gcLoop() {
	t := time.NewTicker(gcInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			for s.db.RunValueLogGC(0.5) == nil {
			}
		case <-s.done:
			return
		}
	}
}

// badgerLogger routes badger's printf logging into slog.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) log(level slog.Level, format string, args ...any) {
	if b.l == nil {
		return
	}
	b.l.Log(context.Background(), level, "badger", "component", "session", "detail", fmt.Sprintf(format, args...))
}

func (b badgerLogger) Errorf(f string, a ...any)   { b.log(slog.LevelError, f, a...) }
func (b badgerLogger) Warningf(f string, a ...any) { b.log(slog.LevelWarn, f, a...) }
func (b badgerLogger) Infof(f string, a ...any)    { b.log(slog.LevelDebug, f, a...) }
func (b badgerLogger) Debugf(f string, a ...any)   { b.log(slog.LevelDebug, f, a...) }
