package sdk

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v2"
)

// BadgerStore persists chain state in a badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database at path. With inMemory set the
// path is ignored and nothing touches disk.
func OpenBadger(path string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (s *BadgerStore) Commit(writes map[string][]byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for k, v := range writes {
			var err error
			if v == nil {
				err = txn.Delete([]byte(k))
			} else {
				err = txn.Set([]byte(k), v)
			}
			if err != nil {
				return fmt.Errorf("write %q: %w", k, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
