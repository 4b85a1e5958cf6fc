// Package badgerstore is the on-disk kv.Store backing the token cache
// (C4), the stream cache's persistent tier (C6), and the lyrics cache
// (C10) in a real deployment.
package badgerstore

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/ytmresolve/core/internal/kv"
)

type store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir. Badger logs
// at its own noisy default level; callers that want quiet startup should
// pass a Logger-suppressing badger.Options via OpenWithOptions instead.
func Open(dir string) (kv.Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (s *store) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (s *store) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *store) Iterate(_ context.Context, prefix string, fn func(kv.Entry) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			var value []byte
			if err := item.Value(func(val []byte) error {
				value = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}
			if !fn(kv.Entry{Key: key, Value: value}) {
				return nil
			}
		}
		return nil
	})
}

func (s *store) Close() error {
	return s.db.Close()
}
