package book

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Store is a disk-backed cache of decoded Polyglot entries, keyed by
// position hash. Parsing a large .bin book is a flat scan over the whole
// file every process start; Store lets a second run against the same file
// skip straight to the decoded entries instead.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if absent) a Badger-backed cache rooted at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open book store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying Badger handles.
func (s *Store) Close() error {
	return s.db.Close()
}

const metaSourceKey = "meta:source"

// sourceMeta records which file populated the cache, so a changed .bin
// invalidates rather than silently serving stale entries.
type sourceMeta struct {
	Path string
	Size int64
}

// Fresh reports whether the store already holds entries decoded from the
// exact file at path, matched by size as a cheap build fingerprint.
func (s *Store) Fresh(path string, size int64) bool {
	var meta sourceMeta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaSourceKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&meta)
		})
	})
	if err != nil {
		return false
	}
	return meta.Path == path && meta.Size == size
}

// PutAll writes every decoded entry keyed by position hash, then stamps the
// source metadata that Fresh checks on the next load.
func (s *Store) PutAll(entries map[uint64][]BookEntry, path string, size int64) error {
	// Drop whatever an earlier book left behind so LoadAll never mixes its
	// positions into this one.
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("clear book store: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for key, list := range entries {
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(list); err != nil {
				return fmt.Errorf("encode book entries: %w", err)
			}
			if err := txn.Set(keyBytes(key), buf.Bytes()); err != nil {
				return err
			}
		}

		var metaBuf bytes.Buffer
		if err := gob.NewEncoder(&metaBuf).Encode(sourceMeta{Path: path, Size: size}); err != nil {
			return fmt.Errorf("encode book store metadata: %w", err)
		}
		return txn.Set([]byte(metaSourceKey), metaBuf.Bytes())
	})
}

// LoadAll reads every cached position back into an in-memory map for Probe.
func (s *Store) LoadAll() (map[uint64][]BookEntry, error) {
	out := make(map[uint64][]BookEntry)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		metaKey := []byte(metaSourceKey)
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			if bytes.Equal(k, metaKey) {
				continue
			}

			key := binary.BigEndian.Uint64(k)
			var list []BookEntry
			if err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&list)
			}); err != nil {
				return fmt.Errorf("decode book entries: %w", err)
			}
			out[key] = list
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func keyBytes(key uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, key)
	return b
}
