// Package boltstore is a persist.Backend on top of a bbolt database file.
package boltstore

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds the persisted values unless another bucket is given.
const DefaultBucket = "persistent"

var errNoBucket = errors.New("bucket missing")

type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens or creates the database at path.
func Open(path, bucket string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s, err := NewStoreDB(db, bucket)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreDB uses an already open database, creating bucket if needed.
func NewStoreDB(db *bolt.DB, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	s := &Store{db: db, bucket: []byte(bucket)}
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("initialize bucket %s: %w", bucket, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) view(fn func(b *bolt.Bucket) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errNoBucket
		}
		return fn(b)
	})
}

func (s *Store) update(fn func(b *bolt.Bucket) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errNoBucket
		}
		return fn(b)
	})
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.view(func(b *bolt.Bucket) error {
		if v := b.Get([]byte(key)); v != nil {
			// only valid for the life of the transaction
			value = append([]byte{}, v...)
		}
		return nil
	})
	return value, value != nil, err
}

func (s *Store) Set(key string, value []byte) error {
	return s.update(func(b *bolt.Bucket) error {
		return b.Put([]byte(key), value)
	})
}

func (s *Store) Delete(key string) error {
	return s.update(func(b *bolt.Bucket) error {
		return b.Delete([]byte(key))
	})
}

func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.Each(func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

// Each calls fn for every entry in key order. value is only valid during the
// call.
func (s *Store) Each(fn func(key string, value []byte) error) error {
	return s.view(func(b *bolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}
