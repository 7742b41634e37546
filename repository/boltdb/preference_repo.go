package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

const defaultBucket = "preferences"

// Values are stored as "<kind>:<payload>" so the getters can reject keys
// written with a different setter.
const (
	prefixString = "s:"
	prefixList   = "l:"
	prefixBool   = "b:"
)

// Store keeps preferences in a single BoltDB bucket. It is the on-device default.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

var _ repository.PreferenceStore = (*Store)(nil)

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	return s.get(ctx, key, prefixString)
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.put(ctx, key, prefixString+value)
}

func (s *Store) GetStringList(ctx context.Context, key string) ([]string, error) {
	raw, err := s.get(ctx, key, prefixList)
	if err != nil {
		return nil, err
	}
	values, err := repository.DecodeList(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid list preference", err)
	}
	return values, nil
}

func (s *Store) SetStringList(ctx context.Context, key string, values []string) error {
	raw, err := repository.EncodeList(values)
	if err != nil {
		return err
	}
	return s.put(ctx, key, prefixList+raw)
}

func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := s.get(ctx, key, prefixBool)
	if err != nil {
		return false, err
	}
	value, err := repository.DecodeBool(raw)
	if err != nil {
		return false, domain.WrapError(domain.ErrCodeInvalid, "invalid bool preference", err)
	}
	return value, nil
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.put(ctx, key, prefixBool+repository.EncodeBool(value))
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key, prefix string) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		str := string(raw)
		if len(str) < len(prefix) || str[:len(prefix)] != prefix {
			return nil
		}
		value, found = str[len(prefix):], true
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrPreferenceNotFound
	}
	return value, nil
}

func (s *Store) put(ctx context.Context, key, encoded string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(encoded))
	})
}

func (s *Store) ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
