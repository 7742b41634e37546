// Package memory holds a process-local PreferenceStore used by tests and by the
// "memory" storage backend.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

var errClosed = errors.New("memory store closed")

type value struct {
	str  string
	list []string
	flag bool
	kind byte
}

const (
	kindString byte = iota + 1
	kindList
	kindBool
)

type Store struct {
	mu     sync.RWMutex
	values map[string]value
	closed bool

	// FailWrites makes every setter return the error, for exercising failure paths.
	FailWrites error
}

var _ repository.PreferenceStore = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string]value)}
}

func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	v, err := s.get(key, kindString)
	return v.str, err
}

func (s *Store) SetString(ctx context.Context, key, val string) error {
	return s.put(key, value{str: val, kind: kindString})
}

func (s *Store) GetStringList(ctx context.Context, key string) ([]string, error) {
	v, err := s.get(key, kindList)
	if err != nil {
		return nil, err
	}
	return append([]string{}, v.list...), nil
}

func (s *Store) SetStringList(ctx context.Context, key string, values []string) error {
	return s.put(key, value{list: append([]string{}, values...), kind: kindList})
}

func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	v, err := s.get(key, kindBool)
	return v.flag, err
}

func (s *Store) SetBool(ctx context.Context, key string, val bool) error {
	return s.put(key, value{flag: val, kind: kindBool})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	delete(s.values, key)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SetFailWrites toggles write failures while other goroutines use the store.
func (s *Store) SetFailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailWrites = err
}

func (s *Store) get(key string, kind byte) (value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return value{}, errClosed
	}
	v, ok := s.values[key]
	if !ok || v.kind != kind {
		return value{}, domain.ErrPreferenceNotFound
	}
	return v, nil
}

func (s *Store) put(key string, v value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.values[key] = v
	return nil
}
