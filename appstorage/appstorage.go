// Package appstorage is the process-wide keyed store of observed properties.
// Entries have no owning subscriber; components reach them through Links and
// Props created by SetAndLink, SetAndProp, Link and Prop.
package appstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/subscriber"
)

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrKeyInUse     = errors.New("key still has subscribers")
	ErrTypeMismatch = errors.New("value type does not match stored type")
)

type property interface {
	subscriber.Subscriber
	NumberOfSubscribers() int
	TearDown(unsubscribeMe ...subscriber.ID)
}

type slot struct {
	prop   property
	getAny func() any
	setAny func(v any) error
}

func newSlot[T any](p observed.Property[T]) *slot {
	return &slot{
		prop:   p,
		getAny: func() any { return p.Get() },
		setAny: func(v any) error {
			t, ok := v.(T)
			if !ok {
				return fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, v, *new(T))
			}
			p.Set(t)
			return nil
		},
	}
}

type AppStorage struct {
	rt      *observed.Runtime
	logger  *slog.Logger
	entries map[string]*slot
}

func New(rt *observed.Runtime) *AppStorage {
	return &AppStorage{
		rt:      rt,
		logger:  rt.Logger().With("component", "appstorage"),
		entries: map[string]*slot{},
	}
}

func (s *AppStorage) Runtime() *observed.Runtime {
	return s.rt
}

func (s *AppStorage) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Keys returns every key in sorted order.
func (s *AppStorage) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *AppStorage) Size() int {
	return len(s.entries)
}

// NumberOfSubscribers returns the subscribers of key, or -1 if key is absent.
func (s *AppStorage) NumberOfSubscribers(key string) int {
	e, ok := s.entries[key]
	if !ok {
		return -1
	}
	return e.prop.NumberOfSubscribers()
}

// GetAny returns the value of key without knowing its type.
func (s *AppStorage) GetAny(key string) (any, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.getAny(), true
}

// SetAny sets an existing key. The dynamic type of v must match the stored
// type exactly.
func (s *AppStorage) SetAny(key string, v any) error {
	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if err := e.setAny(v); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. A key that still has subscribers is not removed.
func (s *AppStorage) Delete(key string) error {
	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if n := e.prop.NumberOfSubscribers(); n > 0 {
		s.logger.Warn("refusing to delete key in use", "key", key, "subscribers", n)
		return fmt.Errorf("%w: %q has %d", ErrKeyInUse, key, n)
	}
	e.prop.TearDown()
	delete(s.entries, key)
	s.logger.Debug("deleted", "key", key)
	return nil
}

// Clear deletes every key, or none if any key is still in use.
func (s *AppStorage) Clear() error {
	for _, key := range s.Keys() {
		if n := s.entries[key].prop.NumberOfSubscribers(); n > 0 {
			return fmt.Errorf("%w: %q has %d", ErrKeyInUse, key, n)
		}
	}
	s.Reset()
	return nil
}

// Reset tears down every entry regardless of subscribers. Links still bound
// to an entry panic on their next use.
func (s *AppStorage) Reset() {
	for _, e := range s.entries {
		e.prop.TearDown()
	}
	s.entries = map[string]*slot{}
}

func (s *AppStorage) add(key string, e *slot) {
	s.entries[key] = e
	s.logger.Debug("created", "key", key)
}

func lookup[T any](s *AppStorage, key string) (observed.Property[T], error) {
	e, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	p, ok := e.prop.(observed.Property[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, key, e.getAny())
	}
	return p, nil
}
