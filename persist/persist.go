// Package persist keeps a subset of AppStorage keys in a durable Backend.
// Values are stored as JSON. A persisted key is written on PersistProp and
// after every change of its AppStorage entry.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/delaneyj/statekit/appstorage"
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/subscriber"
)

var (
	ErrNotPersisted     = errors.New("key is not persisted")
	ErrUnsupportedValue = errors.New("unsupported persisted value type")
)

type link interface {
	TearDown(unsubscribeMe ...subscriber.ID)
}

type persisted struct {
	link   link
	encode func() ([]byte, error)
	// digest of the last bytes written, zero before the first write
	digest  uint64
	written bool
}

type PersistentStorage struct {
	rt      *observed.Runtime
	store   *appstorage.AppStorage
	backend Backend
	logger  *slog.Logger
	id      subscriber.ID
	props   map[string]*persisted
	deleted bool
}

func New(store *appstorage.AppStorage, backend Backend) (*PersistentStorage, error) {
	rt := store.Runtime()
	ps := &PersistentStorage{
		rt:      rt,
		store:   store,
		backend: backend,
		logger:  rt.Logger().With("component", "persist"),
		id:      rt.Registry().MakeID(),
		props:   map[string]*persisted{},
	}
	if err := rt.Register(ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (ps *PersistentStorage) ID() subscriber.ID {
	return ps.id
}

// PropertyHasChanged writes the changed key through to the backend. Failures
// go to the runtime error handler since there is no caller to return them to.
func (ps *PersistentStorage) PropertyHasChanged(info string) {
	if ps.deleted {
		return
	}
	if err := ps.write(info); err != nil {
		ps.rt.ReportError("persist", err)
	}
}

func (ps *PersistentStorage) write(key string) error {
	p, ok := ps.props[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotPersisted, key)
	}
	data, err := p.encode()
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	digest := xxhash.Sum64(data)
	if p.written && p.digest == digest {
		return nil
	}
	if err := ps.backend.Set(key, data); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	p.digest, p.written = digest, true
	ps.logger.Debug("written", "key", key, "bytes", len(data))
	return nil
}

// initial picks the starting value of key: AppStorage's value if it has one
// (returned as def, SetAndLink ignores it), else the backend's, else def.
func initial[T any](ps *PersistentStorage, key string, def T) (T, error) {
	if ps.store.Has(key) {
		return def, nil
	}
	data, ok, err := ps.backend.Get(key)
	if err != nil {
		return def, fmt.Errorf("read %q: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return def, fmt.Errorf("decode %q: %w", key, err)
	}
	return value, nil
}

func (ps *PersistentStorage) track(key string, l link, encode func() ([]byte, error)) error {
	ps.props[key] = &persisted{link: l, encode: encode}
	if err := ps.write(key); err != nil {
		// not persisted until the first write lands
		l.TearDown(ps.id)
		delete(ps.props, key)
		return err
	}
	ps.logger.Debug("persisting", "key", key)
	return nil
}

// PersistProp starts persisting a primitive key. An existing AppStorage value
// wins over the backend, which wins over defaultValue. Persisting a key twice
// does nothing.
func PersistProp[T comparable](ps *PersistentStorage, key string, defaultValue T) error {
	if _, ok := ps.props[key]; ok {
		return nil
	}
	value, err := initial(ps, key, defaultValue)
	if err != nil {
		return err
	}
	l, err := appstorage.SetAndLink(ps.store, key, value, ps)
	if err != nil {
		return err
	}
	return ps.track(key, l, func() ([]byte, error) {
		return json.Marshal(l.Get())
	})
}

// PersistPropObject is PersistProp for object keys. In-place mutations of the
// object are written as well.
func PersistPropObject[T any](ps *PersistentStorage, key string, defaultValue *T) error {
	if _, ok := ps.props[key]; ok {
		return nil
	}
	value, err := initial(ps, key, defaultValue)
	if err != nil {
		return err
	}
	l, err := appstorage.SetAndLinkObject(ps.store, key, value, ps)
	if err != nil {
		return err
	}
	return ps.track(key, l, func() ([]byte, error) {
		return json.Marshal(l.Get())
	})
}

// PropOptions is one key for PersistProps.
type PropOptions struct {
	Key          string
	DefaultValue any
}

// PersistProps persists every entry of props, carrying on past failures.
func (ps *PersistentStorage) PersistProps(props []PropOptions) error {
	var errs []error
	for _, p := range props {
		if err := ps.persistAny(p.Key, p.DefaultValue); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ps *PersistentStorage) persistAny(key string, value any) error {
	switch v := value.(type) {
	case bool:
		return PersistProp(ps, key, v)
	case string:
		return PersistProp(ps, key, v)
	case int:
		return PersistProp(ps, key, v)
	case int64:
		return PersistProp(ps, key, v)
	case float64:
		return PersistProp(ps, key, v)
	}
	return fmt.Errorf("%w: %q is %T", ErrUnsupportedValue, key, value)
}

// DeleteProp stops persisting key and removes it from the backend. The
// AppStorage entry stays.
func (ps *PersistentStorage) DeleteProp(key string) error {
	p, ok := ps.props[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotPersisted, key)
	}
	p.link.TearDown(ps.id)
	delete(ps.props, key)
	if err := ps.backend.Delete(key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	ps.logger.Debug("no longer persisting", "key", key)
	return nil
}

// Keys returns the persisted keys in sorted order.
func (ps *PersistentStorage) Keys() []string {
	keys := make([]string, 0, len(ps.props))
	for k := range ps.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AboutToBeDeleted drops every link into AppStorage. Neither AppStorage nor
// the backend is modified.
func (ps *PersistentStorage) AboutToBeDeleted() {
	if ps.deleted {
		return
	}
	for _, p := range ps.props {
		p.link.TearDown(ps.id)
	}
	ps.props = map[string]*persisted{}
	ps.rt.Registry().Delete(ps.id)
	ps.deleted = true
}
