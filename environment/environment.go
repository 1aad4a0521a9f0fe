// Package environment seeds AppStorage with host settings (accessibility,
// color mode, font scales, layout direction, language) and mirrors later host
// changes into it.
package environment

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/delaneyj/statekit/appstorage"
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/subscriber"
)

var ErrUnsupportedValue = errors.New("unsupported environment value type")

// Prop is one key to seed and the value used when the host does not know it.
type Prop struct {
	Key          string
	DefaultValue any
}

type prop interface {
	TearDown(unsubscribeMe ...subscriber.ID)
}

type Environment struct {
	rt      *observed.Runtime
	store   *appstorage.AppStorage
	host    Host
	logger  *slog.Logger
	id      subscriber.ID
	props   map[string]prop
	deleted bool
}

// New registers the environment as a subscriber and hooks host change
// callbacks.
func New(store *appstorage.AppStorage, host Host) (*Environment, error) {
	rt := store.Runtime()
	e := &Environment{
		rt:     rt,
		store:  store,
		host:   host,
		logger: rt.Logger().With("component", "environment"),
		id:     rt.Registry().MakeID(),
		props:  map[string]prop{},
	}
	if err := rt.Register(e); err != nil {
		return nil, err
	}
	host.OnValueChanged(e.onValueChanged)
	return e, nil
}

func (e *Environment) ID() subscriber.ID {
	return e.id
}

func (e *Environment) PropertyHasChanged(info string) {
	e.logger.Debug("environment value changed", "key", info)
}

// EnvProp seeds key and reports whether it did. A key AppStorage already
// holds is left alone.
func (e *Environment) EnvProp(key string, defaultValue any) (bool, error) {
	if e.store.Has(key) {
		e.logger.Warn("key already in AppStorage, not overwriting", "key", key)
		return false, nil
	}
	value, ok := hostValue(e.host, key)
	if !ok {
		value = defaultValue
	}
	p, err := e.install(key, value)
	if err != nil {
		return false, fmt.Errorf("env prop %q: %w", key, err)
	}
	e.props[key] = p
	return true, nil
}

// EnvProps seeds every entry of props, carrying on past failures.
func (e *Environment) EnvProps(props []Prop) error {
	var errs []error
	for _, p := range props {
		if _, err := e.EnvProp(p.Key, p.DefaultValue); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Environment) install(key string, value any) (prop, error) {
	switch v := value.(type) {
	case bool:
		return appstorage.SetAndProp(e.store, key, v, e)
	case string:
		return appstorage.SetAndProp(e.store, key, v, e)
	case int:
		return appstorage.SetAndProp(e.store, key, v, e)
	case int64:
		return appstorage.SetAndProp(e.store, key, v, e)
	case float64:
		return appstorage.SetAndProp(e.store, key, v, e)
	case ColorMode:
		return appstorage.SetAndProp(e.store, key, v, e)
	case LayoutDirection:
		return appstorage.SetAndProp(e.store, key, v, e)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

// Keys returns the keys this environment seeded.
func (e *Environment) Keys() []string {
	var keys []string
	for _, k := range Keys {
		if _, ok := e.props[k]; ok {
			keys = append(keys, k)
		}
	}
	var custom []string
	for k := range e.props {
		if _, known := hostValue(e.host, k); !known {
			custom = append(custom, k)
		}
	}
	sort.Strings(custom)
	return append(keys, custom...)
}

func (e *Environment) onValueChanged(key string, value any) {
	if e.deleted {
		return
	}
	if _, ok := e.props[key]; !ok {
		e.logger.Debug("ignoring host change for unseeded key", "key", key)
		return
	}
	if err := e.store.SetAny(key, value); err != nil {
		e.rt.ReportError("environment", err)
	}
}

// AboutToBeDeleted drops the environment's props. The AppStorage entries stay.
func (e *Environment) AboutToBeDeleted() {
	if e.deleted {
		return
	}
	for _, p := range e.props {
		p.TearDown(e.id)
	}
	e.props = map[string]prop{}
	e.rt.Registry().Delete(e.id)
	e.deleted = true
}
