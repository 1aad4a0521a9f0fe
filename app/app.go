// Package app wires a Runtime, AppStorage, Environment and PersistentStorage
// together from Options.
package app

import (
	"context"
	"errors"
	"os"

	"github.com/delaneyj/statekit/appstorage"
	"github.com/delaneyj/statekit/environment"
	"github.com/delaneyj/statekit/environment/fileenv"
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/persist"
	"github.com/delaneyj/statekit/persist/boltstore"
	"github.com/delaneyj/statekit/persist/memstore"
)

type App struct {
	Runtime     *observed.Runtime
	Storage     *appstorage.AppStorage
	Environment *environment.Environment
	Persistent  *persist.PersistentStorage

	opts    *Options
	host    environment.Host
	fileEnv *fileenv.Host
	backend persist.Backend
	closers []func() error
}

// New builds an App. Extra runtime options are applied after the logger from
// opts.
func New(opts *Options, rtOpts ...observed.RuntimeOption) (*App, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger, err := opts.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	a := &App{opts: opts}

	if opts.Environment.File != "" {
		h, err := fileenv.Open(opts.Environment.File, fileenv.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		a.host, a.fileEnv = h, h
	} else {
		a.host = environment.NewStaticHost(environment.DefaultSettings())
	}

	if opts.Persist.Path != "" {
		st, err := boltstore.Open(opts.Persist.Path, opts.Persist.Bucket)
		if err != nil {
			return nil, err
		}
		a.backend = st
		a.closers = append(a.closers, st.Close)
	} else {
		a.backend = memstore.New()
	}

	rt := observed.NewRuntime(append([]observed.RuntimeOption{observed.WithLogger(logger)}, rtOpts...)...)
	if err := a.build(rt); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(rt *observed.Runtime) error {
	a.Runtime = rt
	a.Storage = appstorage.New(rt)
	env, err := environment.New(a.Storage, a.host)
	if err != nil {
		return err
	}
	a.Environment = env
	ps, err := persist.New(a.Storage, a.backend)
	if err != nil {
		return err
	}
	a.Persistent = ps
	return nil
}

// Host returns the environment host in use.
func (a *App) Host() environment.Host {
	return a.host
}

// Backend returns the persistent backend in use.
func (a *App) Backend() persist.Backend {
	return a.backend
}

// SeedEnvironment seeds every well-known environment key from the host.
func (a *App) SeedEnvironment() error {
	props := make([]environment.Prop, 0, len(environment.Keys))
	defaults := environment.DefaultSettings()
	for _, key := range environment.Keys {
		v, _ := defaults.Value(key)
		props = append(props, environment.Prop{Key: key, DefaultValue: v})
	}
	return a.Environment.EnvProps(props)
}

// WatchEnvironment follows the environment file until ctx is done. Host
// changes are applied on the calling goroutine, so call it from the goroutine
// that owns the state. It returns nil at once when no watched file is set.
func (a *App) WatchEnvironment(ctx context.Context) error {
	if a.fileEnv == nil || !a.opts.Environment.Watch {
		return nil
	}
	return a.fileEnv.Watch(ctx)
}

// Reset tears everything down and starts over with an empty Runtime and
// AppStorage on the same host and backend. Backend contents are kept.
func (a *App) Reset() error {
	a.Persistent.AboutToBeDeleted()
	a.Environment.AboutToBeDeleted()
	a.Storage.Reset()
	a.Runtime.Reset()
	return a.build(a.Runtime)
}

func (a *App) Close() error {
	var errs []error
	if a.Persistent != nil {
		a.Persistent.AboutToBeDeleted()
	}
	if a.Environment != nil {
		a.Environment.AboutToBeDeleted()
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
