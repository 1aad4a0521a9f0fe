// Package observed implements observable properties: primitive and object
// values with change detection, the Link and Prop variants synchronized with a
// source property, and observed objects whose mutations reach every property
// that currently holds them.
//
// Everything hangs off a Runtime which owns the subscriber registry. Nothing
// here is safe for concurrent use. A Set runs its whole notification fan-out
// before returning; if a subscriber panics, the subscribers notified before it
// have already seen the change and nothing is rolled back.
package observed

import (
	"log/slog"
	"reflect"

	"github.com/delaneyj/statekit/subscriber"
)

type ErrorHandler func(source string, err error)

// ReadHook is called with the property info on every Get.
type ReadHook func(info string)

type Runtime struct {
	registry *subscriber.Registry
	// plain *T -> *Object[T]
	objects map[any]any
	logger  *slog.Logger
	onError ErrorHandler
	onRead  ReadHook
}

type RuntimeOption func(rt *Runtime)

func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithErrorHandler replaces the default handler, which logs at error level.
func WithErrorHandler(fn ErrorHandler) RuntimeOption {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

func WithReadHook(fn ReadHook) RuntimeOption {
	return func(rt *Runtime) {
		rt.onRead = fn
	}
}

func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		registry: subscriber.NewRegistry(),
		objects:  map[any]any{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.onError == nil {
		rt.onError = func(source string, err error) {
			rt.logger.Error("state error", "component", "observed", "source", source, "error", err)
		}
	}
	return rt
}

func (rt *Runtime) Registry() *subscriber.Registry {
	return rt.registry
}

func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// ReportError hands err to the configured ErrorHandler. It is used for errors
// raised inside notification callbacks, which have no caller to return to.
func (rt *Runtime) ReportError(source string, err error) {
	rt.onError(source, err)
}

// Register adds a subscriber created outside this package, such as a component.
func (rt *Runtime) Register(s subscriber.Subscriber) error {
	if !rt.registry.Add(s) {
		return ErrDuplicateSubscriber
	}
	return nil
}

// WrappedObjects returns how many plain values have been wrapped since the
// last Reset. Handles outlive their owners.
func (rt *Runtime) WrappedObjects() int {
	return len(rt.objects)
}

// Reset drops every registered subscriber and every Object handle. It does not
// call any teardown hook.
func (rt *Runtime) Reset() {
	rt.registry.Reset()
	rt.objects = map[any]any{}
}

func (rt *Runtime) read(info string) {
	if rt.onRead != nil {
		rt.onRead(info)
	}
}

// IsObservedObject reports whether v is an Object handle, a Subscribable
// value, or a plain pointer that already has a handle.
func (rt *Runtime) IsObservedObject(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case objectHandle, Subscribable:
		return true
	}
	if reflect.ValueOf(v).Kind() != reflect.Pointer {
		return false
	}
	_, ok := rt.objects[v]
	return ok
}
