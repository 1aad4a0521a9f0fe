package observed

import (
	"fmt"
	"reflect"

	"github.com/delaneyj/statekit/subscriber"
)

func checkPrimitive(v any) error {
	if v == nil {
		return nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	}
	return fmt.Errorf("%w: %T is not a primitive value", ErrKindMismatch, v)
}

// simpleCell stores a primitive value locally.
type simpleCell[T comparable] struct {
	base[T]
	value T
	// T is an interface type, so the kind is checked on every Set
	dynamic bool
}

func (c *simpleCell[T]) init(rt *Runtime, self subscriber.Subscriber, value T, owner subscriber.Subscriber, info string) error {
	c.dynamic = reflect.TypeFor[T]().Kind() == reflect.Interface
	if err := checkPrimitive(any(value)); err != nil {
		return err
	}
	c.value = value
	c.base.init(rt, self, owner, info)
	return nil
}

func (c *simpleCell[T]) Get() T {
	c.checkAlive()
	c.rt.read(c.info)
	return c.value
}

func (c *simpleCell[T]) Set(newValue T) {
	c.checkAlive()
	if c.dynamic {
		if err := checkPrimitive(any(newValue)); err != nil {
			panic(err)
		}
	}
	if c.value == newValue {
		return
	}
	c.value = newValue
	c.NotifyHasChanged(newValue)
}

// SimpleProperty owns a primitive value.
type SimpleProperty[T comparable] struct {
	simpleCell[T]
}

// NewSimpleProperty fails with ErrKindMismatch if value is not a primitive.
// owner may be nil.
func NewSimpleProperty[T comparable](rt *Runtime, value T, owner subscriber.Subscriber, info string) (*SimpleProperty[T], error) {
	p := &SimpleProperty[T]{}
	if err := p.init(rt, p, value, owner, info); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SimpleProperty[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[T], error) {
	return NewSimpleLink[T](p.rt, p, owner, info), nil
}

func (p *SimpleProperty[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[T], error) {
	return NewSubscribingProp[T](p.rt, p, owner, info), nil
}

func (p *SimpleProperty[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if p.deleted {
		return
	}
	p.tearDown(unsubscribeMe)
}

func (p *SimpleProperty[T]) AboutToBeDeleted() {
	p.TearDown()
}

// SimpleProp is a one-way copy that does not follow any source. Writes stay
// local.
type SimpleProp[T comparable] struct {
	simpleCell[T]
}

func NewSimpleProp[T comparable](rt *Runtime, value T, owner subscriber.Subscriber, info string) (*SimpleProp[T], error) {
	p := &SimpleProp[T]{}
	if err := p.init(rt, p, value, owner, info); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SimpleProp[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[T], error) {
	return nil, p.deriveError("SimpleProp", "Link")
}

func (p *SimpleProp[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[T], error) {
	return NewSubscribingProp[T](p.rt, p, owner, info), nil
}

func (p *SimpleProp[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if p.deleted {
		return
	}
	p.tearDown(unsubscribeMe)
}

func (p *SimpleProp[T]) AboutToBeDeleted() {
	p.TearDown()
}

// SubscribingProp is a one-way copy that follows its source. Every source
// change overwrites the local value through Set, so a change that leaves the
// local value as it was is not announced again. Local writes never reach the
// source.
type SubscribingProp[T comparable] struct {
	simpleCell[T]
	source Property[T]
}

func NewSubscribingProp[T comparable](rt *Runtime, source Property[T], owner subscriber.Subscriber, info string) *SubscribingProp[T] {
	p := &SubscribingProp[T]{source: source}
	// the source already holds a primitive, so init cannot fail
	_ = p.init(rt, p, source.Get(), owner, info)
	source.SubscribeMe(p)
	return p
}

func (p *SubscribingProp[T]) HasChanged(newValue T) {
	if p.deleted {
		return
	}
	p.Set(newValue)
}

func (p *SubscribingProp[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[T], error) {
	return nil, p.deriveError("SubscribingProp", "Link")
}

func (p *SubscribingProp[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[T], error) {
	return NewSubscribingProp[T](p.rt, p, owner, info), nil
}

func (p *SubscribingProp[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if p.deleted {
		return
	}
	p.source.UnlinkSubscriber(p.id)
	p.tearDown(unsubscribeMe)
}

func (p *SubscribingProp[T]) AboutToBeDeleted() {
	p.TearDown()
}

// SimpleLink is a two-way binding to a primitive source. It keeps no value of
// its own: Set writes through to the source and the change comes back through
// HasChanged, which re-announces it to the link's subscribers.
type SimpleLink[T comparable] struct {
	base[T]
	source Property[T]
}

func NewSimpleLink[T comparable](rt *Runtime, source Property[T], owner subscriber.Subscriber, info string) *SimpleLink[T] {
	l := &SimpleLink[T]{source: source}
	l.init(rt, l, owner, info)
	source.SubscribeMe(l)
	return l
}

func (l *SimpleLink[T]) Get() T {
	l.checkAlive()
	l.rt.read(l.info)
	return l.source.Get()
}

func (l *SimpleLink[T]) Set(newValue T) {
	l.checkAlive()
	if l.source.Get() == newValue {
		return
	}
	l.source.Set(newValue)
}

func (l *SimpleLink[T]) HasChanged(newValue T) {
	if l.deleted {
		return
	}
	l.NotifyHasChanged(newValue)
}

func (l *SimpleLink[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[T], error) {
	return NewSimpleLink[T](l.rt, l, owner, info), nil
}

func (l *SimpleLink[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[T], error) {
	return NewSubscribingProp[T](l.rt, l, owner, info), nil
}

func (l *SimpleLink[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if l.deleted {
		return
	}
	l.source.UnlinkSubscriber(l.id)
	l.tearDown(unsubscribeMe)
}

func (l *SimpleLink[T]) AboutToBeDeleted() {
	l.TearDown()
}
