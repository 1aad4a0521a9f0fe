package observed

import (
	"github.com/delaneyj/statekit/subscriber"
)

// ObjectProperty owns a *T. Plain values are wrapped into an Object handle on
// adoption; Subscribable values are subscribed to as they are. Either way the
// property is an owning property of its current value until the value is
// replaced or the property is torn down.
type ObjectProperty[T any] struct {
	base[*T]
	value  *T
	target Subscribable
}

func NewObjectProperty[T any](rt *Runtime, value *T, owner subscriber.Subscriber, info string) *ObjectProperty[T] {
	p := &ObjectProperty[T]{}
	p.init(rt, p, owner, info)
	p.adopt(value)
	return p
}

func (p *ObjectProperty[T]) adopt(v *T) {
	p.value = v
	p.target = nil
	if v == nil {
		return
	}
	if s, ok := any(v).(Subscribable); ok {
		s.AddOwningProperty(p.id)
		p.target = s
		return
	}
	p.target = Wrap(p.rt, v, p.id)
}

func (p *ObjectProperty[T]) release() {
	if p.target != nil {
		p.target.RemoveOwningProperty(p.id)
		p.target = nil
	}
}

func (p *ObjectProperty[T]) Get() *T {
	p.checkAlive()
	p.rt.read(p.info)
	return p.value
}

// Set replaces the value. A pointer equal to the current one does nothing.
func (p *ObjectProperty[T]) Set(newValue *T) {
	p.checkAlive()
	if p.value == newValue {
		return
	}
	p.release()
	p.adopt(newValue)
	p.NotifyHasChanged(newValue)
}

// Object returns the handle of the current value, or nil when the value is
// nil or Subscribable.
func (p *ObjectProperty[T]) Object() *Object[T] {
	obj, _ := p.target.(*Object[T])
	return obj
}

func (p *ObjectProperty[T]) objectPropertyHasChanged() {
	if p.deleted {
		return
	}
	p.NotifyHasChanged(p.value)
}

func (p *ObjectProperty[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[*T], error) {
	return NewObjectLink[T](p.rt, p, owner, info), nil
}

func (p *ObjectProperty[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[*T], error) {
	return nil, p.deriveError("ObjectProperty", "Prop")
}

func (p *ObjectProperty[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if p.deleted {
		return
	}
	p.release()
	p.tearDown(unsubscribeMe)
}

func (p *ObjectProperty[T]) AboutToBeDeleted() {
	p.TearDown()
}

// ObjectLink is a two-way binding to an object-valued source. It does not own
// the object itself; field mutations reach it through the source, so each
// mutation is announced once.
type ObjectLink[T any] struct {
	base[*T]
	source Property[*T]
}

func NewObjectLink[T any](rt *Runtime, source Property[*T], owner subscriber.Subscriber, info string) *ObjectLink[T] {
	l := &ObjectLink[T]{source: source}
	l.init(rt, l, owner, info)
	source.SubscribeMe(l)
	return l
}

func (l *ObjectLink[T]) Get() *T {
	l.checkAlive()
	l.rt.read(l.info)
	return l.source.Get()
}

func (l *ObjectLink[T]) Set(newValue *T) {
	l.checkAlive()
	if l.source.Get() == newValue {
		return
	}
	l.source.Set(newValue)
}

func (l *ObjectLink[T]) HasChanged(newValue *T) {
	if l.deleted {
		return
	}
	l.NotifyHasChanged(newValue)
}

func (l *ObjectLink[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[*T], error) {
	return NewObjectLink[T](l.rt, l, owner, info), nil
}

func (l *ObjectLink[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[*T], error) {
	return nil, l.deriveError("ObjectLink", "Prop")
}

func (l *ObjectLink[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if l.deleted {
		return
	}
	l.source.UnlinkSubscriber(l.id)
	l.tearDown(unsubscribeMe)
}

func (l *ObjectLink[T]) AboutToBeDeleted() {
	l.TearDown()
}

// NestedObject binds straight to an Object handle, typically a field or an
// element of a larger observed value, and owns it.
type NestedObject[T any] struct {
	base[*T]
	obj *Object[T]
}

func NewNestedObject[T any](rt *Runtime, obj *Object[T], owner subscriber.Subscriber, info string) *NestedObject[T] {
	p := &NestedObject[T]{}
	p.init(rt, p, owner, info)
	p.adopt(obj)
	return p
}

func (p *NestedObject[T]) adopt(obj *Object[T]) {
	p.obj = obj
	if obj != nil {
		obj.AddOwningProperty(p.id)
	}
}

func (p *NestedObject[T]) release() {
	if p.obj != nil {
		p.obj.RemoveOwningProperty(p.id)
		p.obj = nil
	}
}

func (p *NestedObject[T]) Get() *T {
	p.checkAlive()
	p.rt.read(p.info)
	if p.obj == nil {
		return nil
	}
	return p.obj.Value()
}

// Set binds to the handle of newValue. The same pointer does nothing.
func (p *NestedObject[T]) Set(newValue *T) {
	p.checkAlive()
	if newValue == nil {
		p.SetObject(nil)
		return
	}
	if p.obj != nil && p.obj.Value() == newValue {
		return
	}
	p.SetObject(Wrap(p.rt, newValue, subscriber.Unassigned))
}

// SetObject unsubscribes from the current handle, adopts obj and notifies.
func (p *NestedObject[T]) SetObject(obj *Object[T]) {
	p.checkAlive()
	if p.obj == obj {
		return
	}
	p.release()
	p.adopt(obj)
	var v *T
	if obj != nil {
		v = obj.Value()
	}
	p.NotifyHasChanged(v)
}

func (p *NestedObject[T]) Object() *Object[T] {
	return p.obj
}

func (p *NestedObject[T]) objectPropertyHasChanged() {
	if p.deleted {
		return
	}
	p.NotifyHasChanged(p.obj.Value())
}

func (p *NestedObject[T]) CreateLink(owner subscriber.Subscriber, info string) (Property[*T], error) {
	return NewObjectLink[T](p.rt, p, owner, info), nil
}

func (p *NestedObject[T]) CreateProp(owner subscriber.Subscriber, info string) (Property[*T], error) {
	return nil, p.deriveError("NestedObject", "Prop")
}

func (p *NestedObject[T]) TearDown(unsubscribeMe ...subscriber.ID) {
	if p.deleted {
		return
	}
	p.release()
	p.tearDown(unsubscribeMe)
}

func (p *NestedObject[T]) AboutToBeDeleted() {
	p.TearDown()
}
