package observed

import (
	"github.com/delaneyj/statekit/subscriber"
)

// Subscribable is a value that tracks its own owning properties. Object
// properties subscribe to such values directly instead of wrapping them.
type Subscribable interface {
	AddOwningProperty(id subscriber.ID) bool
	RemoveOwningProperty(id subscriber.ID) bool
}

// objectOwner is implemented by every property that can own an object.
type objectOwner interface {
	objectPropertyHasChanged()
}

type objectHandle interface {
	Subscribable
	ownerCount() int
}

// Owners is the set of properties currently holding a value. Embed it in a
// type to make that type Subscribable, and call NotifyOwners after mutating it.
// Owners are notified in the order they were added.
type Owners struct {
	rt  *Runtime
	ids subscriberSet
}

func NewOwners(rt *Runtime) *Owners {
	return &Owners{
		rt:  rt,
		ids: newSubscriberSet(),
	}
}

func (o *Owners) AddOwningProperty(id subscriber.ID) bool {
	if id == subscriber.Unassigned {
		return false
	}
	return o.ids.add(id)
}

func (o *Owners) RemoveOwningProperty(id subscriber.ID) bool {
	return o.ids.remove(id)
}

func (o *Owners) HasOwningProperty(id subscriber.ID) bool {
	return o.ids.has(id)
}

func (o *Owners) ownerCount() int {
	return o.ids.len()
}

// NotifyOwners tells every property holding the value that it changed. Each
// owner is notified once, no matter how many owners share the value.
func (o *Owners) NotifyOwners() {
	for _, id := range o.ids.snapshot() {
		// an earlier owner may have dropped this one during fan-out
		if !o.ids.has(id) {
			continue
		}
		if owner, ok := o.rt.registry.Get(id).(objectOwner); ok {
			owner.objectPropertyHasChanged()
		}
	}
}

// Object is the observed handle of a plain *T. There is exactly one handle per
// pointer for the life of the Runtime, owned or not; Wrap hands out the
// existing one. Runtime.Reset forgets every handle.
type Object[T any] struct {
	*Owners
	value *T
}

// Wrap returns the handle for v, creating it on first use, and adds owner to
// its owning properties unless owner is subscriber.Unassigned.
func Wrap[T any](rt *Runtime, v *T, owner subscriber.ID) *Object[T] {
	if h, ok := rt.objects[v]; ok {
		obj := h.(*Object[T])
		obj.AddOwningProperty(owner)
		return obj
	}
	obj := &Object[T]{
		Owners: NewOwners(rt),
		value:  v,
	}
	rt.objects[v] = obj
	obj.AddOwningProperty(owner)
	return obj
}

func (o *Object[T]) Value() *T {
	return o.value
}

// Update runs fn on the wrapped value and then notifies every owner once.
// Fields written directly through Value() are not observed.
func (o *Object[T]) Update(fn func(v *T)) {
	fn(o.value)
	o.NotifyOwners()
}

// SetField assigns v to the field picked by field and notifies the owners of
// obj. Assigning the value the field already holds does nothing.
func SetField[T any, F comparable](obj *Object[T], field func(v *T) *F, v F) bool {
	ptr := field(obj.value)
	if *ptr == v {
		return false
	}
	*ptr = v
	obj.NotifyOwners()
	return true
}
