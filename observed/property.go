package observed

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/statekit/subscriber"
)

// Property is implemented by every observed property variant.
type Property[T any] interface {
	subscriber.Subscriber

	Get() T
	Set(newValue T)

	Info() string
	SetInfo(info string)

	SubscribeMe(s subscriber.Subscriber) bool
	UnlinkSubscriber(id subscriber.ID) bool
	NumberOfSubscribers() int
	NotifyHasChanged(newValue T)

	CreateLink(owner subscriber.Subscriber, info string) (Property[T], error)
	CreateProp(owner subscriber.Subscriber, info string) (Property[T], error)

	// TearDown detaches the property from its source, removes unsubscribeMe
	// from its subscribers, and unregisters it. Any later Get or Set panics.
	TearDown(unsubscribeMe ...subscriber.ID)
	IsDeleted() bool
}

// subscriberSet keeps subscriber IDs in insertion order without duplicates.
type subscriberSet struct {
	order   []subscriber.ID
	members mapset.Set[subscriber.ID]
}

func newSubscriberSet() subscriberSet {
	return subscriberSet{
		members: mapset.NewThreadUnsafeSet[subscriber.ID](),
	}
}

func (s *subscriberSet) add(id subscriber.ID) bool {
	if !s.members.Add(id) {
		return false
	}
	s.order = append(s.order, id)
	return true
}

func (s *subscriberSet) remove(id subscriber.ID) bool {
	if !s.members.Contains(id) {
		return false
	}
	s.members.Remove(id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *subscriberSet) has(id subscriber.ID) bool {
	return s.members.Contains(id)
}

func (s *subscriberSet) len() int {
	return len(s.order)
}

func (s *subscriberSet) snapshot() []subscriber.ID {
	ids := make([]subscriber.ID, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *subscriberSet) clear() {
	s.order = nil
	s.members.Clear()
}

// base holds what every property variant shares: identity, info label and
// the subscriber set.
type base[T any] struct {
	rt          *Runtime
	id          subscriber.ID
	info        string
	subscribers subscriberSet
	deleted     bool
}

func (b *base[T]) init(rt *Runtime, self subscriber.Subscriber, owner subscriber.Subscriber, info string) {
	b.rt = rt
	b.info = info
	b.subscribers = newSubscriberSet()
	b.id = rt.registry.MakeID()
	rt.registry.Add(self)
	if owner != nil {
		b.subscribers.add(owner.ID())
	}
}

func (b *base[T]) ID() subscriber.ID {
	return b.id
}

func (b *base[T]) Info() string {
	return b.info
}

func (b *base[T]) SetInfo(info string) {
	b.info = info
}

func (b *base[T]) IsDeleted() bool {
	return b.deleted
}

// SubscribeMe adds s to the subscribers. It returns false if s is already
// subscribed.
func (b *base[T]) SubscribeMe(s subscriber.Subscriber) bool {
	return b.subscribers.add(s.ID())
}

func (b *base[T]) UnlinkSubscriber(id subscriber.ID) bool {
	return b.subscribers.remove(id)
}

func (b *base[T]) NumberOfSubscribers() int {
	return b.subscribers.len()
}

// NotifyHasChanged hands newValue to every single-property subscriber and the
// info label to every multi-property subscriber, in subscription order.
func (b *base[T]) NotifyHasChanged(newValue T) {
	for _, id := range b.subscribers.snapshot() {
		// unlinked by an earlier subscriber during this fan-out
		if !b.subscribers.has(id) {
			continue
		}
		s := b.rt.registry.Get(id)
		if s == nil {
			continue
		}
		if vc, ok := s.(subscriber.ValueChanged[T]); ok {
			vc.HasChanged(newValue)
		}
		if pc, ok := s.(subscriber.PropertyChanged); ok {
			pc.PropertyHasChanged(b.info)
		}
	}
}

func (b *base[T]) checkAlive() {
	if b.deleted {
		panic(deletedError(b.info, b.id))
	}
}

func (b *base[T]) tearDown(unsubscribeMe []subscriber.ID) {
	for _, id := range unsubscribeMe {
		b.subscribers.remove(id)
	}
	b.subscribers.clear()
	b.rt.registry.Delete(b.id)
	b.deleted = true
}

func (b *base[T]) deriveError(from, want string) error {
	err := &DerivationError{From: from, Want: want}
	b.rt.ReportError(b.info, err)
	return err
}
