package subscriber

import "sort"

// Registry maps IDs to live subscribers. It is not safe for concurrent use;
// the whole state core runs on one goroutine.
type Registry struct {
	nextID      ID
	subscribers map[ID]Subscriber
}

func NewRegistry() *Registry {
	return &Registry{
		subscribers: map[ID]Subscriber{},
	}
}

// MakeID returns a fresh ID. IDs increase monotonically and survive Reset.
func (r *Registry) MakeID() ID {
	id := r.nextID
	r.nextID++
	return id
}

// Add registers s under s.ID(). It returns false if the ID is already taken.
func (r *Registry) Add(s Subscriber) bool {
	id := s.ID()
	if _, ok := r.subscribers[id]; ok {
		return false
	}
	r.subscribers[id] = s
	return true
}

func (r *Registry) Has(id ID) bool {
	_, ok := r.subscribers[id]
	return ok
}

// Get returns the subscriber registered under id, or nil.
func (r *Registry) Get(id ID) Subscriber {
	return r.subscribers[id]
}

// Delete removes id and reports whether it was present.
func (r *Registry) Delete(id ID) bool {
	if _, ok := r.subscribers[id]; !ok {
		return false
	}
	delete(r.subscribers, id)
	return true
}

func (r *Registry) Count() int {
	return len(r.subscribers)
}

// IDs returns the registered IDs in ascending order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.subscribers))
	for id := range r.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reset forgets every registered subscriber without calling their teardown
// hooks. Used between independent runs in one process.
func (r *Registry) Reset() {
	r.subscribers = map[ID]Subscriber{}
}
