package appstorage

import (
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/subscriber"
)

// Get returns the value of key. ok is false if key is absent or holds
// another type.
func Get[T any](s *AppStorage, key string) (value T, ok bool) {
	p, err := lookup[T](s, key)
	if err != nil {
		return value, false
	}
	return p.Get(), true
}

// Set updates an existing key and reports whether it did. It never creates a
// key.
func Set[T any](s *AppStorage, key string, value T) bool {
	p, err := lookup[T](s, key)
	if err != nil {
		return false
	}
	p.Set(value)
	return true
}

// SetOrCreate sets key, creating a primitive entry if it is absent.
func SetOrCreate[T comparable](s *AppStorage, key string, value T) error {
	if s.Has(key) {
		p, err := lookup[T](s, key)
		if err != nil {
			return err
		}
		p.Set(value)
		return nil
	}
	_, err := createSimple(s, key, value)
	return err
}

// SetOrCreateObject sets key, creating an object entry if it is absent.
func SetOrCreateObject[T any](s *AppStorage, key string, value *T) error {
	if s.Has(key) {
		p, err := lookup[*T](s, key)
		if err != nil {
			return err
		}
		p.Set(value)
		return nil
	}
	createObject(s, key, value)
	return nil
}

// SetAndLink returns a two-way Link to key for sub. When key exists,
// defaultValue is ignored and the Link reads the stored value.
func SetAndLink[T comparable](s *AppStorage, key string, defaultValue T, sub subscriber.Subscriber) (observed.Property[T], error) {
	p, err := getOrCreateSimple(s, key, defaultValue)
	if err != nil {
		return nil, err
	}
	return p.CreateLink(sub, key)
}

// SetAndProp returns a one-way Prop of key for sub, following the stored
// value. When key exists, defaultValue is ignored.
func SetAndProp[T comparable](s *AppStorage, key string, defaultValue T, sub subscriber.Subscriber) (observed.Property[T], error) {
	p, err := getOrCreateSimple(s, key, defaultValue)
	if err != nil {
		return nil, err
	}
	return p.CreateProp(sub, key)
}

// SetAndLinkObject is SetAndLink for object entries.
func SetAndLinkObject[T any](s *AppStorage, key string, defaultValue *T, sub subscriber.Subscriber) (observed.Property[*T], error) {
	p, err := lookup[*T](s, key)
	if err != nil {
		if s.Has(key) {
			return nil, err
		}
		p = createObject(s, key, defaultValue)
	}
	return p.CreateLink(sub, key)
}

// Link returns a two-way Link to an existing key.
func Link[T any](s *AppStorage, key string, sub subscriber.Subscriber) (observed.Property[T], error) {
	p, err := lookup[T](s, key)
	if err != nil {
		return nil, err
	}
	return p.CreateLink(sub, key)
}

// Prop returns a one-way Prop of an existing key. Object entries cannot
// produce one.
func Prop[T any](s *AppStorage, key string, sub subscriber.Subscriber) (observed.Property[T], error) {
	p, err := lookup[T](s, key)
	if err != nil {
		return nil, err
	}
	return p.CreateProp(sub, key)
}

func getOrCreateSimple[T comparable](s *AppStorage, key string, defaultValue T) (observed.Property[T], error) {
	if s.Has(key) {
		return lookup[T](s, key)
	}
	return createSimple(s, key, defaultValue)
}

func createSimple[T comparable](s *AppStorage, key string, value T) (observed.Property[T], error) {
	p, err := observed.NewSimpleProperty(s.rt, value, nil, key)
	if err != nil {
		return nil, err
	}
	s.add(key, newSlot[T](p))
	return p, nil
}

func createObject[T any](s *AppStorage, key string, value *T) observed.Property[*T] {
	p := observed.NewObjectProperty(s.rt, value, nil, key)
	s.add(key, newSlot[*T](p))
	return p
}
