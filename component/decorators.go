package component

import (
	"github.com/delaneyj/statekit/observed"
)

// State declares a primitive property owned by v.
func State[T comparable](v *View, value T, info string) (*observed.SimpleProperty[T], error) {
	p, err := observed.NewSimpleProperty(v.rt, value, v, info)
	if err != nil {
		return nil, err
	}
	v.Own(p)
	return p, nil
}

// ObjectState declares an object property owned by v.
func ObjectState[T any](v *View, value *T, info string) *observed.ObjectProperty[T] {
	p := observed.NewObjectProperty(v.rt, value, v, info)
	v.Own(p)
	return p
}

// PropValue declares a one-way copy of value that does not follow any source.
func PropValue[T comparable](v *View, value T, info string) (*observed.SimpleProp[T], error) {
	p, err := observed.NewSimpleProp(v.rt, value, v, info)
	if err != nil {
		return nil, err
	}
	v.Own(p)
	return p, nil
}

// Link declares a two-way binding to source.
func Link[T any](v *View, source observed.Property[T], info string) (observed.Property[T], error) {
	p, err := source.CreateLink(v, info)
	if err != nil {
		return nil, err
	}
	v.Own(p)
	return p, nil
}

// Prop declares a one-way binding following source.
func Prop[T any](v *View, source observed.Property[T], info string) (observed.Property[T], error) {
	p, err := source.CreateProp(v, info)
	if err != nil {
		return nil, err
	}
	v.Own(p)
	return p, nil
}

// Nested declares a property bound to an existing object handle.
func Nested[T any](v *View, obj *observed.Object[T], info string) *observed.NestedObject[T] {
	p := observed.NewNestedObject(v.rt, obj, v, info)
	v.Own(p)
	return p
}
