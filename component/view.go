// Package component provides View, a multi-property subscriber standing in for
// a UI component: it owns the properties it declares, records which of them
// changed, and tears them all down with itself.
package component

import (
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/subscriber"
)

type owned interface {
	TearDown(unsubscribeMe ...subscriber.ID)
}

type View struct {
	rt       *observed.Runtime
	id       subscriber.ID
	name     string
	props    []owned
	changes  map[string]int
	dirty    []string
	onChange func(info string)
	deleted  bool
}

type Option func(v *View)

// OnChange is called from PropertyHasChanged, after the change is recorded.
func OnChange(fn func(info string)) Option {
	return func(v *View) {
		v.onChange = fn
	}
}

func New(rt *observed.Runtime, name string, opts ...Option) (*View, error) {
	v := &View{
		rt:      rt,
		id:      rt.Registry().MakeID(),
		name:    name,
		changes: map[string]int{},
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := rt.Register(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) ID() subscriber.ID {
	return v.id
}

func (v *View) Name() string {
	return v.name
}

func (v *View) PropertyHasChanged(info string) {
	if v.deleted {
		return
	}
	if v.changes[info] == 0 {
		v.dirty = append(v.dirty, info)
	}
	v.changes[info]++
	if v.onChange != nil {
		v.onChange(info)
	}
}

// Changes returns how often info was reported changed since the last Rerender.
func (v *View) Changes(info string) int {
	return v.changes[info]
}

// Dirty returns the infos reported changed since the last Rerender, in the
// order they were first reported.
func (v *View) Dirty() []string {
	return append([]string(nil), v.dirty...)
}

// Rerender clears the recorded changes.
func (v *View) Rerender() {
	v.dirty = nil
	v.changes = map[string]int{}
}

// Own makes p part of the view so it is torn down with it.
func (v *View) Own(p owned) {
	v.props = append(v.props, p)
}

// AboutToBeDeleted tears down every owned property, unsubscribing the view
// from each, then unregisters the view.
func (v *View) AboutToBeDeleted() {
	if v.deleted {
		return
	}
	for _, p := range v.props {
		p.TearDown(v.id)
	}
	v.props = nil
	v.rt.Registry().Delete(v.id)
	v.deleted = true
}
