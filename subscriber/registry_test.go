package subscriber_test

import (
	"testing"

	"github.com/delaneyj/statekit/subscriber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	id      subscriber.ID
	deleted int
}

func (s *stub) ID() subscriber.ID { return s.id }
func (s *stub) AboutToBeDeleted() { s.deleted++ }

func TestMakeIDMonotonic(t *testing.T) {
	r := subscriber.NewRegistry()
	a := r.MakeID()
	b := r.MakeID()
	c := r.MakeID()
	assert.Less(t, a, b)
	assert.Less(t, b, c)

	r.Reset()
	assert.Greater(t, r.MakeID(), c, "ids must not be reused after reset")
}

func TestAddIsGuarded(t *testing.T) {
	r := subscriber.NewRegistry()
	s := &stub{id: r.MakeID()}

	require.True(t, r.Add(s))
	assert.False(t, r.Add(s))
	assert.False(t, r.Add(&stub{id: s.id}), "another subscriber with the same id")
	assert.Equal(t, 1, r.Count())
}

func TestGetHasDelete(t *testing.T) {
	r := subscriber.NewRegistry()
	s := &stub{id: r.MakeID()}
	r.Add(s)

	assert.True(t, r.Has(s.id))
	assert.Same(t, s, r.Get(s.id))
	assert.Nil(t, r.Get(s.id+1))

	assert.True(t, r.Delete(s.id))
	assert.False(t, r.Delete(s.id))
	assert.False(t, r.Has(s.id))
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, 0, s.deleted, "registry never calls teardown hooks")
}

func TestIDsSorted(t *testing.T) {
	r := subscriber.NewRegistry()
	var want []subscriber.ID
	for range 5 {
		s := &stub{id: r.MakeID()}
		want = append(want, s.id)
	}
	for i := len(want) - 1; i >= 0; i-- {
		r.Add(&stub{id: want[i]})
	}
	assert.Equal(t, want, r.IDs())

	r.Reset()
	assert.Empty(t, r.IDs())
}
