package appstorage_test

import (
	"testing"

	"github.com/delaneyj/statekit/appstorage"
	"github.com/delaneyj/statekit/component"
	"github.com/delaneyj/statekit/observed"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*observed.Runtime, *appstorage.AppStorage) {
	t.Helper()
	rt := observed.NewRuntime()
	return rt, appstorage.New(rt)
}

func newView(t *testing.T, rt *observed.Runtime, name string) *component.View {
	t.Helper()
	v, err := component.New(rt, name)
	require.NoError(t, err)
	return v
}

func TestSetAndLinkRoundTrip(t *testing.T) {
	rt, s := setup(t)
	v1 := newView(t, rt, "v1")
	v2 := newView(t, rt, "v2")

	l1, err := appstorage.SetAndLink(s, "K", 0, v1)
	require.NoError(t, err)
	l2, err := appstorage.SetAndLink(s, "K", 99, v2)
	require.NoError(t, err)
	assert.Equal(t, 0, l2.Get(), "default ignored for an existing key")

	l1.Set(7)
	got, ok := appstorage.Get[int](s, "K")
	require.True(t, ok)
	assert.Equal(t, 7, got)
	assert.Equal(t, 7, l2.Get())
	assert.Equal(t, 1, v1.Changes("K"))
	assert.Equal(t, 1, v2.Changes("K"))
	assert.Equal(t, 2, s.NumberOfSubscribers("K"))
}

func TestSetDoesNotCreate(t *testing.T) {
	_, s := setup(t)

	assert.False(t, appstorage.Set(s, "missing", 1))
	assert.False(t, s.Has("missing"))

	require.NoError(t, appstorage.SetOrCreate(s, "present", 1))
	assert.True(t, appstorage.Set(s, "present", 2))
	assert.False(t, appstorage.Set(s, "present", "two"), "wrong type")

	v, ok := appstorage.Get[int](s, "present")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = appstorage.Get[string](s, "present")
	assert.False(t, ok)
}

func TestSetOrCreate(t *testing.T) {
	_, s := setup(t)
	require.NoError(t, appstorage.SetOrCreate(s, "name", "a"))
	require.NoError(t, appstorage.SetOrCreate(s, "name", "b"))

	v, _ := appstorage.Get[string](s, "name")
	assert.Equal(t, "b", v)

	err := appstorage.SetOrCreate(s, "name", 3)
	assert.ErrorIs(t, err, appstorage.ErrTypeMismatch)

	type obj struct{ N int }
	err = appstorage.SetOrCreate(s, "obj", obj{})
	assert.ErrorIs(t, err, observed.ErrKindMismatch)
	assert.False(t, s.Has("obj"))
}

func TestSetAndPropFollowsButDoesNotWriteBack(t *testing.T) {
	rt, s := setup(t)
	v := newView(t, rt, "v")
	p, err := appstorage.SetAndProp(s, "mode", "light", v)
	require.NoError(t, err)

	p.Set("local")
	got, _ := appstorage.Get[string](s, "mode")
	assert.Equal(t, "light", got)

	require.True(t, appstorage.Set(s, "mode", "dark"))
	assert.Equal(t, "dark", p.Get())
	assert.Equal(t, 2, v.Changes("mode"))

	_, err = p.CreateLink(v, "mode")
	assert.ErrorIs(t, err, observed.ErrUnsupportedDerivation)
}

func TestDeleteRefusesKeysInUse(t *testing.T) {
	rt, s := setup(t)
	v := newView(t, rt, "v")
	l, err := appstorage.SetAndLink(s, "busy", 1, v)
	require.NoError(t, err)
	v.Own(l)
	require.NoError(t, appstorage.SetOrCreate(s, "idle", 2))

	assert.ErrorIs(t, s.Delete("busy"), appstorage.ErrKeyInUse)
	assert.ErrorIs(t, s.Clear(), appstorage.ErrKeyInUse)
	assert.Equal(t, 2, s.Size(), "clear removes nothing when a key is in use")

	assert.NoError(t, s.Delete("idle"))
	assert.ErrorIs(t, s.Delete("idle"), appstorage.ErrKeyNotFound)

	v.AboutToBeDeleted()
	assert.Equal(t, 0, s.NumberOfSubscribers("busy"))
	assert.NoError(t, s.Delete("busy"))
	assert.Equal(t, -1, s.NumberOfSubscribers("busy"))
	assert.Equal(t, 0, rt.Registry().Count())
}

func TestKeys(t *testing.T) {
	_, s := setup(t)
	for _, k := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, appstorage.SetOrCreate(s, k, true))
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, s.Clear())
	assert.Empty(t, s.Keys())
}

func TestLinkAndPropOfExistingKey(t *testing.T) {
	rt, s := setup(t)
	v := newView(t, rt, "v")

	_, err := appstorage.Link[int](s, "nope", v)
	assert.ErrorIs(t, err, appstorage.ErrKeyNotFound)

	require.NoError(t, appstorage.SetOrCreate(s, "n", 1))
	l, err := appstorage.Link[int](s, "n", v)
	require.NoError(t, err)
	p, err := appstorage.Prop[int](s, "n", v)
	require.NoError(t, err)

	l.Set(5)
	assert.Equal(t, 5, p.Get())
	assert.Equal(t, 2, v.Changes("n"), "link and prop share the label and each report")

	_, err = appstorage.Link[string](s, "n", v)
	assert.ErrorIs(t, err, appstorage.ErrTypeMismatch)
}

func TestSetAny(t *testing.T) {
	_, s := setup(t)
	require.NoError(t, appstorage.SetOrCreate(s, "scale", 1.0))

	require.NoError(t, s.SetAny("scale", 1.5))
	v, ok := s.GetAny("scale")
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	assert.ErrorIs(t, s.SetAny("scale", 2), appstorage.ErrTypeMismatch)
	assert.ErrorIs(t, s.SetAny("other", 2), appstorage.ErrKeyNotFound)
}

type profile struct {
	Name string
	Age  int
}

func TestObjectEntries(t *testing.T) {
	rt, s := setup(t)
	v := newView(t, rt, "v")

	l, err := appstorage.SetAndLinkObject(s, "profile", &profile{Name: "ada"}, v)
	require.NoError(t, err)
	assert.Equal(t, "ada", l.Get().Name)

	_, err = appstorage.Prop[*profile](s, "profile", v)
	assert.ErrorIs(t, err, observed.ErrUnsupportedDerivation)

	next := &profile{Name: "grace"}
	require.NoError(t, appstorage.SetOrCreateObject(s, "profile", next))
	assert.Same(t, next, l.Get())
	assert.Equal(t, 1, v.Changes("profile"))

	_, err = appstorage.SetAndLinkObject(s, "profile", &profile{}, v)
	require.NoError(t, err)

	_, err = appstorage.SetAndLinkObject[profile](s, "profile2", nil, v)
	require.NoError(t, err)
	got, ok := appstorage.Get[*profile](s, "profile2")
	assert.True(t, ok)
	assert.Nil(t, got)
}
