package persist_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/statekit/appstorage"
	"github.com/delaneyj/statekit/component"
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/persist"
	"github.com/delaneyj/statekit/persist/memstore"
	"github.com/delaneyj/statekit/subscriber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend wraps a memstore, counts writes and can be made to fail.
type countingBackend struct {
	*memstore.Store
	sets int
	fail error
	// failWrites fails only Set
	failWrites error
}

func (b *countingBackend) Get(key string) ([]byte, bool, error) {
	if b.fail != nil {
		return nil, false, b.fail
	}
	return b.Store.Get(key)
}

func (b *countingBackend) Set(key string, value []byte) error {
	if b.fail != nil {
		return b.fail
	}
	if b.failWrites != nil {
		return b.failWrites
	}
	b.sets++
	return b.Store.Set(key, value)
}

func setup(t *testing.T, opts ...observed.RuntimeOption) (*appstorage.AppStorage, *countingBackend, *persist.PersistentStorage) {
	t.Helper()
	store := appstorage.New(observed.NewRuntime(opts...))
	backend := &countingBackend{Store: memstore.New()}
	ps, err := persist.New(store, backend)
	require.NoError(t, err)
	return store, backend, ps
}

func stored(t *testing.T, b persist.Backend, key string) string {
	t.Helper()
	v, ok, err := b.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "key %q not in backend", key)
	return string(v)
}

func TestExistingAppStorageValueWins(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, appstorage.SetOrCreate(store, "K", 123))
	require.NoError(t, backend.Store.Set("K", []byte("789")))

	require.NoError(t, persist.PersistProp(ps, "K", 456))

	v, _ := appstorage.Get[int](store, "K")
	assert.Equal(t, 123, v)
	assert.Equal(t, "123", stored(t, backend, "K"))
}

func TestBackendWinsOverDefault(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, backend.Store.Set("theme", []byte(`"dark"`)))

	require.NoError(t, persist.PersistProp(ps, "theme", "light"))
	v, _ := appstorage.Get[string](store, "theme")
	assert.Equal(t, "dark", v)
}

func TestDefaultIsWrittenWhenBackendIsEmpty(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, persist.PersistProp(ps, "count", 5))

	v, _ := appstorage.Get[int](store, "count")
	assert.Equal(t, 5, v)
	assert.Equal(t, "5", stored(t, backend, "count"))
	assert.Equal(t, []string{"count"}, ps.Keys())
}

func TestWriteThroughOnEveryChange(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, persist.PersistProp(ps, "count", 0))
	require.Equal(t, 1, backend.sets)

	v, err := component.New(store.Runtime(), "v")
	require.NoError(t, err)
	l, err := appstorage.SetAndLink(store, "count", 0, v)
	require.NoError(t, err)

	l.Set(1)
	assert.Equal(t, "1", stored(t, backend, "count"))
	require.True(t, appstorage.Set(store, "count", 2))
	assert.Equal(t, "2", stored(t, backend, "count"))
	assert.Equal(t, 3, backend.sets)

	require.True(t, appstorage.Set(store, "count", 2))
	assert.Equal(t, 3, backend.sets, "same value sets write nothing")

	require.NoError(t, persist.PersistProp(ps, "count", 100), "persisting twice is a no-op")
	assert.Equal(t, 3, backend.sets)
}

type settings struct {
	Volume int    `json:"volume"`
	Name   string `json:"name"`
}

func TestPersistObject(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, backend.Store.Set("settings", []byte(`{"volume":3,"name":"old"}`)))

	require.NoError(t, persist.PersistPropObject(ps, "settings", &settings{Volume: 1}))
	got, ok := appstorage.Get[*settings](store, "settings")
	require.True(t, ok)
	assert.Equal(t, settings{Volume: 3, Name: "old"}, *got)

	rt := store.Runtime()
	obj := observed.Wrap(rt, got, subscriber.Unassigned)
	obj.Update(func(s *settings) { s.Volume = 11 })
	assert.JSONEq(t, `{"volume":11,"name":"old"}`, stored(t, backend, "settings"))

	before := backend.sets
	obj.Update(func(s *settings) {})
	assert.Equal(t, before, backend.sets, "identical encoding is not rewritten")
}

func TestDeleteProp(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, persist.PersistProp(ps, "flag", true))
	require.Equal(t, 1, store.NumberOfSubscribers("flag"))

	require.NoError(t, ps.DeleteProp("flag"))
	_, ok, err := backend.Get("flag")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.NumberOfSubscribers("flag"))
	assert.True(t, store.Has("flag"), "AppStorage keeps the key")

	require.True(t, appstorage.Set(store, "flag", false))
	_, ok, _ = backend.Get("flag")
	assert.False(t, ok, "no longer written")

	assert.ErrorIs(t, ps.DeleteProp("flag"), persist.ErrNotPersisted)
}

func TestPersistProps(t *testing.T) {
	store, _, ps := setup(t)
	err := ps.PersistProps([]persist.PropOptions{
		{Key: "a", DefaultValue: 1},
		{Key: "b", DefaultValue: "x"},
		{Key: "c", DefaultValue: 2.5},
		{Key: "bad", DefaultValue: []int{1}},
	})
	assert.ErrorIs(t, err, persist.ErrUnsupportedValue)
	assert.Equal(t, []string{"a", "b", "c"}, ps.Keys())
	assert.Equal(t, []string{"a", "b", "c"}, store.Keys())
}

func TestBackendFailures(t *testing.T) {
	boom := errors.New("disk on fire")
	var reported []error
	store, backend, ps := setup(t, observed.WithErrorHandler(func(_ string, err error) {
		reported = append(reported, err)
	}))

	require.NoError(t, persist.PersistProp(ps, "ok", 1))

	backend.fail = boom
	err := persist.PersistProp(ps, "broken", 1)
	assert.ErrorIs(t, err, boom)

	require.True(t, appstorage.Set(store, "ok", 2))
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], boom)
	v, _ := appstorage.Get[int](store, "ok")
	assert.Equal(t, 2, v, "the store keeps the value when the write fails")
}

func TestFailedFirstWriteIsNotPersisted(t *testing.T) {
	boom := errors.New("disk full")
	store, backend, ps := setup(t)

	backend.failWrites = boom
	err := persist.PersistProp(ps, "broken", 1)
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, ps.Keys(), "broken")
	assert.Equal(t, 0, store.NumberOfSubscribers("broken"))
	require.NoError(t, store.Delete("broken"))

	backend.failWrites = nil
	require.NoError(t, persist.PersistProp(ps, "broken", 1))
	assert.Contains(t, ps.Keys(), "broken")
	assert.Equal(t, "1", stored(t, backend, "broken"))
}

func TestAboutToBeDeletedLeavesStorage(t *testing.T) {
	store, backend, ps := setup(t)
	require.NoError(t, persist.PersistProp(ps, "n", 1))
	sets := backend.sets

	ps.AboutToBeDeleted()
	assert.Equal(t, 0, store.NumberOfSubscribers("n"))
	assert.True(t, store.Has("n"))
	assert.Equal(t, "1", stored(t, backend, "n"))

	appstorage.Set(store, "n", 2)
	assert.Equal(t, sets, backend.sets)

	require.NoError(t, store.Delete("n"))
	assert.Equal(t, 0, store.Runtime().Registry().Count())
}
