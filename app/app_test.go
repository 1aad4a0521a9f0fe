package app_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/delaneyj/statekit/app"
	"github.com/delaneyj/statekit/appstorage"
	"github.com/delaneyj/statekit/component"
	"github.com/delaneyj/statekit/environment"
	"github.com/delaneyj/statekit/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := app.ParseOptions([]byte(`
log:
  level: debug
  format: json
persist:
  path: /tmp/state.db
  bucket: prefs
environment:
  file: env.yaml
  watch: true
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", opts.Log.Level)
	assert.Equal(t, "json", opts.Log.Format)
	assert.Equal(t, "/tmp/state.db", opts.Persist.Path)
	assert.Equal(t, "prefs", opts.Persist.Bucket)
	assert.Equal(t, "env.yaml", opts.Environment.File)
	assert.True(t, opts.Environment.Watch)

	opts, err = app.ParseOptions([]byte(`persist: {path: x.db}`))
	require.NoError(t, err)
	assert.Equal(t, "info", opts.Log.Level, "defaults survive partial files")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := app.LogOptions{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "key", "k")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.NotContains(t, buf.String(), "hidden")

	_, err = app.LogOptions{Level: "loud"}.NewLogger(&buf)
	assert.Error(t, err)
	_, err = app.LogOptions{Format: "xml"}.NewLogger(&buf)
	assert.Error(t, err)
}

func TestAppEndToEnd(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(envFile, []byte("colorMode: dark\n"), 0o644))

	opts := app.DefaultOptions()
	opts.Log.Level = "error"
	opts.Persist.Path = filepath.Join(dir, "state.db")
	opts.Environment.File = envFile

	a, err := app.New(opts)
	require.NoError(t, err)
	require.NoError(t, a.SeedEnvironment())

	mode, ok := appstorage.Get[environment.ColorMode](a.Storage, environment.KeyColorMode)
	require.True(t, ok)
	assert.Equal(t, environment.ColorModeDark, mode)

	require.NoError(t, persist.PersistProp(a.Persistent, "launches", 0))
	v, err := component.New(a.Runtime, "root")
	require.NoError(t, err)
	launches, err := appstorage.SetAndLink(a.Storage, "launches", 0, v)
	require.NoError(t, err)
	v.Own(launches)
	launches.Set(launches.Get() + 1)
	v.AboutToBeDeleted()
	require.NoError(t, a.Close())

	a, err = app.New(opts)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, persist.PersistProp(a.Persistent, "launches", 0))
	n, _ := appstorage.Get[int](a.Storage, "launches")
	assert.Equal(t, 1, n)
}

func TestReset(t *testing.T) {
	opts := app.DefaultOptions()
	opts.Log.Level = "error"
	a, err := app.New(opts)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.SeedEnvironment())
	require.NoError(t, persist.PersistProp(a.Persistent, "k", "v"))
	require.NotZero(t, a.Storage.Size())

	require.NoError(t, a.Reset())
	assert.Zero(t, a.Storage.Size())
	// only the fresh environment and persistent storage are registered
	assert.Equal(t, 2, a.Runtime.Registry().Count())

	require.NoError(t, persist.PersistProp(a.Persistent, "k", "other"))
	got, _ := appstorage.Get[string](a.Storage, "k")
	assert.Equal(t, "v", got, "the backend outlives a reset")
}
