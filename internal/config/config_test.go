package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_PartialOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "lsgconv.yaml", `
grid:
  path: /data/ostn15.db
  watch: true
server:
  listen: 127.0.0.1:9000
  read_timeout: 2s
log:
  level: debug
`)
	got, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Grid.Path = "/data/ostn15.db"
	want.Grid.Watch = true
	want.Server.Listen = "127.0.0.1:9000"
	want.Server.ReadTimeout = 2 * time.Second
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	lvl, err := got.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoad_Guards(t *testing.T) {
	_, err := Load(writeConfig(t, "lsgconv.json", "{}"))
	assert.ErrorContains(t, err, ".yaml or .yml")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	big := writeConfig(t, "big.yml", "# "+strings.Repeat("x", maxFileSize)+"\n")
	_, err = Load(big)
	assert.ErrorContains(t, err, "too large")

	_, err = Load(writeConfig(t, "broken.yml", "grid: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Grid.Path = ""
	cfg.Grid.Width = 1
	cfg.Batch.Concurrency = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"grid.path", "grid.width", "batch.concurrency", "log.level"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "server.listen")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "lsgconv.yml", "batch:\n  concurrency: -4\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "batch.concurrency must be at least 1")
}
