package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/txengine/internal/errs"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL", "TXENGINE_ON_MALFORMED", "TXENGINE_SERVE_ADDR", "TXENGINE_SORTED"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	yml := writeFile(t, "txengine.yaml", `
log:
  level: debug
  format: text
replay:
  sorted: true
  on_malformed: skip
serve:
  addr: ":9090"
`)
	cfg, err := Load(yml, writeFile(t, ".env", ""))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Replay.Sorted)
	assert.Equal(t, "skip", cfg.Replay.OnMalformed)
	assert.Equal(t, ":9090", cfg.Serve.Addr)

	t.Setenv("TXENGINE_ON_MALFORMED", "fail")
	t.Setenv("TXENGINE_SORTED", "false")
	cfg, err = Load(yml, writeFile(t, ".env", ""))
	require.NoError(t, err)
	assert.Equal(t, "fail", cfg.Replay.OnMalformed)
	assert.False(t, cfg.Replay.Sorted)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DATABASE_URL")
	env := writeFile(t, ".env", "DATABASE_URL=postgres://localhost/txengine\n")
	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/txengine", cfg.DatabaseURL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "log: [\n"), "")
	require.Error(t, err)

	t.Setenv("TXENGINE_SORTED", "maybe")
	_, err = Load("", writeFile(t, ".env", ""))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "xml"
	cfg.Replay.OnMalformed = "ignore"
	err := cfg.Validate()
	require.ErrorIs(t, err, errs.ErrInvalid)
	assert.Contains(t, err.Error(), "xml")
	assert.Contains(t, err.Error(), "ignore")
}
