package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/internal/config"
	"github.com/aretw0/jotter/internal/platform"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), platform.ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, platform.AdapterFS, cfg.Adapter)
	assert.Equal(t, config.DefaultPath, cfg.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.SearchDelay)
	assert.NoError(t, cfg.Validate())
}

func TestDecode(t *testing.T) {
	cfg := config.Default()
	err := cfg.Decode(strings.NewReader(`
adapter: sqlite
path: notes.db
env: dev
language: pt-BR
search_delay: 100ms
s3:
  bucket: unused
`))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Adapter)
	assert.Equal(t, "notes.db", cfg.Path)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "pt-BR", cfg.Language)
	assert.Equal(t, 100*time.Millisecond, cfg.SearchDelay)
	assert.Equal(t, "unused", cfg.S3.Bucket)

	assert.NoError(t, cfg.Decode(strings.NewReader("")), "empty document keeps values")
	assert.Equal(t, "sqlite", cfg.Adapter)

	assert.Error(t, cfg.Decode(strings.NewReader("adaptr: fs\n")), "unknown keys are rejected")
}

func TestApplyEnv(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"JOTTER_ADAPTER":       "s3",
		"JOTTER_S3_BUCKET":     "notes",
		"JOTTER_S3_ENDPOINT":   "http://127.0.0.1:9000",
		"JOTTER_S3_PATH_STYLE": "true",
		"JOTTER_EVENT_BUFFER":  "10",
		"JOTTER_SEARCH_DELAY":  "1s",
		"JOTTER_ENV":           " staging ",
		"JOTTER_READ_ONLY":     "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Adapter)
	assert.Equal(t, "notes", cfg.S3.Bucket)
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, 10, cfg.EventBuffer)
	assert.Equal(t, time.Second, cfg.SearchDelay)
	assert.Equal(t, "staging", cfg.Env)
	assert.True(t, cfg.ReadOnly)
	assert.False(t, cfg.History)
	assert.NoError(t, cfg.Validate())

	for name, value := range map[string]string{
		"JOTTER_S3_PATH_STYLE": "maybe",
		"JOTTER_EVENT_BUFFER":  "many",
		"JOTTER_SEARCH_DELAY":  "soon",
		"JOTTER_HISTORY":       "often",
	} {
		cfg := config.Default()
		assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{name: value})), name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"unknown adapter", func(c *config.Config) { c.Adapter = "floppy" }, "Config.Adapter"},
		{"fs without path", func(c *config.Config) { c.Path = "" }, "Config.Path"},
		{"redis without addr", func(c *config.Config) { c.Adapter = "redis" }, "Redis.Addr"},
		{"s3 without bucket", func(c *config.Config) { c.Adapter = "s3" }, "S3.Bucket"},
		{"env with separator", func(c *config.Config) { c.Env = "a:b" }, "Config.Env"},
		{"bad language", func(c *config.Config) { c.Language = "not a language" }, "Config.Language"},
		{"negative buffer", func(c *config.Config) { c.EventBuffer = -1 }, "Config.EventBuffer"},
		{"bad endpoint", func(c *config.Config) { c.S3.Endpoint = "::nope" }, "Endpoint"},
		{"history without fs", func(c *config.Config) { c.Adapter = "memory"; c.History = true }, "History"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var ve *config.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	memory := config.Default()
	memory.Adapter = "memory"
	memory.Path = ""
	assert.NoError(t, memory.Validate(), "memory needs no path")
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "adapter: sqlite\npath: file.db\nenv: fromfile\n")
	t.Setenv("JOTTER_ENV", "fromenv")

	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Adapter, "file beats defaults")
	assert.Equal(t, "file.db", cfg.Path)
	assert.Equal(t, "fromenv", cfg.Env, "env beats file")
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := config.Load(missing, false)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Adapter, cfg.Adapter)

	_, err = config.Load(missing, true)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load(writeFile(t, "adapter: redis\n"), true)
	var ve *config.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = config.Load(writeFile(t, "adapter: [\n"), true)
	assert.Error(t, err)
}

func TestOptions_OpenWorkspace(t *testing.T) {
	cfg := config.Default()
	cfg.Path = t.TempDir()
	cfg.Env = "test"
	cfg.Language = "sv"

	w, err := platform.Open(t.Context(), cfg.Options()...)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, platform.AdapterFS, w.Adapter())
	assert.Equal(t, "notesApp:test", w.Store.Namespace())
}
