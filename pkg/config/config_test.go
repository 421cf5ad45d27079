package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "westeros", cfg.Render.Theme)
	assert.Equal(t, "Intensity profile", cfg.Render.Title)
	assert.Equal(t, 100000, cfg.Bench.Ops)
	assert.Equal(t, int64(42), cfg.Bench.Seed)
	assert.InDelta(t, 1e6, cfg.Bench.MaxPosition, 0)
	assert.InDelta(t, 0.25, cfg.Bench.SetRatio, 0)
	assert.Equal(t, 0, cfg.Bench.HibernateEvery)
	assert.Equal(t, "none", cfg.Observability.Exporter)
	assert.Empty(t, cfg.Observability.MetricsListen)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
logging:
  level: debug
  format: json

render:
  theme: dark
  title: "Coverage heat"

bench:
  ops: 500
  seed: 7
  set_ratio: 0.5
`

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rangelist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "dark", cfg.Render.Theme)
	assert.Equal(t, "Coverage heat", cfg.Render.Title)
	assert.Equal(t, 500, cfg.Bench.Ops)
	assert.Equal(t, int64(7), cfg.Bench.Seed)
	assert.InDelta(t, 0.5, cfg.Bench.SetRatio, 0)

	// Unset sections keep their defaults.
	assert.InDelta(t, 1e4, cfg.Bench.MaxSpan, 0)
	assert.Equal(t, "none", cfg.Observability.Exporter)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rangelist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [not-a-map"), 0o600))

	_, err := config.LoadConfig(path)
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "bad level",
			content: "logging:\n  level: chatty\n",
			wantErr: config.ErrInvalidLogLevel,
		},
		{
			name:    "bad format",
			content: "logging:\n  format: xml\n",
			wantErr: config.ErrInvalidLogFormat,
		},
		{
			name:    "set ratio above one",
			content: "bench:\n  set_ratio: 1.5\n",
			wantErr: config.ErrInvalidSetRatio,
		},
		{
			name:    "negative set ratio",
			content: "bench:\n  set_ratio: -0.1\n",
			wantErr: config.ErrInvalidSetRatio,
		},
		{
			name:    "zero ops",
			content: "bench:\n  ops: 0\n",
			wantErr: config.ErrInvalidBenchOps,
		},
		{
			name:    "bad exporter",
			content: "observability:\n  exporter: statsd\n",
			wantErr: config.ErrInvalidExporter,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "rangelist.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			_, err := config.LoadConfig(path)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
