package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/pkg/config"
)

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RANGELIST_LOGGING_LEVEL", "warn")
	t.Setenv("RANGELIST_BENCH_OPS", "1234")
	t.Setenv("RANGELIST_OBSERVABILITY_EXPORTER", "prometheus")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 1234, cfg.Bench.Ops)
	assert.Equal(t, "prometheus", cfg.Observability.Exporter)
}

func TestLoadConfigEnvValidation(t *testing.T) {
	t.Setenv("RANGELIST_LOGGING_FORMAT", "csv")

	_, err := config.LoadConfig("")
	require.ErrorIs(t, err, config.ErrInvalidLogFormat)
}
