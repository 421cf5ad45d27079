package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWritesChartHTML(t *testing.T) {
	t.Parallel()

	scriptPath := writeScript(t, "profile.yaml", `name: profile
ops:
  - {op: add, from: 10, to: 50, amount: 1}
  - {op: set, from: 20, to: 40, amount: 5}
`)

	outPath := filepath.Join(t.TempDir(), "chart.html")

	_, err := runCommand(t, "render", scriptPath, "--out", outPath, "--title", "Test profile")
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)

	html := string(content)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Test profile")
}

func TestRenderMissingScript(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "render", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
