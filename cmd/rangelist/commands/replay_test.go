package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/cmd/rangelist/commands"
	"github.com/manan/range-list/pkg/intensity"
	"github.com/manan/range-list/pkg/persist"
)

const overlapScript = `name: overlap
ops:
  - {op: add, from: 10, to: 30, amount: 1}
  - {op: add, from: 20, to: 40, amount: 1}
`

func TestReplayCompactOutput(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "overlap.yaml", overlapScript)

	output, err := runCommand(t, "replay", path, "--format", "compact")
	require.NoError(t, err)

	assert.Contains(t, output, "[[10 1] [20 2] [30 1] [40 0]]")
}

func TestReplayTableOutput(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "overlap.yaml", overlapScript)

	output, err := runCommand(t, "replay", path)
	require.NoError(t, err)

	assert.Contains(t, output, "POSITION")
	assert.Contains(t, output, "INTENSITY")
	assert.Contains(t, output, "BREAKPOINTS")
}

func TestReplayJSONScriptWithOut(t *testing.T) {
	t.Parallel()

	scriptJSON := `{
  "name": "json demo",
  "ops": [
    {"op": "add", "from": 10, "to": 50, "amount": 1},
    {"op": "set", "from": 20, "to": 40, "amount": 5}
  ]
}`
	path := writeScript(t, "demo.json", scriptJSON)
	outPath := filepath.Join(t.TempDir(), "result.json")

	_, err := runCommand(t, "replay", path, "--format", "json", "--out", outPath)
	require.NoError(t, err)

	file, err := os.Open(outPath)
	require.NoError(t, err)

	defer file.Close()

	var snap persist.Snapshot
	require.NoError(t, persist.NewJSONCodec().Decode(file, &snap))

	assert.Equal(t, "json demo", snap.Name)
	assert.Equal(t, []intensity.Breakpoint{
		{Position: 10, Intensity: 1},
		{Position: 20, Intensity: 5},
		{Position: 40, Intensity: 1},
		{Position: 50, Intensity: 0},
	}, snap.Breakpoints)
}

func TestReplayVerifyPass(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "overlap.yaml", overlapScript)

	golden := persist.Snapshot{Breakpoints: []intensity.Breakpoint{
		{Position: 10, Intensity: 1},
		{Position: 20, Intensity: 2},
		{Position: 30, Intensity: 1},
		{Position: 40, Intensity: 0},
	}}

	goldenPath := filepath.Join(t.TempDir(), "golden.json")
	file, err := os.Create(goldenPath)
	require.NoError(t, err)
	require.NoError(t, persist.NewJSONCodec().Encode(file, golden))
	file.Close()

	_, err = runCommand(t, "replay", path, "--format", "compact", "--verify", goldenPath)
	require.NoError(t, err)
}

func TestReplayVerifyFail(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "overlap.yaml", overlapScript)

	golden := persist.Snapshot{Breakpoints: []intensity.Breakpoint{
		{Position: 10, Intensity: 3},
	}}

	goldenPath := filepath.Join(t.TempDir(), "golden.json")
	file, err := os.Create(goldenPath)
	require.NoError(t, err)
	require.NoError(t, persist.NewJSONCodec().Encode(file, golden))
	file.Close()

	_, err = runCommand(t, "replay", path, "--format", "compact", "--verify", goldenPath)
	require.ErrorIs(t, err, commands.ErrVerifyFailed)
}

func TestReplayStateRoundTrip(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "state.bin")

	first := writeScript(t, "first.yaml", `ops:
  - {op: add, from: 10, to: 30, amount: 1}
`)

	_, err := runCommand(t, "replay", first, "--format", "compact", "--state-out", statePath)
	require.NoError(t, err)

	second := writeScript(t, "second.yaml", `ops:
  - {op: add, from: 20, to: 40, amount: 1}
`)

	output, err := runCommand(t, "replay", second, "--format", "compact", "--state-in", statePath)
	require.NoError(t, err)

	assert.Contains(t, output, "[[10 1] [20 2] [30 1] [40 0]]")
}

func TestReplayUnknownFormat(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "overlap.yaml", overlapScript)

	_, err := runCommand(t, "replay", path, "--format", "xml")
	require.ErrorIs(t, err, commands.ErrUnknownFormat)
}

func TestReplayMissingScript(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "replay", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
