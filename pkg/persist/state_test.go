package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/pkg/intensity"
)

func TestSaveState_LoadState_JSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewJSONCodec()

	original := reportState{Script: "roundtrip", Ops: 77, Durations: map[string]float64{"k": 5}}

	require.NoError(t, SaveState(dir, "report", codec, original))

	_, err := os.Stat(filepath.Join(dir, "report.json"))
	require.NoError(t, err)

	var loaded reportState

	require.NoError(t, LoadState(dir, "report", codec, &loaded))
	assert.Equal(t, original, loaded)
}

func TestLoadState_FileNotFound(t *testing.T) {
	t.Parallel()

	var state reportState

	err := LoadState(t.TempDir(), "nonexistent", NewJSONCodec(), &state)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}

func TestSaveState_InvalidDirectory(t *testing.T) {
	t.Parallel()

	err := SaveState("/nonexistent/path/that/does/not/exist", "state", NewJSONCodec(), reportState{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}

func TestLoadState_DecodeError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Write invalid JSON to a file that LoadState will try to decode.
	path := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("not json{{{"), 0o600))

	var state reportState

	err := LoadState(dir, "corrupt", NewJSONCodec(), &state)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestPersister_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	p := NewPersister[reportState]("mystate", NewGobCodec())

	original := reportState{Script: "persister", Ops: 42}

	require.NoError(t, p.Save(dir, func() *reportState { return &original }))

	var restored reportState

	require.NoError(t, p.Load(dir, func(s *reportState) { restored = *s }))
	assert.Equal(t, original, restored)
}

func TestPersister_LoadMissingFile(t *testing.T) {
	t.Parallel()

	p := NewPersister[reportState]("missing", NewJSONCodec())

	assert.Error(t, p.Load(t.TempDir(), func(_ *reportState) {}))
}

func TestSaveSegments_LoadSegments(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(10, 30, 1)
	seg.Add(20, 40, 1)

	codecs := map[string]Codec{
		"json": NewJSONCodec(),
		"gob":  NewGobCodec(),
		"yaml": NewYAMLCodec(),
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()

			require.NoError(t, SaveSegments(dir, "snapshot", codec, "walkthrough", seg))

			restored, scriptName, err := LoadSegments(dir, "snapshot", codec)
			require.NoError(t, err)

			assert.Equal(t, "walkthrough", scriptName)
			assert.Equal(t, seg.ToArray(), restored.ToArray())
			require.NoError(t, restored.Validate())
		})
	}
}

func TestLoadSegments_Missing(t *testing.T) {
	t.Parallel()

	_, _, err := LoadSegments(t.TempDir(), "absent", NewJSONCodec())

	assert.Error(t, err)
}
