package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/pkg/intensity"
	"github.com/manan/range-list/pkg/script"
)

// Fixture scripts.
const (
	yamlFixture = `name: walkthrough
ops:
  - op: add
    from: 10
    to: 30
    amount: 1
  - op: add
    from: 20
    to: 40
    amount: 1
`

	jsonFixture = `{
  "name": "walkthrough",
  "ops": [
    {"op": "add", "from": 10, "to": 50, "amount": 1},
    {"op": "set", "from": 20, "to": 40, "amount": 5}
  ]
}`

	jsonMissingField = `{"ops": [{"op": "add", "from": 10, "amount": 1}]}`

	jsonWrongType = `{"ops": [{"op": "add", "from": "ten", "to": 30, "amount": 1}]}`

	jsonUnknownKind = `{"ops": [{"op": "scale", "from": 10, "to": 30, "amount": 1}]}`

	yamlUnknownKind = `ops:
  - op: scale
    from: 10
    to: 30
    amount: 1
`

	yamlNonFinite = `ops:
  - op: add
    from: 10
    to: .inf
    amount: 1
`
)

// TestParseYAML verifies YAML decoding into ops.
func TestParseYAML(t *testing.T) {
	t.Parallel()

	s, err := script.ParseYAML([]byte(yamlFixture))
	require.NoError(t, err)

	assert.Equal(t, "walkthrough", s.Name)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, script.Op{Kind: script.OpAdd, From: 10, To: 30, Amount: 1}, s.Ops[0])
	assert.Equal(t, script.Op{Kind: script.OpAdd, From: 20, To: 40, Amount: 1}, s.Ops[1])
}

// TestParseJSON verifies schema-checked JSON decoding.
func TestParseJSON(t *testing.T) {
	t.Parallel()

	s, err := script.ParseJSON([]byte(jsonFixture))
	require.NoError(t, err)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, script.OpSet, s.Ops[1].Kind)
}

// TestParseJSON_SchemaViolations verifies the schema rejects malformed
// scripts.
func TestParseJSON_SchemaViolations(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing field": jsonMissingField,
		"wrong type":    jsonWrongType,
		"unknown kind":  jsonUnknownKind,
	}

	for name, fixture := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := script.ParseJSON([]byte(fixture))
			require.ErrorIs(t, err, script.ErrSchemaViolation)
		})
	}
}

// TestParseYAML_UnknownKind verifies kind checking outside the schema path.
func TestParseYAML_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := script.ParseYAML([]byte(yamlUnknownKind))
	require.ErrorIs(t, err, script.ErrUnknownOp)
}

// TestParseYAML_NonFinite verifies non-finite values are rejected at the
// parse boundary.
func TestParseYAML_NonFinite(t *testing.T) {
	t.Parallel()

	_, err := script.ParseYAML([]byte(yamlNonFinite))
	require.ErrorIs(t, err, script.ErrNonFinite)
}

// TestLoad verifies extension dispatch.
func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlFixture), 0o600))

	jsonPath := filepath.Join(dir, "script.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonFixture), 0o600))

	fromYAML, err := script.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, fromYAML.Len())

	fromJSON, err := script.Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, fromJSON.Len())
}

// TestLoad_UnsupportedFormat verifies unknown extensions are rejected.
func TestLoad_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "script.toml")
	require.NoError(t, os.WriteFile(path, []byte("ops = []"), 0o600))

	_, err := script.Load(path)
	require.ErrorIs(t, err, script.ErrUnsupportedFormat)
}

// TestLoad_MissingFile verifies a readable error for absent scripts.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := script.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

// TestApply verifies a script drives the accumulator to the expected state.
func TestApply(t *testing.T) {
	t.Parallel()

	s, err := script.ParseJSON([]byte(jsonFixture))
	require.NoError(t, err)

	seg := intensity.New()
	require.NoError(t, s.Apply(seg))

	assert.Equal(t, [][2]float64{{10, 1}, {20, 5}, {40, 1}, {50, 0}}, seg.ToArray())
}

// TestOpApply_UnknownKind verifies applying a hand-built bad op errors.
func TestOpApply_UnknownKind(t *testing.T) {
	t.Parallel()

	op := script.Op{Kind: "scale", From: 10, To: 30, Amount: 1}

	err := op.Apply(intensity.New())
	require.ErrorIs(t, err, script.ErrUnknownOp)
}
