package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/cmd/rangelist/commands"
)

func TestDemoPrintsAllSequences(t *testing.T) {
	t.Parallel()

	output, err := runCommand(t, "demo")
	require.NoError(t, err)

	// Final states of the three walkthrough sequences.
	assert.Contains(t, output, "[[10 -1] [20 0] [30 -1] [40 0]]")
	assert.Contains(t, output, "[[10 5] [30 0]]")
	assert.Contains(t, output, "[[10 1] [20 5] [40 1] [50 0]]")
}

func TestDemoSingleSequence(t *testing.T) {
	t.Parallel()

	output, err := runCommand(t, "demo", "--sequence", "2")
	require.NoError(t, err)

	assert.Contains(t, output, "adjacent merge")
	assert.Contains(t, output, "[[10 5] [30 0]]")
	assert.NotContains(t, output, "set overwrite")
}

func TestDemoUnknownSequence(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "demo", "--sequence", "9")
	require.ErrorIs(t, err, commands.ErrUnknownSequence)
}
