package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/manan/range-list/pkg/intensity"
	"github.com/manan/range-list/pkg/script"
)

// ErrUnknownSequence is returned when --sequence selects a sequence that
// does not exist.
var ErrUnknownSequence = errors.New("unknown demo sequence")

// demoSequences are the canonical walkthrough scripts: overlapping adds with
// a negative pass, an adjacent-range merge, and a set overwrite inside a
// wider range.
var demoSequences = []script.Script{
	{
		Name: "overlapping adds",
		Ops: []script.Op{
			{Kind: script.OpAdd, From: 10, To: 30, Amount: 1},
			{Kind: script.OpAdd, From: 20, To: 40, Amount: 1},
			{Kind: script.OpAdd, From: 10, To: 40, Amount: -2},
		},
	},
	{
		Name: "adjacent merge",
		Ops: []script.Op{
			{Kind: script.OpAdd, From: 10, To: 20, Amount: 5},
			{Kind: script.OpAdd, From: 20, To: 30, Amount: 5},
		},
	},
	{
		Name: "set overwrite",
		Ops: []script.Op{
			{Kind: script.OpAdd, From: 10, To: 50, Amount: 1},
			{Kind: script.OpSet, From: 20, To: 40, Amount: 5},
		},
	},
}

// DemoCommand holds the configuration for the demo command.
type DemoCommand struct {
	root *rootOptions

	sequence int
}

// NewDemoCommand creates and configures the demo command.
func NewDemoCommand(root *rootOptions) *cobra.Command {
	dc := &DemoCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through the canonical example sequences",
		RunE:  dc.run,
	}

	cobraCmd.Flags().IntVarP(&dc.sequence, "sequence", "s", 0,
		fmt.Sprintf("sequence to run, 1-%d (0 = all)", len(demoSequences)))

	return cobraCmd
}

func (dc *DemoCommand) run(cmd *cobra.Command, _ []string) error {
	if dc.sequence < 0 || dc.sequence > len(demoSequences) {
		return fmt.Errorf("%w: %d", ErrUnknownSequence, dc.sequence)
	}

	out := cmd.OutOrStdout()

	for i, seq := range demoSequences {
		if dc.sequence != 0 && dc.sequence != i+1 {
			continue
		}

		fmt.Fprintf(out, "--- %d: %s ---\n", i+1, seq.Name)
		runDemoSequence(out, seq)
		fmt.Fprintln(out)
	}

	return nil
}

// runDemoSequence applies the ops one by one, printing each op and the
// breakpoint list it produces.
func runDemoSequence(out io.Writer, seq script.Script) {
	seg := intensity.New()

	for _, op := range seq.Ops {
		opLabel(op.Kind).Fprintf(out, "%-3s", string(op.Kind))
		fmt.Fprintf(out, " (%v, %v, %v) -> ", op.From, op.To, op.Amount)

		// Demo ops are built in, never of an unknown kind.
		_ = op.Apply(seg)

		fmt.Fprintln(out, seg.String())
	}
}

// opLabel picks the color for an op kind.
func opLabel(kind script.OpKind) *color.Color {
	if kind == script.OpSet {
		return color.New(color.FgMagenta)
	}

	return color.New(color.FgCyan)
}
