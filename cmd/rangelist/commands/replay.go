package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/manan/range-list/pkg/intensity"
	"github.com/manan/range-list/pkg/observability"
	"github.com/manan/range-list/pkg/persist"
	"github.com/manan/range-list/pkg/script"
)

// Sentinel errors for the replay command.
var (
	ErrUnknownFormat = errors.New("unknown output format (use json, yaml, table or compact)")
	ErrVerifyFailed  = errors.New("breakpoints do not match the golden export")
)

// Output format names.
const (
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatTable   = "table"
	formatCompact = "compact"
)

// ReplayCommand holds the configuration for the replay command.
type ReplayCommand struct {
	root *rootOptions

	format   string
	out      string
	verify   string
	stateIn  string
	stateOut string
}

// NewReplayCommand creates and configures the replay command.
func NewReplayCommand(root *rootOptions) *cobra.Command {
	rc := &ReplayCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Apply an op script and print the resulting breakpoints",
		Long: `Apply a YAML or JSON op script to an accumulator and print the final
breakpoint list. The accumulator starts empty unless --state-in restores a
previously serialized snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: rc.run,
	}

	cobraCmd.Flags().StringVarP(&rc.format, "format", "f", formatTable, "output format (json, yaml, table, compact)")
	cobraCmd.Flags().StringVarP(&rc.out, "out", "o", "", "write the final breakpoints to this file (.json, .yaml)")
	cobraCmd.Flags().StringVar(&rc.verify, "verify", "", "golden JSON export to compare the final breakpoints against")
	cobraCmd.Flags().StringVar(&rc.stateIn, "state-in", "", "restore the accumulator from this snapshot first")
	cobraCmd.Flags().StringVar(&rc.stateOut, "state-out", "", "serialize the final accumulator to this file")

	return cobraCmd
}

func (rc *ReplayCommand) run(cmd *cobra.Command, args []string) error {
	scr, err := script.Load(args[0])
	if err != nil {
		return err
	}

	seg, err := rc.initialSegments()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	metrics, err := replayMetrics(ctx, rc.root)
	if err != nil {
		return err
	}

	start := time.Now()

	applyErr := applyInstrumented(ctx, scr, seg, metrics)
	if applyErr != nil {
		return applyErr
	}

	slog.Debug("script applied",
		"script", scr.Name, "ops", scr.Len(),
		"breakpoints", seg.Len(), "elapsed", time.Since(start))

	if rc.verify != "" {
		verifyErr := rc.verifyAgainstGolden(seg)
		if verifyErr != nil {
			return verifyErr
		}
	}

	printErr := rc.printResult(cmd, scr, seg)
	if printErr != nil {
		return printErr
	}

	if rc.out != "" {
		writeErr := writeBreakpointFile(rc.out, scr.Name, seg)
		if writeErr != nil {
			return writeErr
		}
	}

	// Last: Hibernate/Serialize consume the accumulator.
	if rc.stateOut != "" {
		return writeStateFile(rc.stateOut, seg)
	}

	return nil
}

// initialSegments builds the starting accumulator: empty, or restored from
// the --state-in snapshot.
func (rc *ReplayCommand) initialSegments() (*intensity.Segments, error) {
	if rc.stateIn == "" {
		return intensity.New(), nil
	}

	file, err := os.Open(rc.stateIn)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	seg := intensity.New()

	err = seg.Deserialize(file)
	if err != nil {
		return nil, fmt.Errorf("deserialize state: %w", err)
	}

	err = seg.Boot()
	if err != nil {
		return nil, fmt.Errorf("boot state: %w", err)
	}

	return seg, nil
}

// replayMetrics builds op metrics from the configured exporter. The default
// "none" exporter makes recording free.
func replayMetrics(ctx context.Context, root *rootOptions) (*observability.OpMetrics, error) {
	providers, err := observability.Init(ctx, observability.Config{
		ServiceName:  "rangelist",
		Exporter:     root.cfg.Observability.Exporter,
		OTLPEndpoint: root.cfg.Observability.OTLPEndpoint,
		OTLPInsecure: root.cfg.Observability.OTLPInsecure,
		LogLevel:     root.cfg.Logging.Level,
		LogJSON:      root.cfg.Logging.Format == "json",
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return observability.NewOpMetrics(providers.Meter)
}

// applyInstrumented applies the script one op at a time, recording each op's
// duration.
func applyInstrumented(
	ctx context.Context, scr *script.Script, seg *intensity.Segments, metrics *observability.OpMetrics,
) error {
	for i, op := range scr.Ops {
		opStart := time.Now()

		err := op.Apply(seg)
		if err != nil {
			metrics.RecordError(ctx, string(op.Kind))

			return fmt.Errorf("op %d: %w", i, err)
		}

		metrics.RecordOp(ctx, string(op.Kind), time.Since(opStart).Seconds())
	}

	return nil
}

// verifyAgainstGolden compares the final breakpoints with a golden JSON
// export, printing a colored character diff on mismatch.
func (rc *ReplayCommand) verifyAgainstGolden(seg *intensity.Segments) error {
	file, err := os.Open(rc.verify)
	if err != nil {
		return fmt.Errorf("open golden export: %w", err)
	}
	defer file.Close()

	var golden persist.Snapshot

	err = persist.NewJSONCodec().Decode(file, &golden)
	if err != nil {
		return fmt.Errorf("decode golden export: %w", err)
	}

	expected := intensity.NewFromBreakpoints(golden.Breakpoints).String()
	actual := seg.String()

	if expected == actual {
		color.New(color.FgGreen).Fprintf(os.Stdout, "verify passed (%s)\n", rc.verify)

		return nil
	}

	color.New(color.FgRed).Fprintf(os.Stdout, "verify failed (%s)\n", rc.verify)
	printColoredDiff(expected, actual)

	return ErrVerifyFailed
}

// printColoredDiff prints a character diff: expected-only text in red,
// actual-only text in green.
func printColoredDiff(expected, actual string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)

	for _, diff := range dmp.DiffCleanupSemantic(diffs) {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			color.New(color.FgRed).Fprint(os.Stdout, diff.Text)
		case diffmatchpatch.DiffInsert:
			color.New(color.FgGreen).Fprint(os.Stdout, diff.Text)
		case diffmatchpatch.DiffEqual:
			fmt.Fprint(os.Stdout, diff.Text)
		}
	}

	fmt.Fprintln(os.Stdout)
}

// printResult renders the final breakpoints to the command's stdout in the
// selected format.
func (rc *ReplayCommand) printResult(cmd *cobra.Command, scr *script.Script, seg *intensity.Segments) error {
	out := cmd.OutOrStdout()

	switch rc.format {
	case formatCompact:
		fmt.Fprintln(out, seg.String())
	case formatTable:
		fmt.Fprintln(out, renderBreakpointTable(seg))
	case formatJSON:
		return persist.NewJSONCodec().Encode(out, persist.Snapshot{Name: scr.Name, Breakpoints: seg.Breakpoints()})
	case formatYAML:
		return persist.NewYAMLCodec().Encode(out, persist.Snapshot{Name: scr.Name, Breakpoints: seg.Breakpoints()})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, rc.format)
	}

	return nil
}

// renderBreakpointTable formats the breakpoints as a go-pretty table.
func renderBreakpointTable(seg *intensity.Segments) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Position", "Intensity"})

	for _, bp := range seg.Breakpoints() {
		tbl.AppendRow(table.Row{bp.Position, bp.Intensity})
	}

	tbl.AppendFooter(table.Row{"Breakpoints", seg.Len()})

	return tbl.Render()
}

// writeBreakpointFile saves the final breakpoints under the path, picking
// the codec from the extension.
func writeBreakpointFile(path, name string, seg *intensity.Segments) error {
	var codec persist.Codec

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		codec = persist.NewJSONCodec()
	case ".yaml", ".yml":
		codec = persist.NewYAMLCodec()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	err = codec.Encode(file, persist.Snapshot{Name: name, Breakpoints: seg.Breakpoints()})
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	return nil
}

// writeStateFile hibernates the accumulator and serializes the snapshot.
func writeStateFile(path string, seg *intensity.Segments) error {
	err := seg.Hibernate()
	if err != nil {
		return fmt.Errorf("hibernate: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer file.Close()

	err = seg.Serialize(file)
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}

	return nil
}
