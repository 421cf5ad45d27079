package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/manan/range-list/pkg/config"
	"github.com/manan/range-list/pkg/intensity"
	"github.com/manan/range-list/pkg/observability"
	"github.com/manan/range-list/pkg/persist"
	"github.com/manan/range-list/pkg/script"
)

const metricsReadHeaderTimeout = 5 * time.Second

// BenchReport is the persisted result of a bench run.
type BenchReport struct {
	Ops             int     `json:"ops"`
	AddOps          int     `json:"add_ops"`
	SetOps          int     `json:"set_ops"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	OpsPerSecond    float64 `json:"ops_per_second"`
	Breakpoints     int     `json:"breakpoints"`
	HibernateCycles int     `json:"hibernate_cycles"`
	SnapshotBytes   int     `json:"snapshot_bytes"`
}

// BenchCommand holds the configuration for the bench command.
type BenchCommand struct {
	root *rootOptions

	ops            int
	seed           int64
	maxPos         float64
	span           float64
	maxAmount      float64
	setRatio       float64
	hibernateEvery int
	metricsListen  string
	report         string
}

// NewBenchCommand creates and configures the bench command.
func NewBenchCommand(root *rootOptions) *cobra.Command {
	bc := &BenchCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a seeded synthetic op stream",
		Long: `Run a reproducible synthetic stream of add/set operations against one
accumulator and report throughput, final structure size, and the size of its
compressed snapshot.`,
		RunE: bc.run,
	}

	cobraCmd.Flags().IntVar(&bc.ops, "ops", config.DefaultBenchOps, "number of operations")
	cobraCmd.Flags().Int64Var(&bc.seed, "seed", config.DefaultBenchSeed, "random seed")
	cobraCmd.Flags().Float64Var(&bc.maxPos, "max-pos", config.DefaultBenchMaxPosition, "position axis upper bound")
	cobraCmd.Flags().Float64Var(&bc.span, "span", config.DefaultBenchMaxSpan, "maximum range span")
	cobraCmd.Flags().Float64Var(&bc.maxAmount, "max-amount", config.DefaultBenchMaxAmount, "maximum absolute amount")
	cobraCmd.Flags().Float64Var(&bc.setRatio, "set-ratio", config.DefaultBenchSetRatio, "fraction of set ops")
	cobraCmd.Flags().IntVar(&bc.hibernateEvery, "hibernate-every", config.DefaultBenchHibernateEvery,
		"hibernate+boot cycle every N ops (0 = never)")
	cobraCmd.Flags().StringVar(&bc.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address")
	cobraCmd.Flags().StringVar(&bc.report, "report", "", "write a JSON report to this file")

	return cobraCmd
}

// applyConfigDefaults replaces unchanged flag values with the configured
// bench settings, so the config file wins unless a flag is given.
func (bc *BenchCommand) applyConfigDefaults(cmd *cobra.Command) {
	benchCfg := bc.root.cfg.Bench

	if !cmd.Flags().Changed("ops") {
		bc.ops = benchCfg.Ops
	}

	if !cmd.Flags().Changed("seed") {
		bc.seed = benchCfg.Seed
	}

	if !cmd.Flags().Changed("max-pos") {
		bc.maxPos = benchCfg.MaxPosition
	}

	if !cmd.Flags().Changed("span") {
		bc.span = benchCfg.MaxSpan
	}

	if !cmd.Flags().Changed("max-amount") {
		bc.maxAmount = benchCfg.MaxAmount
	}

	if !cmd.Flags().Changed("set-ratio") {
		bc.setRatio = benchCfg.SetRatio
	}

	if !cmd.Flags().Changed("hibernate-every") {
		bc.hibernateEvery = benchCfg.HibernateEvery
	}

	if !cmd.Flags().Changed("metrics-listen") && bc.root.cfg.Observability.MetricsListen != "" {
		bc.metricsListen = bc.root.cfg.Observability.MetricsListen
	}
}

func (bc *BenchCommand) run(cmd *cobra.Command, _ []string) error {
	bc.applyConfigDefaults(cmd)

	ctx := cmd.Context()

	exporter := observability.ExporterNone
	if bc.metricsListen != "" {
		exporter = observability.ExporterPrometheus
	}

	providers, err := observability.Init(ctx, observability.Config{
		ServiceName: "rangelist",
		Exporter:    exporter,
		LogLevel:    bc.root.cfg.Logging.Level,
		LogJSON:     bc.root.cfg.Logging.Format == "json",
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	metrics, err := observability.NewOpMetrics(providers.Meter)
	if err != nil {
		return err
	}

	if bc.metricsListen != "" {
		stop, serveErr := bc.serveMetrics(providers)
		if serveErr != nil {
			return serveErr
		}

		defer stop()
	}

	report, err := bc.runStream(ctx, metrics)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderBenchTable(report))

	if bc.report != "" {
		base := strings.TrimSuffix(filepath.Base(bc.report), filepath.Ext(bc.report))

		saveErr := persist.SaveState(filepath.Dir(bc.report), base, persist.NewJSONCodec(), report)
		if saveErr != nil {
			return saveErr
		}
	}

	return nil
}

// serveMetrics starts the Prometheus scrape endpoint for the duration of
// the run.
func (bc *BenchCommand) serveMetrics(providers *observability.Providers) (func(), error) {
	handler, err := providers.PrometheusHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              bc.metricsListen,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", serveErr)
		}
	}()

	slog.Info("serving metrics", "addr", bc.metricsListen)

	return func() { _ = server.Close() }, nil
}

// runStream feeds the seeded synthetic op stream into one accumulator.
func (bc *BenchCommand) runStream(ctx context.Context, metrics *observability.OpMetrics) (*BenchReport, error) {
	rng := rand.New(rand.NewSource(bc.seed)) //nolint:gosec // reproducible stream, not crypto

	seg := intensity.New()
	report := &BenchReport{Ops: bc.ops}
	start := time.Now()

	for i := range bc.ops {
		from := rng.Float64() * bc.maxPos
		to := from + rng.Float64()*bc.span
		amount := (rng.Float64()*2 - 1) * bc.maxAmount

		opStart := time.Now()

		if rng.Float64() < bc.setRatio {
			seg.Set(from, to, amount)
			report.SetOps++

			metrics.RecordOp(ctx, string(script.OpSet), time.Since(opStart).Seconds())
		} else {
			seg.Add(from, to, amount)
			report.AddOps++

			metrics.RecordOp(ctx, string(script.OpAdd), time.Since(opStart).Seconds())
		}

		if bc.hibernateEvery > 0 && (i+1)%bc.hibernateEvery == 0 {
			cycleErr := hibernateCycle(seg)
			if cycleErr != nil {
				metrics.RecordError(ctx, "hibernate")

				return nil, cycleErr
			}

			report.HibernateCycles++
		}
	}

	elapsed := time.Since(start)
	report.ElapsedSeconds = elapsed.Seconds()
	report.OpsPerSecond = float64(bc.ops) / elapsed.Seconds()
	report.Breakpoints = seg.Len()

	snapshotBytes, err := snapshotSize(seg)
	if err != nil {
		return nil, err
	}

	report.SnapshotBytes = snapshotBytes

	return report, nil
}

// hibernateCycle compresses and immediately restores the accumulator,
// exercising the memory-release path mid-stream.
func hibernateCycle(seg *intensity.Segments) error {
	err := seg.Hibernate()
	if err != nil {
		return fmt.Errorf("hibernate: %w", err)
	}

	err = seg.Boot()
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	return nil
}

// snapshotSize measures the serialized size of the accumulator's hibernated
// snapshot.
func snapshotSize(seg *intensity.Segments) (int, error) {
	err := seg.Hibernate()
	if err != nil {
		return 0, fmt.Errorf("hibernate: %w", err)
	}

	var buf bytes.Buffer

	err = seg.Serialize(&buf)
	if err != nil {
		return 0, fmt.Errorf("serialize: %w", err)
	}

	return buf.Len(), nil
}

// renderBenchTable formats the report as a go-pretty summary table.
func renderBenchTable(report *BenchReport) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Ops", humanize.Comma(int64(report.Ops))})
	tbl.AppendRow(table.Row{"Add ops", humanize.Comma(int64(report.AddOps))})
	tbl.AppendRow(table.Row{"Set ops", humanize.Comma(int64(report.SetOps))})
	tbl.AppendRow(table.Row{"Elapsed", fmt.Sprintf("%.3fs", report.ElapsedSeconds)})
	tbl.AppendRow(table.Row{"Throughput", humanize.Comma(int64(report.OpsPerSecond)) + " ops/s"})
	tbl.AppendRow(table.Row{"Breakpoints", humanize.Comma(int64(report.Breakpoints))})
	tbl.AppendRow(table.Row{"Hibernate cycles", humanize.Comma(int64(report.HibernateCycles))})
	tbl.AppendRow(table.Row{"Snapshot size", humanize.Bytes(uint64(report.SnapshotBytes))}) //nolint:gosec // non-negative

	return tbl.Render()
}
