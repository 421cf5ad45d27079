package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/manan/range-list/pkg/intensity"
	"github.com/manan/range-list/pkg/script"
)

const defaultRenderOut = "intensity.html"

// RenderCommand holds the configuration for the render command.
type RenderCommand struct {
	root *rootOptions

	out   string
	title string
	theme string
}

// NewRenderCommand creates and configures the render command.
func NewRenderCommand(root *rootOptions) *cobra.Command {
	rc := &RenderCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "render SCRIPT",
		Short: "Chart a script's final intensity profile as HTML",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}

	cobraCmd.Flags().StringVarP(&rc.out, "out", "o", defaultRenderOut, "output HTML file")
	cobraCmd.Flags().StringVar(&rc.title, "title", "", "chart title (default from config)")
	cobraCmd.Flags().StringVar(&rc.theme, "theme", "", "chart theme (default from config)")

	return cobraCmd
}

func (rc *RenderCommand) run(_ *cobra.Command, args []string) error {
	scr, err := script.Load(args[0])
	if err != nil {
		return err
	}

	seg := intensity.New()

	err = scr.Apply(seg)
	if err != nil {
		return err
	}

	title := rc.title
	if title == "" {
		title = rc.root.cfg.Render.Title
	}

	theme := rc.theme
	if theme == "" {
		theme = rc.root.cfg.Render.Theme
	}

	line := buildProfileChart(seg, title, theme)

	file, err := os.Create(rc.out)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	renderErr := line.Render(file)
	if renderErr != nil {
		return fmt.Errorf("render chart: %w", renderErr)
	}

	return nil
}

// buildProfileChart draws the breakpoint sequence as a step line: each
// intensity holds until the next breakpoint, so the step happens at the end
// of every segment.
func buildProfileChart(seg *intensity.Segments, title, theme string) *charts.Line {
	points := seg.Breakpoints()
	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))

	for i, bp := range points {
		labels[i] = strconv.FormatFloat(bp.Position, 'g', -1, 64)
		data[i] = opts.LineData{Value: bp.Intensity}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: theme, PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "position"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "intensity"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("intensity", data,
		charts.WithLineChartOpts(opts.LineChart{Step: "end"}),
	)

	return line
}
