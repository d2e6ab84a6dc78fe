// Package report builds session summaries and charts from completed
// repetition records: distribution statistics over the extremal driving
// metric and an HTML chart of per-rep depth against the exercise's
// breakpoint thresholds.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/formsense/repform/internal/exercise"
)

// Rep is one completed repetition reduced to what the report needs.
type Rep struct {
	Number   int     `json:"rep_number"`
	Depth    float64 `json:"depth"`
	Feedback string  `json:"feedback"`
}

// Summary describes the distribution of extremal driving-metric values
// across a session's repetitions. Percentile cuts follow the same P50/P85
// convention used for speed reporting.
type Summary struct {
	Exercise   exercise.Kind  `json:"exercise"`
	Metric     string         `json:"metric"`
	RepCount   int            `json:"rep_count"`
	MeanDepth  float64        `json:"mean_depth"`
	StdDev     float64        `json:"std_dev"`
	MinDepth   float64        `json:"min_depth"`
	MaxDepth   float64        `json:"max_depth"`
	P50Depth   float64        `json:"p50_depth"`
	P85Depth   float64        `json:"p85_depth"`
	FeedbackBy map[string]int `json:"feedback_counts"`
}

// Summarize computes distribution stats for a session. Deterministic for a
// fixed rep set; an empty session yields a zero Summary with the exercise
// and metric filled in.
func Summarize(cfg exercise.Config, reps []Rep) Summary {
	s := Summary{
		Exercise:   cfg.Kind,
		Metric:     cfg.DrivingMetric,
		RepCount:   len(reps),
		FeedbackBy: make(map[string]int),
	}
	if len(reps) == 0 {
		return s
	}

	depths := make([]float64, 0, len(reps))
	for _, r := range reps {
		depths = append(depths, r.Depth)
		s.FeedbackBy[r.Feedback]++
	}
	sort.Float64s(depths)

	s.MinDepth = depths[0]
	s.MaxDepth = depths[len(depths)-1]
	s.MeanDepth = stat.Mean(depths, nil)
	if len(depths) > 1 {
		s.StdDev = stat.StdDev(depths, nil)
	}
	s.P50Depth = stat.Quantile(0.50, stat.Empirical, depths, nil)
	s.P85Depth = stat.Quantile(0.85, stat.Empirical, depths, nil)
	return s
}

// DepthChart builds a line chart of per-rep extremal depth with the entry
// and exit thresholds overlaid as flat reference series.
func DepthChart(cfg exercise.Config, reps []Rep) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fmt.Sprintf("%s session", cfg.Name), Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s depth per repetition", cfg.Name),
			Subtitle: fmt.Sprintf("driving metric: %s (degrees)", cfg.DrivingMetric),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Angle (deg)"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Rep"}),
	)

	xs := make([]string, 0, len(reps))
	depth := make([]opts.LineData, 0, len(reps))
	entry := make([]opts.LineData, 0, len(reps))
	exit := make([]opts.LineData, 0, len(reps))
	for _, r := range reps {
		xs = append(xs, fmt.Sprintf("%d", r.Number))
		depth = append(depth, opts.LineData{Value: r.Depth})
		entry = append(entry, opts.LineData{Value: cfg.EntryThreshold})
		exit = append(exit, opts.LineData{Value: cfg.ExitThreshold})
	}

	line.SetXAxis(xs).
		AddSeries("extremal depth", depth).
		AddSeries("entry threshold", entry).
		AddSeries("exit threshold", exit)
	return line
}

// RenderHTML writes the full session report page: chart plus summary table.
func RenderHTML(w io.Writer, cfg exercise.Config, reps []Rep) error {
	if err := DepthChart(cfg, reps).Render(w); err != nil {
		return fmt.Errorf("failed to render depth chart: %w", err)
	}
	s := Summarize(cfg, reps)
	_, err := fmt.Fprintf(w,
		"<pre>reps=%d mean=%.1f stddev=%.1f min=%.1f max=%.1f p50=%.1f p85=%.1f</pre>\n",
		s.RepCount, s.MeanDepth, s.StdDev, s.MinDepth, s.MaxDepth, s.P50Depth, s.P85Depth)
	return err
}
