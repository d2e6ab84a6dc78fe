// Command analyze replays a recorded landmark stream through the analysis
// pipeline without a server or camera. Input is a JSONL file with one
// landmark frame (a JSON array of {x,y,z,visibility}) per line, as dumped by
// the pose-estimation collaborator. Output is per-rep feedback on stdout
// plus optional HTML and PNG reports.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/formsense/repform/internal/config"
	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/pose"
	"github.com/formsense/repform/internal/report"
	"github.com/formsense/repform/internal/security"
	"github.com/formsense/repform/internal/session"
)

var (
	framesFile   = flag.String("frames", "", "Path to JSONL landmark frames file (required)")
	exerciseKind = flag.String("exercise", "squat", "Exercise to analyze: squat, deadlift, pushup, bicep_curl")
	tuningFile   = flag.String("tuning", "", "Optional tuning JSON overriding thresholds")
	htmlOut      = flag.String("html", "", "Write an HTML session report to this path")
	pngOut       = flag.String("png", "", "Write a PNG of the driving metric series to this path")
	reportOut    = flag.Bool("report", false, "Write both reports with default names derived from the exercise")
)

func main() {
	flag.Parse()

	if *framesFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	tuning := config.EmptyTuningConfig()
	if *tuningFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	registry, err := tuning.BuildRegistry()
	if err != nil {
		log.Fatalf("failed to build exercise registry: %v", err)
	}
	analyzer, err := registry.Get(exercise.Kind(*exerciseKind))
	if err != nil {
		log.Fatalf("%v (have: %v)", err, registry.Kinds())
	}
	cfg := analyzer.Config()

	f, err := os.Open(*framesFile)
	if err != nil {
		log.Fatalf("failed to open frames file: %v", err)
	}
	defer f.Close()

	state := session.NewState()
	var records []session.Record
	var series []float64
	var frameCount, invalidCount int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame pose.Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Fatalf("bad frame at line %d: %v", frameCount+1, err)
		}
		frameCount++

		snap := analyzer.ComputeMetrics(frame)
		if !snap.Valid {
			invalidCount++
		}
		series = append(series, snap.Value(cfg.DrivingMetric))

		var ev *session.Event
		state, ev = session.Advance(analyzer, state, snap)
		if ev != nil && ev.Type == session.EventRepCompleted {
			records = append(records, *ev.Record)
			fmt.Printf("Rep %d: %s (deepest %s %.1f deg)\n",
				ev.Record.RepNumber, ev.Record.Feedback,
				cfg.DrivingMetric, ev.Record.Extremal.Value(cfg.DrivingMetric))
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed to read frames file: %v", err)
	}

	reps := make([]report.Rep, 0, len(records))
	for _, rec := range records {
		reps = append(reps, report.Rep{
			Number:   rec.RepNumber,
			Depth:    rec.Extremal.Value(cfg.DrivingMetric),
			Feedback: rec.Feedback,
		})
	}
	summary := report.Summarize(cfg, reps)

	fmt.Printf("\n%s: %d frames (%d without usable landmarks), %d reps\n",
		cfg.Name, frameCount, invalidCount, summary.RepCount)
	if summary.RepCount > 0 {
		fmt.Printf("depth mean=%.1f stddev=%.1f min=%.1f max=%.1f p50=%.1f p85=%.1f\n",
			summary.MeanDepth, summary.StdDev, summary.MinDepth, summary.MaxDepth,
			summary.P50Depth, summary.P85Depth)
	}
	if state.InExercise() {
		fmt.Println("stream ended mid-repetition; the partial rep was not counted")
	}

	if *reportOut {
		name := security.SanitizeFilename(string(cfg.Kind))
		if *htmlOut == "" {
			*htmlOut = fmt.Sprintf("report-%s.html", name)
		}
		if *pngOut == "" {
			*pngOut = fmt.Sprintf("series-%s.png", name)
		}
	}

	if *htmlOut != "" {
		if err := security.ValidateExportPath(*htmlOut); err != nil {
			log.Fatalf("refusing HTML output path: %v", err)
		}
		out, err := os.Create(*htmlOut)
		if err != nil {
			log.Fatalf("failed to create HTML report: %v", err)
		}
		if err := report.RenderHTML(out, cfg, reps); err != nil {
			log.Fatalf("failed to render HTML report: %v", err)
		}
		out.Close()
		log.Printf("wrote HTML report to %s", *htmlOut)
	}

	if *pngOut != "" {
		if err := security.ValidateExportPath(*pngOut); err != nil {
			log.Fatalf("refusing PNG output path: %v", err)
		}
		if err := report.SaveSeriesPNG(*pngOut, cfg, series); err != nil {
			log.Fatalf("failed to render PNG: %v", err)
		}
		log.Printf("wrote PNG plot to %s", *pngOut)
	}
}
