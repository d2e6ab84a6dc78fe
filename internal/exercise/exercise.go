// Package exercise implements the per-exercise analyzers: metric computation
// from pose frames, live classification of metric values, and post-repetition
// feedback generation. All exercises honor the same Analyzer contract; the
// repetition state machine in internal/session drives them without knowing
// which exercise is active.
package exercise

import (
	"strings"

	"github.com/formsense/repform/internal/pose"
)

// Kind identifies a supported exercise.
type Kind string

const (
	Squat     Kind = "squat"
	Deadlift  Kind = "deadlift"
	Pushup    Kind = "pushup"
	BicepCurl Kind = "bicep_curl"
)

// Severity grades a live metric classification for display.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityGood    Severity = "good"
	SeverityWarn    Severity = "warn"
	SeverityAlert   Severity = "alert"
)

// Comparator selects which direction counts as "worse" when tracking the
// extremal value of a metric across a repetition.
type Comparator int

const (
	// Min keeps the smallest value seen (depth-type angles: smaller = deeper).
	Min Comparator = iota
	// Max keeps the largest value seen (lean-type angles: larger = worse).
	Max
)

// Worse reports whether candidate is worse than current under the comparator.
func (c Comparator) Worse(current, candidate float64) bool {
	if c == Max {
		return candidate > current
	}
	return candidate < current
}

// MetricSpec describes one metric an analyzer produces. Order within
// Config.Metrics is the order feedback phrases are emitted in.
type MetricSpec struct {
	Name    string     `json:"name"`
	Label   string     `json:"label"`
	Compare Comparator `json:"-"`
}

// Config is the static description of an exercise: the joints it reads, the
// metrics it produces, and the thresholds that define repetition entry and
// exit on the driving metric. Configs are built once at registration and
// never mutated.
type Config struct {
	Kind           Kind         `json:"kind"`
	Name           string       `json:"name"`
	Joints         []pose.Joint `json:"-"`
	Metrics        []MetricSpec `json:"metrics"`
	DrivingMetric  string       `json:"driving_metric"`
	EntryThreshold float64      `json:"entry_threshold"`
	ExitThreshold  float64      `json:"exit_threshold"`
	MinVisibility  float64      `json:"min_visibility"`
	Instructions   string       `json:"instructions"`
}

// Spec returns the metric spec for name, or nil if the config does not
// declare it.
func (c Config) Spec(name string) *MetricSpec {
	for i := range c.Metrics {
		if c.Metrics[i].Name == name {
			return &c.Metrics[i]
		}
	}
	return nil
}

// Option adjusts an exercise config at construction time. Used by the
// tuning layer to override thresholds or the visibility floor without
// touching the built-in tables.
type Option func(*Config)

// WithMinVisibility overrides the landmark confidence floor.
func WithMinVisibility(v float64) Option {
	return func(c *Config) { c.MinVisibility = v }
}

// WithThresholds overrides the entry and exit thresholds on the driving
// metric.
func WithThresholds(entry, exit float64) Option {
	return func(c *Config) {
		c.EntryThreshold = entry
		c.ExitThreshold = exit
	}
}

// UnknownStatus is the categorical sentinel used when landmarks are invalid.
const UnknownStatus = "Unknown"

// MetricSnapshot holds the metric values computed from a single frame.
// Numeric values are angles in degrees; Status carries categorical values
// such as the depth label. A snapshot with Valid=false is the sentinel for
// missing or low-confidence landmarks: every angle reads zero and every
// status reads UnknownStatus. Consumers must treat a zero angle on an
// invalid snapshot as "no data", never as a real zero-degree joint.
type MetricSnapshot struct {
	Valid  bool               `json:"valid"`
	Values map[string]float64 `json:"values,omitempty"`
	Status map[string]string  `json:"status,omitempty"`
}

// Sentinel returns the invalid all-unknown snapshot.
func Sentinel() MetricSnapshot {
	return MetricSnapshot{Valid: false}
}

// Value returns the named metric, or zero if absent.
func (m MetricSnapshot) Value(name string) float64 {
	return m.Values[name]
}

// StatusOf returns the named categorical value, or UnknownStatus when the
// snapshot does not carry it (sentinel snapshots carry none).
func (m MetricSnapshot) StatusOf(name string) string {
	if s, ok := m.Status[name]; ok {
		return s
	}
	return UnknownStatus
}

// Clone returns a deep copy so stored extremal snapshots cannot alias the
// per-frame maps.
func (m MetricSnapshot) Clone() MetricSnapshot {
	out := MetricSnapshot{Valid: m.Valid}
	if m.Values != nil {
		out.Values = make(map[string]float64, len(m.Values))
		for k, v := range m.Values {
			out.Values[k] = v
		}
	}
	if m.Status != nil {
		out.Status = make(map[string]string, len(m.Status))
		for k, v := range m.Status {
			out.Status[k] = v
		}
	}
	return out
}

// Band is one row of a breakpoint table. Bands are evaluated top-down and
// the first match wins, so adjacent ranges are expressed by ordering rows
// from the highest threshold to the lowest. A band matches when the value is
// above At (or at-or-above when Incl is set). The last row of every table is
// a catch-all with At set to negative infinity.
type Band struct {
	At       float64
	Incl     bool
	Text     string
	Severity Severity
}

func (b Band) matches(v float64) bool {
	if b.Incl {
		return v >= b.At
	}
	return v > b.At
}

// classify runs a value down a band table. Tables always end in a catch-all,
// so a miss on every explicit row still yields a result.
func classify(table []Band, v float64) (string, Severity) {
	for _, b := range table {
		if b.matches(v) {
			return b.Text, b.Severity
		}
	}
	return "", SeverityNeutral
}

// FeedbackSeparator joins per-metric feedback phrases in a repetition record.
const FeedbackSeparator = " | "

// Analyzer is the shared capability set every exercise implements.
type Analyzer interface {
	// Kind identifies the exercise.
	Kind() Kind
	// Config returns the static exercise configuration.
	Config() Config
	// ComputeMetrics derives the per-frame metric snapshot from a landmark
	// frame. If the required joints fail the validity gate it returns the
	// sentinel snapshot; it never returns an error.
	ComputeMetrics(f pose.Frame) MetricSnapshot
	// GenerateFeedback maps a finished repetition's extremal metrics to one
	// short phrase per tracked metric, joined with FeedbackSeparator.
	// Deterministic: the same extremal snapshot always yields the same text.
	GenerateFeedback(extremal MetricSnapshot) string
	// ClassifyLiveMetric grades an instantaneous metric value for display.
	// Independent of repetition state; uses the same breakpoint structure as
	// feedback generation but is evaluated every frame.
	ClassifyLiveMetric(name string, value float64) (string, Severity)
}

// analyzer is the shared implementation behind every exercise. The four
// exercises differ only in their config, their metric computation, and their
// breakpoint tables.
type analyzer struct {
	cfg      Config
	produces []string
	compute  func(pose.Frame) MetricSnapshot
	feedback map[string][]Band
	live     map[string][]Band
}

func (a *analyzer) Kind() Kind     { return a.cfg.Kind }
func (a *analyzer) Config() Config { return a.cfg }

func (a *analyzer) ComputeMetrics(f pose.Frame) MetricSnapshot {
	if !f.Valid(a.cfg.Joints, a.cfg.MinVisibility) {
		return Sentinel()
	}
	return a.compute(f)
}

func (a *analyzer) GenerateFeedback(extremal MetricSnapshot) string {
	var phrases []string
	for _, spec := range a.cfg.Metrics {
		table, ok := a.feedback[spec.Name]
		if !ok {
			continue
		}
		text, _ := classify(table, extremal.Value(spec.Name))
		phrases = append(phrases, text)
	}
	return strings.Join(phrases, FeedbackSeparator)
}

func (a *analyzer) ClassifyLiveMetric(name string, value float64) (string, Severity) {
	if value == 0 {
		// Zero is the sentinel for "no data" on angle metrics.
		return "No data", SeverityNeutral
	}
	table, ok := a.live[name]
	if !ok {
		return "", SeverityNeutral
	}
	return classify(table, value)
}
