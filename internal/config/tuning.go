// Package config loads the optional tuning file that overrides analyzer
// thresholds and the landmark visibility floor. The same JSON schema is
// accepted at startup by both the server and the analysis CLI, and omitted
// fields keep their built-in defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/pose"
)

// ThresholdOverride replaces the entry/exit thresholds of one exercise's
// driving metric. Both fields must be set together; a lone entry or exit
// would silently change the hysteresis behavior.
type ThresholdOverride struct {
	Entry *float64 `json:"entry,omitempty"`
	Exit  *float64 `json:"exit,omitempty"`
}

// TuningConfig is the root tuning schema. Pointer fields distinguish
// "omitted" from zero.
type TuningConfig struct {
	MinVisibility *float64                     `json:"min_visibility,omitempty"`
	Thresholds    map[string]ThresholdOverride `json:"thresholds,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.MinVisibility != nil {
		if *c.MinVisibility < 0 || *c.MinVisibility > 1 {
			return fmt.Errorf("min_visibility must be between 0 and 1, got %f", *c.MinVisibility)
		}
	}

	for kind, ov := range c.Thresholds {
		if (ov.Entry == nil) != (ov.Exit == nil) {
			return fmt.Errorf("thresholds for %q must set both entry and exit", kind)
		}
		if ov.Entry == nil {
			continue
		}
		if *ov.Entry <= 0 || *ov.Entry > 180 || *ov.Exit <= 0 || *ov.Exit > 180 {
			return fmt.Errorf("thresholds for %q must be in (0, 180] degrees", kind)
		}
		if *ov.Exit < *ov.Entry {
			return fmt.Errorf("exit threshold for %q below entry threshold (%.0f < %.0f)", kind, *ov.Exit, *ov.Entry)
		}
	}

	return nil
}

// GetMinVisibility returns the visibility floor or the default.
func (c *TuningConfig) GetMinVisibility() float64 {
	if c.MinVisibility == nil {
		return pose.DefaultMinVisibility
	}
	return *c.MinVisibility
}

// options translates the tuning values for one exercise kind into analyzer
// construction options.
func (c *TuningConfig) options(kind exercise.Kind) []exercise.Option {
	opts := []exercise.Option{exercise.WithMinVisibility(c.GetMinVisibility())}
	if ov, ok := c.Thresholds[string(kind)]; ok && ov.Entry != nil {
		opts = append(opts, exercise.WithThresholds(*ov.Entry, *ov.Exit))
	}
	return opts
}

// BuildRegistry constructs the analyzer registry with this tuning applied.
// Registration re-validates every analyzer, so a tuning file that breaks an
// invariant fails here, at startup, not mid-session.
func (c *TuningConfig) BuildRegistry() (*exercise.Registry, error) {
	r := exercise.NewRegistry()
	builders := map[exercise.Kind]func(...exercise.Option) exercise.Analyzer{
		exercise.Squat:     exercise.NewSquat,
		exercise.Deadlift:  exercise.NewDeadlift,
		exercise.Pushup:    exercise.NewPushup,
		exercise.BicepCurl: exercise.NewBicepCurl,
	}
	for kind, build := range builders {
		if err := r.Register(build(c.options(kind)...)); err != nil {
			return nil, fmt.Errorf("failed to register %q: %w", kind, err)
		}
	}
	return r, nil
}
