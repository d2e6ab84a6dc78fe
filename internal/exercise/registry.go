package exercise

import (
	"fmt"
	"sort"
)

// Registry holds the closed set of configured analyzers. Registration is the
// fail-fast point for configuration mistakes: a config that names a metric
// its analyzer never produces is a programming error and is rejected
// loudly at startup rather than degrading silently at runtime.
type Registry struct {
	analyzers map[Kind]Analyzer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[Kind]Analyzer)}
}

// NewDefaultRegistry builds a registry with all four built-in exercises.
// Panics are deliberately avoided; the caller decides how fatal a bad
// registration is.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, a := range []Analyzer{NewSquat(), NewDeadlift(), NewPushup(), NewBicepCurl()} {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates the analyzer's config against what it produces and adds
// it to the registry.
func (r *Registry) Register(a Analyzer) error {
	cfg := a.Config()
	if cfg.Kind == "" {
		return fmt.Errorf("analyzer has empty kind")
	}
	if _, exists := r.analyzers[cfg.Kind]; exists {
		return fmt.Errorf("analyzer %q already registered", cfg.Kind)
	}
	if len(cfg.Joints) == 0 {
		return fmt.Errorf("analyzer %q declares no required joints", cfg.Kind)
	}
	if len(cfg.Metrics) == 0 {
		return fmt.Errorf("analyzer %q declares no metrics", cfg.Kind)
	}

	produced := producedSet(a)
	for _, spec := range cfg.Metrics {
		if !produced[spec.Name] {
			return fmt.Errorf("analyzer %q config declares metric %q that it never produces", cfg.Kind, spec.Name)
		}
	}
	if !produced[cfg.DrivingMetric] {
		return fmt.Errorf("analyzer %q driving metric %q is never produced", cfg.Kind, cfg.DrivingMetric)
	}
	if cfg.Spec(cfg.DrivingMetric) == nil {
		return fmt.Errorf("analyzer %q driving metric %q is not a declared metric", cfg.Kind, cfg.DrivingMetric)
	}
	if cfg.ExitThreshold < cfg.EntryThreshold {
		return fmt.Errorf("analyzer %q exit threshold %.0f below entry threshold %.0f", cfg.Kind, cfg.ExitThreshold, cfg.EntryThreshold)
	}

	r.analyzers[cfg.Kind] = a
	return nil
}

// producedSet returns the metric and status names an analyzer emits. Built-in
// analyzers declare this explicitly; anything else falls back to probing its
// declared metric specs.
func producedSet(a Analyzer) map[string]bool {
	set := make(map[string]bool)
	if impl, ok := a.(*analyzer); ok {
		for _, name := range impl.produces {
			set[name] = true
		}
		return set
	}
	for _, spec := range a.Config().Metrics {
		set[spec.Name] = true
	}
	return set
}

// Get returns the analyzer for a kind.
func (r *Registry) Get(kind Kind) (Analyzer, error) {
	a, ok := r.analyzers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown exercise %q", kind)
	}
	return a, nil
}

// Kinds returns the registered exercise kinds in stable order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.analyzers))
	for k := range r.analyzers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Configs returns the configs of all registered analyzers in Kinds order.
func (r *Registry) Configs() []Config {
	kinds := r.Kinds()
	configs := make([]Config, 0, len(kinds))
	for _, k := range kinds {
		configs = append(configs, r.analyzers[k].Config())
	}
	return configs
}
