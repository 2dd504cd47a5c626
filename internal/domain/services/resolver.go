// Package services implements domain logic that is independent of any
// external tool: configuration resolution, scan exit-code triage, and
// integrity manifests.
package services

import (
	"os"
	"strings"

	"trainpipe/internal/domain/entities"
)

// ConfigResolver applies the three-level precedence chain for run
// configuration: explicit run parameter, then same-named environment
// variable, then hardcoded default.
type ConfigResolver struct {
	lookupEnv func(string) (string, bool)
}

// NewConfigResolver creates a resolver backed by the process environment.
func NewConfigResolver() *ConfigResolver {
	return &ConfigResolver{lookupEnv: os.LookupEnv}
}

// NewConfigResolverWithEnv creates a resolver with a custom environment
// lookup, used by tests to avoid touching the process environment.
func NewConfigResolverWithEnv(lookup func(string) (string, bool)) *ConfigResolver {
	return &ConfigResolver{lookupEnv: lookup}
}

// Resolve returns the effective value for one configuration entry.
// A parameter that is non-empty after trimming whitespace wins verbatim
// (untrimmed leading/trailing whitespace is not preserved; the trimmed value
// is used). An environment variable that is set but empty counts as unset.
func (r *ConfigResolver) Resolve(param, envVar, fallback string) string {
	if trimmed := strings.TrimSpace(param); trimmed != "" {
		return trimmed
	}
	if v, ok := r.lookupEnv(envVar); ok && v != "" {
		return v
	}
	return fallback
}

// ResolveRunConfig resolves the tracking URI, experiment name, and
// max-iterations for a run. The same chain applies uniformly to all three
// values. No type or range validation is performed: a non-numeric
// max-iterations is passed through to the training tool unchanged.
func (r *ConfigResolver) ResolveRunConfig(p entities.RunParams) entities.ResolvedConfig {
	return entities.ResolvedConfig{
		TrackingURI:    r.Resolve(p.TrackingURI, entities.EnvTrackingURI, ""),
		ExperimentName: r.Resolve(p.ExperimentName, entities.EnvExperimentName, entities.DefaultExperimentName),
		MaxIterations:  r.Resolve(p.MaxIterations, entities.EnvMaxIterations, entities.DefaultMaxIterations),
	}
}
