package gateways

import (
	"os"

	"trainpipe/internal/domain/entities"
)

// TrackingEnv builds the tracking-service environment exported to training
// child processes. The credential token passes through from the agent
// environment; the URI is set only when one was resolved.
func TrackingEnv(cfg entities.ResolvedConfig) map[string]string {
	env := map[string]string{
		entities.EnvExperimentName: cfg.ExperimentName,
	}
	if cfg.TrackingURI != "" {
		env[entities.EnvTrackingURI] = cfg.TrackingURI
	}
	if token := os.Getenv(entities.EnvTrackingToken); token != "" {
		env[entities.EnvTrackingToken] = token
	}
	return env
}
