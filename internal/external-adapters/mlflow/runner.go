// Package mlflow runs the training entry point in project mode through the
// generic experiment runner (mlflow run).
package mlflow

import (
	"context"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain-adapters/gateways"
)

// ProjectRunner delegates training entirely to `mlflow run`, passing the
// iteration count and experiment name as project parameters.
type ProjectRunner struct {
	venv   *gateways.Venv
	runner *gateways.CommandRunner
	log    interfaces.Logger
}

// NewProjectRunner creates a project-mode training runner.
func NewProjectRunner(venv *gateways.Venv, runner *gateways.CommandRunner, log interfaces.Logger) *ProjectRunner {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &ProjectRunner{venv: venv, runner: runner, log: log}
}

// Train runs the MLflow project in workdir with the resolved configuration.
func (r *ProjectRunner) Train(ctx context.Context, workdir string, cfg entities.ResolvedConfig) error {
	r.log.Info("training via mlflow project",
		interfaces.F("experiment", cfg.ExperimentName),
		interfaces.F("max_iter", cfg.MaxIterations))

	res := r.runner.Run(ctx, gateways.CommandSpec{
		Argv: []string{
			r.venv.Tool("mlflow"), "run", ".",
			"--experiment-name", cfg.ExperimentName,
			"--env-manager", "local",
			"-P", "max_iter=" + cfg.MaxIterations,
		},
		WorkingDir:  workdir,
		Env:         gateways.TrackingEnv(cfg),
		Description: "mlflow run",
	})
	if !res.Success {
		return gateways.CommandFailure("mlflow", res)
	}
	return nil
}
