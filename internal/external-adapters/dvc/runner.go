// Package dvc runs the training entry point in pipeline mode through the
// reproducible-pipeline tool (dvc repro).
package dvc

import (
	"context"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain-adapters/gateways"
	adapteryaml "trainpipe/internal/external-adapters/yaml"
)

// PipelineRunner mutates params.yaml in place, then triggers dvc repro,
// which re-reads the file and re-executes stages whose inputs changed.
type PipelineRunner struct {
	venv   *gateways.Venv
	runner *gateways.CommandRunner
	params *adapteryaml.ParamsFile
	log    interfaces.Logger
}

// NewPipelineRunner creates a pipeline-mode training runner.
func NewPipelineRunner(venv *gateways.Venv, runner *gateways.CommandRunner, params *adapteryaml.ParamsFile, log interfaces.Logger) *PipelineRunner {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &PipelineRunner{venv: venv, runner: runner, params: params, log: log}
}

// Train writes the resolved iteration count into params.yaml and runs the
// reproducible pipeline in workdir.
func (r *PipelineRunner) Train(ctx context.Context, workdir string, cfg entities.ResolvedConfig) error {
	if err := r.params.SetTrainParam("max_iter", cfg.MaxIterations); err != nil {
		return err
	}
	r.log.Info("training via reproducible pipeline",
		interfaces.F("params", r.params.Path()),
		interfaces.F("max_iter", cfg.MaxIterations))

	res := r.runner.Run(ctx, gateways.CommandSpec{
		Argv:        []string{r.venv.Tool("dvc"), "repro"},
		WorkingDir:  workdir,
		Env:         gateways.TrackingEnv(cfg),
		Description: "dvc repro",
	})
	if !res.Success {
		return gateways.CommandFailure("dvc", res)
	}
	return nil
}
