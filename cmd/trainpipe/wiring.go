package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain/services"
	"trainpipe/internal/domain-adapters/gateways"
	orchestrators "trainpipe/internal/domain-orchestrators"
	"trainpipe/internal/external-adapters/dvc"
	"trainpipe/internal/external-adapters/mlflow"
	adapteryaml "trainpipe/internal/external-adapters/yaml"
	"trainpipe/internal/runstore"
)

// pipelineOptions holds the shared wiring flags every pipeline-executing
// subcommand accepts.
type pipelineOptions struct {
	workdir      string
	venvDir      string
	python       string
	requirements string
	paramsFile   string
	archiveDir   string
	storePath    string
	msdoBinary   string
	auditScript  string
	noStore      bool
	verbose      bool
}

// defaultWorkdir honors the agent's workspace path when present.
func defaultWorkdir() string {
	if ws := os.Getenv("WORKSPACE"); ws != "" {
		return ws
	}
	return "."
}

func registerCommonFlags(fs *flag.FlagSet, o *pipelineOptions) {
	fs.StringVar(&o.workdir, "workdir", defaultWorkdir(), "Pipeline working directory (defaults to $WORKSPACE)")
	fs.StringVar(&o.venvDir, "venv", "", "Virtual environment directory (default <workdir>/.venv)")
	fs.StringVar(&o.python, "python", "python3", "Interpreter used to create the virtual environment")
	fs.StringVar(&o.requirements, "requirements", "requirements.txt", "Dependency manifest, relative to workdir")
	fs.StringVar(&o.paramsFile, "params-file", "", "Pipeline parameters file (default <workdir>/params.yaml)")
	fs.StringVar(&o.archiveDir, "archive-dir", "archive", "Archive output directory, relative to workdir")
	fs.StringVar(&o.storePath, "store", "", "Run ledger database path (default <workdir>/trainpipe.db)")
	fs.StringVar(&o.msdoBinary, "msdo-binary", "msdo", "Microsoft Security DevOps CLI binary")
	fs.StringVar(&o.auditScript, "audit-script", "audit_tools.py", "Audit helper script, relative to workdir")
	fs.BoolVar(&o.noStore, "no-store", false, "Disable the run ledger")
	fs.BoolVar(&o.verbose, "verbose", false, "Verbose logging")
}

// registerParamFlags exposes the run parameters: three configuration values
// resolved against the environment, the execution-mode switch, and one
// boolean toggle per optional stage.
func registerParamFlags(fs *flag.FlagSet, p *entities.RunParams) {
	fs.StringVar(&p.TrackingURI, "tracking-uri", "", "MLflow tracking URI (falls back to MLFLOW_TRACKING_URI)")
	fs.StringVar(&p.ExperimentName, "experiment-name", "", "MLflow experiment name (falls back to MLFLOW_EXPERIMENT_NAME)")
	fs.StringVar(&p.MaxIterations, "max-iter", "", "Training max iterations (falls back to MAX_ITER, then 200)")
	fs.BoolVar(&p.UseMLflowProject, "mlflow-project", false, "Train via mlflow run instead of dvc repro")
	fs.BoolVar(&p.RunSecurityScans, "security-scans", false, "Run pip-audit and bandit")
	fs.BoolVar(&p.RunMSDO, "msdo", false, "Run Microsoft Security DevOps")
	fs.BoolVar(&p.RunGarak, "garak", false, "Run the garak red-team scan")
	fs.StringVar(&p.GarakArgs, "garak-args", "", "Arguments passed to garak (empty skips the scan)")
	fs.BoolVar(&p.RunFairlearn, "fairlearn", false, "Run the Fairlearn bias audit")
	fs.BoolVar(&p.RunGiskard, "giskard", false, "Run the Giskard scan")
	fs.BoolVar(&p.RunCredo, "credo", false, "Capture Credo AI metadata")
	fs.BoolVar(&p.RunSBOM, "sbom", false, "Generate a CycloneDX SBOM")
}

// buildOrchestrator wires the gateways, trainers, and ledger into a
// pipeline orchestrator. The returned cleanup closes the ledger.
func buildOrchestrator(o *pipelineOptions) (*orchestrators.PipelineOrchestrator, func(), error) {
	log := interfaces.NewBuildLogger(o.verbose)

	venvDir := o.venvDir
	if venvDir == "" {
		venvDir = filepath.Join(o.workdir, ".venv")
	}
	paramsFile := o.paramsFile
	if paramsFile == "" {
		paramsFile = filepath.Join(o.workdir, "params.yaml")
	}

	runner := gateways.NewCommandRunner(log)
	venv := gateways.NewVenv(runner, venvDir, o.python, log)
	digester := gateways.NewFileDigester()

	deps := orchestrators.Deps{
		Env:             venv,
		DepScan:         gateways.NewDependencyAuditGateway(venv, runner, log),
		Static:          gateways.NewStaticAnalysisGateway(venv, runner, log),
		MSDO:            gateways.NewMSDOGateway(runner, o.msdoBinary, log),
		RedTeam:         gateways.NewRedTeamGateway(venv, runner, log),
		Audits:          gateways.NewAuditSuiteGateway(venv, runner, o.auditScript, log),
		SBOM:            gateways.NewSBOMGateway(venv, runner, log),
		ProjectTrainer:  mlflow.NewProjectRunner(venv, runner, log),
		PipelineTrainer: dvc.NewPipelineRunner(venv, runner, adapteryaml.NewParamsFile(paramsFile), log),
		Integrity:       services.NewIntegrityService(digester),
		Archiver:        gateways.NewArchiver(digester, log),
		Resolver:        services.NewConfigResolver(),
		Logger:          log,
	}

	cleanup := func() {}
	if !o.noStore {
		storePath := o.storePath
		if storePath == "" {
			storePath = filepath.Join(o.workdir, "trainpipe.db")
		}
		store, err := runstore.Open(storePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open run ledger: %w", err)
		}
		deps.Recorder = store
		cleanup = func() { _ = store.Close() }
	}

	orch := orchestrators.NewPipelineOrchestrator(deps, orchestrators.Options{
		WorkDir:      o.workdir,
		Requirements: o.requirements,
		ArchiveDir:   o.archiveDir,
	})
	return orch, cleanup, nil
}
