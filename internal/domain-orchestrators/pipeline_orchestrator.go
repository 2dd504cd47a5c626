// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain/services"
)

// Environment prepares the isolated Python environment.
type Environment interface {
	Ensure(ctx context.Context) error
	InstallRequirements(ctx context.Context, manifest string) error
	InstallPackages(ctx context.Context, packages ...string) error
}

// DependencyScanner runs the vulnerability scan with exit-code triage.
type DependencyScanner interface {
	Scan(ctx context.Context, manifest, reportPath string) (services.ScanDecision, error)
}

// StaticAnalyzer runs static analysis over the project sources.
type StaticAnalyzer interface {
	Scan(ctx context.Context, target, reportPath string) error
}

// AgentScanner runs a scanner installed on the agent itself (MSDO).
type AgentScanner interface {
	Scan(ctx context.Context, workdir, reportPath string) error
}

// RedTeamer runs the red-team scan; an empty argument string is a no-op.
type RedTeamer interface {
	Scan(ctx context.Context, workdir, args string) error
}

// AuditSuite runs the optional post-training audits.
type AuditSuite interface {
	RunFairlearn(ctx context.Context, workdir, reportPath string) error
	RunGiskard(ctx context.Context, workdir, reportPath string) error
	RunCredo(ctx context.Context, workdir, reportPath string) error
}

// SBOMGenerator produces the software bill of materials.
type SBOMGenerator interface {
	Generate(ctx context.Context, outPath string) error
}

// TrainingRunner invokes one of the two training execution paths.
type TrainingRunner interface {
	Train(ctx context.Context, workdir string, cfg entities.ResolvedConfig) error
}

// ArtifactCollector gathers the fixed output set into a build archive.
type ArtifactCollector interface {
	Collect(workdir, runID string, paths []string, outDir string) (*entities.ArchiveManifest, error)
}

// RunRecorder persists run outcomes to the ledger.
type RunRecorder interface {
	SaveRun(ctx context.Context, run entities.RunRecord, stages []entities.StageRecord) error
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Env             Environment
	DepScan         DependencyScanner
	Static          StaticAnalyzer
	MSDO            AgentScanner
	RedTeam         RedTeamer
	Audits          AuditSuite
	SBOM            SBOMGenerator
	ProjectTrainer  TrainingRunner
	PipelineTrainer TrainingRunner
	Integrity       *services.IntegrityService
	Archiver        ArtifactCollector
	Recorder        RunRecorder // optional; nil disables the ledger
	Resolver        *services.ConfigResolver
	Logger          interfaces.Logger
}

// Options holds run-level paths.
type Options struct {
	WorkDir      string
	Requirements string
	ArchiveDir   string
	ArchiveSet   []string
	SourceTarget string // bandit target, default "."
}

// PipelineOrchestrator executes the stage table strictly sequentially on a
// single agent: stages run one at a time in declaration order, each blocking
// until its external process exits. Non-optional stages are fail-fast;
// gated-off stages are skipped with zero side effects.
type PipelineOrchestrator struct {
	deps Deps
	opts Options
	log  interfaces.Logger
}

// NewPipelineOrchestrator creates a pipeline orchestrator.
func NewPipelineOrchestrator(deps Deps, opts Options) *PipelineOrchestrator {
	if deps.Logger == nil {
		deps.Logger = &interfaces.NoOpLogger{}
	}
	if opts.Requirements == "" {
		opts.Requirements = "requirements.txt"
	}
	if opts.ArchiveDir == "" {
		opts.ArchiveDir = "archive"
	}
	if opts.SourceTarget == "" {
		opts.SourceTarget = "."
	}
	return &PipelineOrchestrator{deps: deps, opts: opts, log: deps.Logger}
}

// RunResult contains the outcome of a pipeline run.
type RunResult struct {
	RunID      string
	Config     entities.ResolvedConfig
	Mode       entities.TrainingMode
	Stages     []entities.StageResult
	Manifest   *entities.ArchiveManifest
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// stage is one row of the declarative stage table: a gating condition plus
// an action closure.
type stage struct {
	name    string
	phase   entities.Phase
	enabled func(p entities.RunParams) bool
	run     func(ctx context.Context, p entities.RunParams, cfg entities.ResolvedConfig) (entities.StageStatus, error)
}

func always(entities.RunParams) bool { return true }

func (o *PipelineOrchestrator) stages() []stage {
	wd := o.opts.WorkDir
	return []stage{
		{
			name:    "venv",
			phase:   entities.PhaseSetup,
			enabled: always,
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				return entities.StageSucceeded, o.deps.Env.Ensure(ctx)
			},
		},
		{
			name:    "install-deps",
			phase:   entities.PhaseSetup,
			enabled: always,
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				return entities.StageSucceeded, o.deps.Env.InstallRequirements(ctx, filepath.Join(wd, o.opts.Requirements))
			},
		},
		{
			name:    "dependency-scan",
			phase:   entities.PhaseScan,
			enabled: func(p entities.RunParams) bool { return p.RunSecurityScans },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				if err := o.deps.Env.InstallPackages(ctx, "pip-audit"); err != nil {
					return entities.StageFailed, err
				}
				decision, err := o.deps.DepScan.Scan(ctx, filepath.Join(wd, o.opts.Requirements), filepath.Join(wd, entities.DependencyReportPath))
				if err != nil {
					return entities.StageFailed, err
				}
				if decision == services.ScanFindings {
					return entities.StageWarned, nil
				}
				return entities.StageSucceeded, nil
			},
		},
		{
			name:    "static-analysis",
			phase:   entities.PhaseScan,
			enabled: func(p entities.RunParams) bool { return p.RunSecurityScans },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				if err := o.deps.Env.InstallPackages(ctx, "bandit"); err != nil {
					return entities.StageFailed, err
				}
				return entities.StageSucceeded, o.deps.Static.Scan(ctx, o.opts.SourceTarget, filepath.Join(wd, entities.StaticReportPath))
			},
		},
		{
			name:    "msdo",
			phase:   entities.PhaseScan,
			enabled: func(p entities.RunParams) bool { return p.RunMSDO },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				return entities.StageSucceeded, o.deps.MSDO.Scan(ctx, wd, filepath.Join(wd, entities.MSDOReportPath))
			},
		},
		{
			name:    "train",
			phase:   entities.PhaseTrain,
			enabled: always,
			run: func(ctx context.Context, p entities.RunParams, cfg entities.ResolvedConfig) (entities.StageStatus, error) {
				trainer := o.deps.PipelineTrainer
				if p.UseMLflowProject {
					trainer = o.deps.ProjectTrainer
				}
				if err := trainer.Train(ctx, wd, cfg); err != nil {
					return entities.StageFailed, err
				}
				return entities.StageSucceeded, o.writeIntegrityManifest()
			},
		},
		{
			name:    "garak",
			phase:   entities.PhaseAudit,
			enabled: func(p entities.RunParams) bool { return p.RunGarak },
			run: func(ctx context.Context, p entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				// Empty arguments: succeed immediately, without even the
				// package install touching the environment.
				if strings.TrimSpace(p.GarakArgs) == "" {
					return entities.StageSucceeded, o.deps.RedTeam.Scan(ctx, wd, p.GarakArgs)
				}
				if err := o.deps.Env.InstallPackages(ctx, "garak"); err != nil {
					return entities.StageFailed, err
				}
				return entities.StageSucceeded, o.deps.RedTeam.Scan(ctx, wd, p.GarakArgs)
			},
		},
		{
			name:    "fairlearn",
			phase:   entities.PhaseAudit,
			enabled: func(p entities.RunParams) bool { return p.RunFairlearn },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				if err := o.deps.Env.InstallPackages(ctx, "fairlearn"); err != nil {
					return entities.StageFailed, err
				}
				return entities.StageSucceeded, o.deps.Audits.RunFairlearn(ctx, wd, entities.FairlearnReportPath)
			},
		},
		{
			name:    "giskard",
			phase:   entities.PhaseAudit,
			enabled: func(p entities.RunParams) bool { return p.RunGiskard },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				if err := o.deps.Env.InstallPackages(ctx, "giskard"); err != nil {
					return entities.StageFailed, err
				}
				return entities.StageSucceeded, o.deps.Audits.RunGiskard(ctx, wd, entities.GiskardReportPath)
			},
		},
		{
			name:    "credo",
			phase:   entities.PhaseAudit,
			enabled: func(p entities.RunParams) bool { return p.RunCredo },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				if err := o.deps.Env.InstallPackages(ctx, "credoai"); err != nil {
					return entities.StageFailed, err
				}
				return entities.StageSucceeded, o.deps.Audits.RunCredo(ctx, wd, entities.CredoReportPath)
			},
		},
		{
			name:    "sbom",
			phase:   entities.PhaseAudit,
			enabled: func(p entities.RunParams) bool { return p.RunSBOM },
			run: func(ctx context.Context, _ entities.RunParams, _ entities.ResolvedConfig) (entities.StageStatus, error) {
				return entities.StageSucceeded, o.deps.SBOM.Generate(ctx, filepath.Join(wd, entities.SBOMReportPath))
			},
		},
	}
}

// Run resolves the configuration, executes every stage, archives the
// artifact set, and records the run in the ledger.
func (o *PipelineOrchestrator) Run(ctx context.Context, params entities.RunParams) *RunResult {
	return o.RunPhases(ctx, params,
		entities.PhaseSetup, entities.PhaseScan, entities.PhaseTrain, entities.PhaseAudit, entities.PhaseArchive)
}

// RunPhases executes only the stages belonging to the given phases, in
// declaration order. The archive phase also persists the run record.
func (o *PipelineOrchestrator) RunPhases(ctx context.Context, params entities.RunParams, phases ...entities.Phase) *RunResult {
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Mode:      entities.ModePipeline,
	}
	if params.UseMLflowProject {
		result.Mode = entities.ModeProject
	}

	wanted := make(map[entities.Phase]bool, len(phases))
	for _, ph := range phases {
		wanted[ph] = true
	}

	result.Config = o.deps.Resolver.ResolveRunConfig(params)
	o.log.Info("configuration resolved",
		interfaces.F("tracking_uri", result.Config.TrackingURI),
		interfaces.F("experiment", result.Config.ExperimentName),
		interfaces.F("max_iter", result.Config.MaxIterations),
		interfaces.F("mode", result.Mode))

	for _, st := range o.stages() {
		if !wanted[st.phase] {
			continue
		}
		if !st.enabled(params) {
			o.log.Info("stage skipped", interfaces.F("stage", st.name))
			result.Stages = append(result.Stages, entities.StageResult{
				Name:   st.name,
				Status: entities.StageSkipped,
			})
			continue
		}

		o.log.Info("stage starting", interfaces.F("stage", st.name))
		start := time.Now()
		status, err := st.run(ctx, params, result.Config)
		elapsed := time.Since(start)

		if err != nil {
			result.Stages = append(result.Stages, entities.StageResult{
				Name:     st.name,
				Status:   entities.StageFailed,
				ExitCode: entities.ExitCode(err),
				Duration: elapsed,
				Err:      err,
			})
			result.Err = fmt.Errorf("stage %s: %w", st.name, err)
			o.log.Error("stage failed",
				interfaces.F("stage", st.name),
				interfaces.F("error", err))
			break
		}

		result.Stages = append(result.Stages, entities.StageResult{
			Name:     st.name,
			Status:   status,
			Duration: elapsed,
		})
		o.log.Info("stage finished",
			interfaces.F("stage", st.name),
			interfaces.F("status", status))
	}

	if wanted[entities.PhaseArchive] {
		o.archive(result)
	}

	result.FinishedAt = time.Now()
	o.record(ctx, result)
	return result
}

// archive runs even after a failure so partial reports still get collected,
// but an archiving error never masks the pipeline's own failure.
func (o *PipelineOrchestrator) archive(result *RunResult) {
	set := o.opts.ArchiveSet
	if len(set) == 0 {
		set = entities.DefaultArchiveSet()
	}

	start := time.Now()
	manifest, err := o.deps.Archiver.Collect(o.opts.WorkDir, result.RunID, set, filepath.Join(o.opts.WorkDir, o.opts.ArchiveDir))
	stageResult := entities.StageResult{
		Name:     "archive",
		Status:   entities.StageSucceeded,
		Duration: time.Since(start),
	}
	if err != nil {
		stageResult.Status = entities.StageFailed
		stageResult.Err = err
		stageResult.ExitCode = entities.ExitCode(err)
		if result.Err == nil {
			result.Err = fmt.Errorf("stage archive: %w", err)
		} else {
			o.log.Error("archiving failed after earlier stage failure", interfaces.F("error", err))
		}
	} else {
		result.Manifest = manifest
	}
	result.Stages = append(result.Stages, stageResult)
}

func (o *PipelineOrchestrator) record(ctx context.Context, result *RunResult) {
	if o.deps.Recorder == nil {
		return
	}

	status := entities.StageSucceeded
	if result.Err != nil {
		status = entities.StageFailed
	}

	run := entities.RunRecord{
		ID:             result.RunID,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
		Status:         status,
		TrackingURI:    result.Config.TrackingURI,
		ExperimentName: result.Config.ExperimentName,
		MaxIterations:  result.Config.MaxIterations,
		Mode:           result.Mode,
	}

	stages := make([]entities.StageRecord, 0, len(result.Stages))
	for i, st := range result.Stages {
		stages = append(stages, entities.StageRecord{
			RunID:      result.RunID,
			Seq:        i,
			Name:       st.Name,
			Status:     st.Status,
			ExitCode:   st.ExitCode,
			DurationMS: st.Duration.Milliseconds(),
		})
	}

	if err := o.deps.Recorder.SaveRun(ctx, run, stages); err != nil {
		// The ledger is an observability aid; losing a record is not a
		// build failure.
		o.log.Warn("failed to record run", interfaces.F("error", err))
	}
}

func (o *PipelineOrchestrator) writeIntegrityManifest() error {
	if o.deps.Integrity == nil {
		return nil
	}
	manifest, err := o.deps.Integrity.BuildManifest([]string{
		filepath.Join(o.opts.WorkDir, entities.DatasetPath),
		filepath.Join(o.opts.WorkDir, entities.ModelPath),
	})
	if err != nil {
		return err
	}
	return o.deps.Integrity.WriteManifest(manifest, filepath.Join(o.opts.WorkDir, entities.IntegrityPath))
}

// PlanEntry describes one stage's gating decision for the plan preview.
type PlanEntry struct {
	Name    string
	Phase   entities.Phase
	Enabled bool
}

// Plan reports, without invoking anything, which stages a run with the
// given parameters would execute.
func (o *PipelineOrchestrator) Plan(params entities.RunParams) []PlanEntry {
	stages := o.stages()
	entries := make([]PlanEntry, 0, len(stages)+1)
	for _, st := range stages {
		entries = append(entries, PlanEntry{Name: st.name, Phase: st.phase, Enabled: st.enabled(params)})
	}
	entries = append(entries, PlanEntry{Name: "archive", Phase: entities.PhaseArchive, Enabled: true})
	return entries
}
