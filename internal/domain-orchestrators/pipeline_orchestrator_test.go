package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/services"
	"trainpipe/internal/domain-adapters/gateways"
)

// callLog records every collaborator invocation in order.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, c := range l.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakeEnv struct {
	log        *callLog
	installErr map[string]error
}

func (e *fakeEnv) Ensure(context.Context) error {
	e.log.add("env.ensure")
	return nil
}

func (e *fakeEnv) InstallRequirements(_ context.Context, manifest string) error {
	e.log.add("env.requirements %s", manifest)
	return nil
}

func (e *fakeEnv) InstallPackages(_ context.Context, packages ...string) error {
	e.log.add("env.install %s", strings.Join(packages, " "))
	for _, p := range packages {
		if err := e.installErr[p]; err != nil {
			return err
		}
	}
	return nil
}

type fakeDepScan struct {
	log      *callLog
	decision services.ScanDecision
	err      error
}

func (s *fakeDepScan) Scan(_ context.Context, manifest, reportPath string) (services.ScanDecision, error) {
	s.log.add("depscan %s %s", manifest, reportPath)
	return s.decision, s.err
}

type fakeStatic struct {
	log *callLog
	err error
}

func (s *fakeStatic) Scan(_ context.Context, target, reportPath string) error {
	s.log.add("static %s %s", target, reportPath)
	return s.err
}

type fakeMSDO struct {
	log *callLog
	err error
}

func (s *fakeMSDO) Scan(_ context.Context, workdir, reportPath string) error {
	s.log.add("msdo %s", reportPath)
	return s.err
}

type fakeRedTeam struct {
	log *callLog
	err error
}

func (s *fakeRedTeam) Scan(_ context.Context, _ string, args string) error {
	s.log.add("garak %q", args)
	return s.err
}

type fakeAudits struct {
	log *callLog
	err error
}

func (a *fakeAudits) RunFairlearn(_ context.Context, _, reportPath string) error {
	a.log.add("audit.fairlearn %s", reportPath)
	return a.err
}

func (a *fakeAudits) RunGiskard(_ context.Context, _, reportPath string) error {
	a.log.add("audit.giskard %s", reportPath)
	return a.err
}

func (a *fakeAudits) RunCredo(_ context.Context, _, reportPath string) error {
	a.log.add("audit.credo %s", reportPath)
	return a.err
}

type fakeSBOM struct {
	log *callLog
	err error
}

func (s *fakeSBOM) Generate(_ context.Context, outPath string) error {
	s.log.add("sbom %s", outPath)
	return s.err
}

type fakeTrainer struct {
	log  *callLog
	name string
	err  error
	cfg  entities.ResolvedConfig
}

func (t *fakeTrainer) Train(_ context.Context, _ string, cfg entities.ResolvedConfig) error {
	t.cfg = cfg
	t.log.add("train.%s max_iter=%s", t.name, cfg.MaxIterations)
	return t.err
}

type fakeArchiver struct {
	log   *callLog
	err   error
	paths []string
}

func (a *fakeArchiver) Collect(_, runID string, paths []string, _ string) (*entities.ArchiveManifest, error) {
	a.paths = paths
	a.log.add("archive %s", runID)
	if a.err != nil {
		return nil, a.err
	}
	return &entities.ArchiveManifest{RunID: runID, CreatedAt: time.Now()}, nil
}

type fakeRecorder struct {
	run    entities.RunRecord
	stages []entities.StageRecord
	err    error
	saved  bool
}

func (r *fakeRecorder) SaveRun(_ context.Context, run entities.RunRecord, stages []entities.StageRecord) error {
	r.run = run
	r.stages = stages
	r.saved = true
	return r.err
}

// world bundles the fakes behind one orchestrator.
type world struct {
	log      *callLog
	env      *fakeEnv
	depScan  *fakeDepScan
	static   *fakeStatic
	msdo     *fakeMSDO
	redTeam  *fakeRedTeam
	audits   *fakeAudits
	sbom     *fakeSBOM
	project  *fakeTrainer
	pipeline *fakeTrainer
	archiver *fakeArchiver
	recorder *fakeRecorder
}

func newWorld() *world {
	log := &callLog{}
	return &world{
		log:      log,
		env:      &fakeEnv{log: log, installErr: map[string]error{}},
		depScan:  &fakeDepScan{log: log},
		static:   &fakeStatic{log: log},
		msdo:     &fakeMSDO{log: log},
		redTeam:  &fakeRedTeam{log: log},
		audits:   &fakeAudits{log: log},
		sbom:     &fakeSBOM{log: log},
		project:  &fakeTrainer{log: log, name: "project"},
		pipeline: &fakeTrainer{log: log, name: "pipeline"},
		archiver: &fakeArchiver{log: log},
		recorder: &fakeRecorder{},
	}
}

func (w *world) orchestrator(workdir string) *PipelineOrchestrator {
	return NewPipelineOrchestrator(Deps{
		Env:             w.env,
		DepScan:         w.depScan,
		Static:          w.static,
		MSDO:            w.msdo,
		RedTeam:         w.redTeam,
		Audits:          w.audits,
		SBOM:            w.sbom,
		ProjectTrainer:  w.project,
		PipelineTrainer: w.pipeline,
		Archiver:        w.archiver,
		Recorder:        w.recorder,
		Resolver:        services.NewConfigResolverWithEnv(func(string) (string, bool) { return "", false }),
	}, Options{WorkDir: workdir})
}

func stageByName(t *testing.T, result *RunResult, name string) entities.StageResult {
	t.Helper()
	for _, st := range result.Stages {
		if st.Name == name {
			return st
		}
	}
	t.Fatalf("stage %s not found in %+v", name, result.Stages)
	return entities.StageResult{}
}

func TestRun_AllStagesEnabled(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{
		UseMLflowProject: true,
		RunSecurityScans: true,
		RunMSDO:          true,
		RunGarak:         true,
		GarakArgs:        "--probes dan",
		RunFairlearn:     true,
		RunGiskard:       true,
		RunCredo:         true,
		RunSBOM:          true,
	})

	require.NoError(t, result.Err)
	assert.Equal(t, entities.ModeProject, result.Mode)
	assert.NotEmpty(t, result.RunID)
	require.NotNil(t, result.Manifest)

	assert.Equal(t, 1, w.log.count("train.project"), "project trainer runs in mlflow mode")
	assert.Equal(t, 0, w.log.count("train.pipeline"))
	assert.Equal(t, 1, w.log.count("depscan"))
	assert.Equal(t, 1, w.log.count("static"))
	assert.Equal(t, 1, w.log.count("msdo"))
	assert.Equal(t, 1, w.log.count("garak"))
	assert.Equal(t, 1, w.log.count("audit.fairlearn"))
	assert.Equal(t, 1, w.log.count("audit.giskard"))
	assert.Equal(t, 1, w.log.count("audit.credo"))
	assert.Equal(t, 1, w.log.count("sbom"))
	assert.Equal(t, 1, w.log.count("archive"))

	for _, st := range result.Stages {
		assert.Equal(t, entities.StageSucceeded, st.Status, "stage %s", st.Name)
	}
}

func TestRun_DefaultsDisableOptionalStages(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	require.NoError(t, result.Err)
	assert.Equal(t, entities.ModePipeline, result.Mode)

	assert.Equal(t, 1, w.log.count("train.pipeline"), "pipeline trainer runs by default")
	assert.Equal(t, 0, w.log.count("train.project"))

	// Gated-off stages must leave zero traces.
	assert.Equal(t, 0, w.log.count("depscan"))
	assert.Equal(t, 0, w.log.count("static"))
	assert.Equal(t, 0, w.log.count("msdo"))
	assert.Equal(t, 0, w.log.count("garak"))
	assert.Equal(t, 0, w.log.count("audit."))
	assert.Equal(t, 0, w.log.count("sbom"))
	assert.Equal(t, 0, w.log.count("env.install"))

	for _, name := range []string{"dependency-scan", "static-analysis", "msdo", "garak", "fairlearn", "giskard", "credo", "sbom"} {
		assert.Equal(t, entities.StageSkipped, stageByName(t, result, name).Status, "stage %s", name)
	}
}

func TestRun_DefaultResolution(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	require.NoError(t, result.Err)
	assert.Equal(t, "", result.Config.TrackingURI)
	assert.Equal(t, entities.DefaultExperimentName, result.Config.ExperimentName)
	assert.Equal(t, entities.DefaultMaxIterations, result.Config.MaxIterations)
	assert.Equal(t, entities.DefaultMaxIterations, w.pipeline.cfg.MaxIterations,
		"resolved config must reach the trainer")
}

func TestRun_AuditFindingsWarnAndContinue(t *testing.T) {
	w := newWorld()
	w.depScan.decision = services.ScanFindings
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{RunSecurityScans: true})

	require.NoError(t, result.Err, "findings must not abort the run")
	assert.Equal(t, entities.StageWarned, stageByName(t, result, "dependency-scan").Status)
	assert.Equal(t, 1, w.log.count("static"), "later stages still run")
	assert.Equal(t, 1, w.log.count("train.pipeline"))
}

func TestRun_AuditToolErrorAborts(t *testing.T) {
	w := newWorld()
	w.depScan.decision = services.ScanFatal
	w.depScan.err = fmt.Errorf("scan: %w", &entities.ToolExitError{Tool: "pip-audit", Code: 2})
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{RunSecurityScans: true})

	require.Error(t, result.Err)
	assert.Equal(t, entities.StageFailed, stageByName(t, result, "dependency-scan").Status)
	assert.Equal(t, 2, entities.ExitCode(result.Err), "scanner exit code becomes the build's")

	assert.Equal(t, 0, w.log.count("static"), "fail-fast: no later stages")
	assert.Equal(t, 0, w.log.count("train."))
	assert.Equal(t, 1, w.log.count("archive"), "archive still collects partial reports")
}

func TestRun_TrainingFailureAborts(t *testing.T) {
	w := newWorld()
	w.pipeline.err = errors.New("dvc repro failed")
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{RunSBOM: true})

	require.Error(t, result.Err)
	assert.Equal(t, entities.StageFailed, stageByName(t, result, "train").Status)
	assert.Equal(t, 0, w.log.count("sbom"), "audit stages do not run after training fails")
	assert.Equal(t, 1, entities.ExitCode(result.Err))
}

func TestRun_GarakEmptyArgsSkipsInstall(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{
		RunGarak:  true,
		GarakArgs: "   ",
	})

	require.NoError(t, result.Err)
	assert.Equal(t, entities.StageSucceeded, stageByName(t, result, "garak").Status)
	assert.Equal(t, 0, w.log.count("env.install garak"), "no package install for empty args")
	assert.Equal(t, 1, w.log.count("garak"), "the gateway still gets the no-op call")
}

func TestRun_GarakWithArgsInstallsFirst(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{
		RunGarak:  true,
		GarakArgs: "--probes dan",
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 1, w.log.count("env.install garak"))
	assert.Equal(t, 1, w.log.count(`garak "--probes dan"`))
}

func TestRun_ArchiveFailureDoesNotMaskPipelineFailure(t *testing.T) {
	w := newWorld()
	w.pipeline.err = errors.New("dvc repro failed")
	w.archiver.err = errors.New("disk full")
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "dvc repro failed", "training failure wins")
	assert.Equal(t, entities.StageFailed, stageByName(t, result, "archive").Status)
}

func TestRun_ArchiveFailureAloneFailsTheRun(t *testing.T) {
	w := newWorld()
	w.archiver.err = errors.New("disk full")
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "disk full")
}

func TestRun_ArchiveUsesDefaultSet(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	require.NoError(t, result.Err)
	assert.Equal(t, entities.DefaultArchiveSet(), w.archiver.paths)
}

func TestRun_RecordsRunInLedger(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	require.NoError(t, result.Err)
	require.True(t, w.recorder.saved)
	assert.Equal(t, result.RunID, w.recorder.run.ID)
	assert.Equal(t, entities.StageSucceeded, w.recorder.run.Status)
	assert.Equal(t, entities.ModePipeline, w.recorder.run.Mode)
	assert.Equal(t, len(result.Stages), len(w.recorder.stages))
	for i, st := range w.recorder.stages {
		assert.Equal(t, i, st.Seq)
		assert.Equal(t, result.RunID, st.RunID)
	}
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	w := newWorld()
	w.recorder.err = errors.New("database locked")
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{})

	assert.NoError(t, result.Err, "losing a ledger record must not fail the build")
}

func TestRun_WritesIntegrityManifestAfterTraining(t *testing.T) {
	workdir := t.TempDir()
	modelPath := filepath.Join(workdir, entities.ModelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(modelPath), 0o750))
	require.NoError(t, os.WriteFile(modelPath, []byte("model bytes"), 0o600))

	w := newWorld()
	deps := Deps{
		Env:             w.env,
		DepScan:         w.depScan,
		Static:          w.static,
		MSDO:            w.msdo,
		RedTeam:         w.redTeam,
		Audits:          w.audits,
		SBOM:            w.sbom,
		ProjectTrainer:  w.project,
		PipelineTrainer: w.pipeline,
		Integrity:       services.NewIntegrityService(gateways.NewFileDigester()),
		Archiver:        w.archiver,
		Resolver:        services.NewConfigResolverWithEnv(func(string) (string, bool) { return "", false }),
	}
	orch := NewPipelineOrchestrator(deps, Options{WorkDir: workdir})

	result := orch.Run(context.Background(), entities.RunParams{})
	require.NoError(t, result.Err)

	data, err := os.ReadFile(filepath.Join(workdir, entities.IntegrityPath))
	require.NoError(t, err, "integrity manifest must exist after training")
	assert.Contains(t, string(data), "sha256")
}

func TestRunPhases_ScanOnlySkipsTraining(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	result := orch.RunPhases(context.Background(),
		entities.RunParams{RunSecurityScans: true},
		entities.PhaseSetup, entities.PhaseScan)

	require.NoError(t, result.Err)
	assert.Equal(t, 1, w.log.count("depscan"))
	assert.Equal(t, 0, w.log.count("train."), "train phase not requested")
	assert.Equal(t, 0, w.log.count("archive"), "archive phase not requested")
}

func TestPlan_ReportsGatingWithoutInvokingAnything(t *testing.T) {
	w := newWorld()
	orch := w.orchestrator(t.TempDir())

	entries := orch.Plan(entities.RunParams{RunSecurityScans: true, RunSBOM: true})

	assert.Empty(t, w.log.calls, "planning must not invoke collaborators")

	byName := make(map[string]PlanEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.True(t, byName["venv"].Enabled)
	assert.True(t, byName["train"].Enabled)
	assert.True(t, byName["dependency-scan"].Enabled)
	assert.True(t, byName["sbom"].Enabled)
	assert.False(t, byName["msdo"].Enabled)
	assert.False(t, byName["garak"].Enabled)
	assert.False(t, byName["fairlearn"].Enabled)
	assert.True(t, byName["archive"].Enabled, "archive is unconditional")
}

func TestRun_InstallFailureFailsStage(t *testing.T) {
	w := newWorld()
	w.env.installErr["bandit"] = fmt.Errorf("install: %w", &entities.ToolExitError{Tool: "pip install", Code: 1})
	orch := w.orchestrator(t.TempDir())

	result := orch.Run(context.Background(), entities.RunParams{RunSecurityScans: true})

	require.Error(t, result.Err)
	assert.Equal(t, entities.StageFailed, stageByName(t, result, "static-analysis").Status)
	assert.Equal(t, 0, w.log.count("static"), "scanner not reached when its install fails")
}
