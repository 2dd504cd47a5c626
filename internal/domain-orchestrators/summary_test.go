package orchestrators

import (
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"trainpipe/internal/domain/entities"
)

func TestSummary_SuccessfulRun(t *testing.T) {
	result := &RunResult{
		RunID: "0f1e2d3c-run",
		Mode:  entities.ModeProject,
		Config: entities.ResolvedConfig{
			TrackingURI:    "http://mlflow:5000",
			ExperimentName: "jenkins-mlflow-demo",
			MaxIterations:  "200",
		},
		Stages: []entities.StageResult{
			{Name: "venv", Status: entities.StageSucceeded, Duration: time.Second},
			{Name: "install-deps", Status: entities.StageSucceeded, Duration: time.Second},
			{Name: "dependency-scan", Status: entities.StageWarned, Duration: time.Second},
			{Name: "train", Status: entities.StageSucceeded, Duration: time.Minute},
			{Name: "archive", Status: entities.StageSucceeded, Duration: time.Second},
		},
		Manifest: &entities.ArchiveManifest{
			RunID:   "0f1e2d3c-run",
			Archive: "archive/trainpipe-0f1e2d3c-run.tar.gz",
			Entries: []entities.ArchiveEntry{
				{Path: "artifacts/model.pkl"},
				{Path: "reports/pip_audit.json"},
				{Path: "archive/manifest.json"},
			},
			Missing: []string{"reports/bandit_report.json"},
		},
	}

	g := goldie.New(t)
	g.Assert(t, "summary_success", []byte(result.Summary()))
}

func TestSummary_FailedRun(t *testing.T) {
	result := &RunResult{
		RunID: "a1b2c3d4-run",
		Mode:  entities.ModePipeline,
		Config: entities.ResolvedConfig{
			ExperimentName: "jenkins-mlflow-demo",
			MaxIterations:  "200",
		},
		Stages: []entities.StageResult{
			{Name: "venv", Status: entities.StageSucceeded, Duration: time.Second},
			{Name: "install-deps", Status: entities.StageSucceeded, Duration: time.Second},
			{Name: "dependency-scan", Status: entities.StageFailed, ExitCode: 2, Duration: time.Second},
		},
		Err: fmt.Errorf("stage dependency-scan: %w", &entities.ToolExitError{Tool: "pip-audit", Code: 2}),
	}

	g := goldie.New(t)
	g.Assert(t, "summary_failure", []byte(result.Summary()))
}
