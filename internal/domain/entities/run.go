package entities

import "time"

// TrainingMode names the execution path taken by the training stage.
type TrainingMode string

const (
	// ModeProject delegates to the generic experiment runner (mlflow run).
	ModeProject TrainingMode = "project"
	// ModePipeline mutates params.yaml and triggers the reproducible
	// pipeline tool (dvc repro).
	ModePipeline TrainingMode = "pipeline"
)

// RunRecord is the persisted summary of one pipeline run.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         StageStatus
	TrackingURI    string
	ExperimentName string
	MaxIterations  string
	Mode           TrainingMode
}

// StageRecord is the persisted outcome of one stage within a run.
type StageRecord struct {
	RunID      string
	Seq        int
	Name       string
	Status     StageStatus
	ExitCode   int
	DurationMS int64
}
