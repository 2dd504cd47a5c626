package entities

import "time"

// StageStatus describes the outcome of a single pipeline stage.
type StageStatus string

const (
	// StageSucceeded means the stage ran and exited zero.
	StageSucceeded StageStatus = "succeeded"
	// StageWarned means the stage ran, reported findings, and was
	// deliberately not treated as fatal (pip-audit exit 1).
	StageWarned StageStatus = "warned"
	// StageFailed means the stage ran and aborted the pipeline.
	StageFailed StageStatus = "failed"
	// StageSkipped means the stage's gating condition was false and it
	// produced zero external-process invocations and zero artifacts.
	StageSkipped StageStatus = "skipped"
)

// StageResult records the outcome of one stage within a run.
type StageResult struct {
	Name     string
	Status   StageStatus
	ExitCode int
	Duration time.Duration
	Err      error
}

// Phase groups stages so that subcommands can execute a subset of the
// pipeline (scan only, audits only) through the same stage table.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseScan    Phase = "scan"
	PhaseTrain   Phase = "train"
	PhaseAudit   Phase = "audit"
	PhaseArchive Phase = "archive"
)
