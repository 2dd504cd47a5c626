package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/interfaces"
)

// StaticAnalysisGateway runs bandit over the project sources.
type StaticAnalysisGateway struct {
	venv   *Venv
	runner *CommandRunner
	log    interfaces.Logger
}

// NewStaticAnalysisGateway creates a bandit gateway.
func NewStaticAnalysisGateway(venv *Venv, runner *CommandRunner, log interfaces.Logger) *StaticAnalysisGateway {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &StaticAnalysisGateway{venv: venv, runner: runner, log: log}
}

// Scan analyzes target recursively and writes the JSON report to reportPath.
// Unlike the dependency scan there is no tolerated exit code here: any
// non-zero exit aborts the run.
func (g *StaticAnalysisGateway) Scan(ctx context.Context, target, reportPath string) error {
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	res := g.runner.Run(ctx, CommandSpec{
		Argv: []string{
			g.venv.Tool("bandit"),
			"-r", target,
			"-x", g.venv.Dir(),
			"-f", "json",
			"-o", reportPath,
		},
		Description: "bandit static analysis",
	})
	if !res.Success {
		return CommandFailure("bandit", res)
	}

	g.log.Info("static analysis report written", interfaces.F("report", reportPath))
	return nil
}
