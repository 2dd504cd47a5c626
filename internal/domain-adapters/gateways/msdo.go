package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/interfaces"
)

// MSDOGateway invokes the Microsoft Security DevOps CLI, which is expected
// to be installed on the agent rather than inside the virtual environment.
type MSDOGateway struct {
	runner *CommandRunner
	binary string
	log    interfaces.Logger
}

// NewMSDOGateway creates an MSDO gateway. An empty binary means "msdo" on
// the agent's PATH.
func NewMSDOGateway(runner *CommandRunner, binary string, log interfaces.Logger) *MSDOGateway {
	if binary == "" {
		binary = "msdo"
	}
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &MSDOGateway{runner: runner, binary: binary, log: log}
}

// Scan runs the MSDO analyzers over workdir and exports SARIF to reportPath.
func (g *MSDOGateway) Scan(ctx context.Context, workdir, reportPath string) error {
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	res := g.runner.Run(ctx, CommandSpec{
		Argv:        []string{g.binary, "run", "--export-file", reportPath},
		WorkingDir:  workdir,
		Description: "Microsoft Security DevOps scan",
	})
	if !res.Success {
		return CommandFailure("msdo", res)
	}

	g.log.Info("MSDO report written", interfaces.F("report", reportPath))
	return nil
}
