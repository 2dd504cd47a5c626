package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain/services"
)

// DependencyAuditGateway runs pip-audit against the dependency manifest.
//
// Exit-code contract: 0 means no vulnerabilities, 1 means vulnerabilities
// were found (tolerated, logged as a warning), anything else means the
// scanner itself broke and the run aborts with that exit code.
type DependencyAuditGateway struct {
	venv   *Venv
	runner *CommandRunner
	log    interfaces.Logger
}

// NewDependencyAuditGateway creates a pip-audit gateway.
func NewDependencyAuditGateway(venv *Venv, runner *CommandRunner, log interfaces.Logger) *DependencyAuditGateway {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &DependencyAuditGateway{venv: venv, runner: runner, log: log}
}

// Scan audits the manifest and writes the JSON report to reportPath.
func (g *DependencyAuditGateway) Scan(ctx context.Context, manifest, reportPath string) (services.ScanDecision, error) {
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o750); err != nil {
		return services.ScanFatal, fmt.Errorf("failed to create report directory: %w", err)
	}

	res := g.runner.Run(ctx, CommandSpec{
		Argv:        []string{g.venv.Tool("pip-audit"), "-r", manifest, "-f", "json", "-o", reportPath},
		Description: "pip-audit dependency scan",
	})

	if res.Err != nil && res.ExitCode < 0 {
		return services.ScanFatal, fmt.Errorf("pip-audit did not run: %w", res.Err)
	}

	switch services.TriageAuditExit(res.ExitCode) {
	case services.ScanClean:
		return services.ScanClean, nil
	case services.ScanFindings:
		g.log.Warn("pip-audit reported vulnerabilities; continuing",
			interfaces.F("report", reportPath))
		return services.ScanFindings, nil
	default:
		return services.ScanFatal, fmt.Errorf("%w\nstderr: %s",
			&entities.ToolExitError{Tool: "pip-audit", Code: res.ExitCode}, res.Stderr)
	}
}
