package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/interfaces"
)

// AuditSuiteGateway drives the repository's audit helper script, which
// wraps the Fairlearn bias snapshot, the Giskard scan, and the Credo AI
// metadata capture. Each audit is gated independently.
type AuditSuiteGateway struct {
	venv       *Venv
	runner     *CommandRunner
	scriptPath string
	log        interfaces.Logger
}

// NewAuditSuiteGateway creates a gateway for audit_tools.py. An empty
// scriptPath defaults to audit_tools.py in the working directory.
func NewAuditSuiteGateway(venv *Venv, runner *CommandRunner, scriptPath string, log interfaces.Logger) *AuditSuiteGateway {
	if scriptPath == "" {
		scriptPath = "audit_tools.py"
	}
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &AuditSuiteGateway{venv: venv, runner: runner, scriptPath: scriptPath, log: log}
}

// RunFairlearn produces the bias-audit report.
func (g *AuditSuiteGateway) RunFairlearn(ctx context.Context, workdir, reportPath string) error {
	return g.runAudit(ctx, workdir, "fairlearn", "--run-fairlearn", "--fairlearn-report", reportPath)
}

// RunGiskard produces the QA-scan report.
func (g *AuditSuiteGateway) RunGiskard(ctx context.Context, workdir, reportPath string) error {
	return g.runAudit(ctx, workdir, "giskard", "--run-giskard", "--giskard-report", reportPath)
}

// RunCredo produces the governance-metadata report.
func (g *AuditSuiteGateway) RunCredo(ctx context.Context, workdir, reportPath string) error {
	return g.runAudit(ctx, workdir, "credoai", "--run-credo", "--credo-report", reportPath)
}

func (g *AuditSuiteGateway) runAudit(ctx context.Context, workdir, name string, args ...string) error {
	reportPath := args[len(args)-1]
	if err := os.MkdirAll(filepath.Join(workdir, filepath.Dir(reportPath)), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	argv := append([]string{g.venv.Python(), g.scriptPath}, args...)
	res := g.runner.Run(ctx, CommandSpec{
		Argv:        argv,
		WorkingDir:  workdir,
		Description: fmt.Sprintf("%s audit", name),
	})
	if !res.Success {
		return CommandFailure(name, res)
	}

	g.log.Info("audit report written",
		interfaces.F("audit", name),
		interfaces.F("report", reportPath))
	return nil
}
