package gateways

import (
	"context"
	"fmt"
	"strings"

	"trainpipe/internal/domain/interfaces"
)

// RedTeamGateway runs garak probes against the trained model.
//
// The garak invocation is a free-form command string supplied as a run
// parameter; an empty string makes the stage a no-op with zero side effects.
type RedTeamGateway struct {
	venv   *Venv
	runner *CommandRunner
	log    interfaces.Logger
}

// NewRedTeamGateway creates a garak gateway.
func NewRedTeamGateway(venv *Venv, runner *CommandRunner, log interfaces.Logger) *RedTeamGateway {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &RedTeamGateway{venv: venv, runner: runner, log: log}
}

// Scan runs `python -m garak` with the operator-provided arguments inside
// workdir. When args trims to empty the scan is skipped and no process is
// started.
func (g *RedTeamGateway) Scan(ctx context.Context, workdir, args string) error {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		g.log.Info("garak arguments empty; skipping red-team scan")
		return nil
	}

	res := g.runner.Run(ctx, CommandSpec{
		Script:      fmt.Sprintf("%s -m garak %s", g.venv.Python(), trimmed),
		WorkingDir:  workdir,
		Description: "garak red-team scan",
	})
	if !res.Success {
		return CommandFailure("garak", res)
	}
	return nil
}
