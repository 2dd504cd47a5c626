package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
)

// Venv manages the isolated Python environment every tool runs inside.
type Venv struct {
	runner *CommandRunner
	dir    string
	python string
	log    interfaces.Logger
}

// NewVenv creates a venv gateway rooted at dir. The python argument names
// the interpreter used to create the environment; empty means python3.
func NewVenv(runner *CommandRunner, dir, python string, log interfaces.Logger) *Venv {
	if python == "" {
		python = "python3"
	}
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &Venv{runner: runner, dir: dir, python: python, log: log}
}

// Dir returns the environment's root directory.
func (v *Venv) Dir() string {
	return v.dir
}

// Tool returns the path of an executable installed inside the environment.
func (v *Venv) Tool(name string) string {
	return filepath.Join(v.dir, "bin", name)
}

// Python returns the environment's interpreter path once created.
func (v *Venv) Python() string {
	return v.Tool("python")
}

// Ensure creates the environment unless it already holds an interpreter.
func (v *Venv) Ensure(ctx context.Context) error {
	if _, err := os.Stat(v.Python()); err == nil {
		v.log.Debug("virtual environment already present", interfaces.F("dir", v.dir))
		return nil
	}

	res := v.runner.Run(ctx, CommandSpec{
		Argv:        []string{v.python, "-m", "venv", v.dir},
		Description: "create virtual environment",
	})
	if !res.Success {
		return CommandFailure("venv", res)
	}
	return nil
}

// InstallRequirements installs the baseline dependency manifest.
func (v *Venv) InstallRequirements(ctx context.Context, manifest string) error {
	res := v.runner.Run(ctx, CommandSpec{
		Argv:        []string{v.Tool("pip"), "install", "-r", manifest},
		Description: "install requirements",
	})
	if !res.Success {
		return CommandFailure("pip install", res)
	}
	return nil
}

// InstallPackages installs additional tool packages into the environment.
func (v *Venv) InstallPackages(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	args := append([]string{v.Tool("pip"), "install"}, packages...)
	res := v.runner.Run(ctx, CommandSpec{
		Argv:        args,
		Description: fmt.Sprintf("install %v", packages),
	})
	if !res.Success {
		return CommandFailure("pip install", res)
	}
	return nil
}

// TryInstallPackage attempts an install and reports failure without
// constructing an error, for stages that substitute a placeholder artifact
// when their tool's package is unavailable.
func (v *Venv) TryInstallPackage(ctx context.Context, pkg string) (ok bool, detail string) {
	res := v.runner.Run(ctx, CommandSpec{
		Argv:        []string{v.Tool("pip"), "install", pkg},
		Description: fmt.Sprintf("install %s", pkg),
	})
	if res.Success {
		return true, ""
	}
	return false, res.Stderr
}

// CommandFailure converts a CommandResult into the error the orchestrator
// propagates. Exit codes from the tool itself keep their value; failures to
// start or timeouts surface the underlying error.
func CommandFailure(tool string, res *CommandResult) error {
	if res.ExitCode > 0 {
		return fmt.Errorf("%w\nstderr: %s", &entities.ToolExitError{Tool: tool, Code: res.ExitCode}, res.Stderr)
	}
	if res.Err != nil {
		return fmt.Errorf("%s did not run: %w", tool, res.Err)
	}
	return fmt.Errorf("%s failed", tool)
}
