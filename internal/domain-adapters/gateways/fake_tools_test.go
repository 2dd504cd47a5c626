package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newFakeVenv builds a Venv over a temp directory with an empty bin/.
// Tests install fake tool scripts into it with writeFakeTool.
func newFakeVenv(t *testing.T, runner *CommandRunner) *Venv {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "bin"), 0o750); err != nil {
		t.Fatalf("failed to create venv bin dir: %v", err)
	}
	return NewVenv(runner, dir, "", nil)
}

// writeFakeTool installs an executable shell script as venv/bin/<name>.
func writeFakeTool(t *testing.T, venv *Venv, name, body string) {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\n%s\n", body)
	//nolint:gosec // test fixture must be executable
	if err := os.WriteFile(venv.Tool(name), []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake %s: %v", name, err)
	}
}

// recordingTool installs a fake tool that appends its argv to logPath,
// one invocation per line, and exits with the given code.
func recordingTool(t *testing.T, venv *Venv, name, logPath string, exitCode int) {
	t.Helper()
	writeFakeTool(t, venv, name,
		fmt.Sprintf("echo \"$@\" >> %s\nexit %d", logPath, exitCode))
}

// recordedCalls returns the invocations a recordingTool logged.
func recordedCalls(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("failed to read call log: %v", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
