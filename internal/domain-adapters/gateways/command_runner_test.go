package gateways

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCommandRunner_Run_ScriptSuccess(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{
		Script:      "echo 'Hello, World!'",
		Description: "test echo",
	})

	if !result.Success {
		t.Errorf("Run() failed: %v", result.Err)
	}

	if result.ExitCode != 0 {
		t.Errorf("Run() exit code = %d, want 0", result.ExitCode)
	}

	if result.Stdout != "Hello, World!\n" {
		t.Errorf("Run() stdout = %q, want %q", result.Stdout, "Hello, World!\n")
	}
}

func TestCommandRunner_Run_ArgvSuccess(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{
		Argv:        []string{"echo", "direct"},
		Description: "test argv",
	})

	if !result.Success {
		t.Errorf("Run() failed: %v", result.Err)
	}

	if result.Stdout != "direct\n" {
		t.Errorf("Run() stdout = %q, want %q", result.Stdout, "direct\n")
	}
}

func TestCommandRunner_Run_NonZeroExit(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{
		Script:      "exit 42",
		Description: "test failure",
	})

	if result.Success {
		t.Error("Run() should have failed")
	}

	if result.ExitCode != 42 {
		t.Errorf("Run() exit code = %d, want 42", result.ExitCode)
	}
}

func TestCommandRunner_Run_WithEnvironment(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{
		Script: "echo $TEST_VAR",
		Env: map[string]string{
			"TEST_VAR": "test_value",
		},
		Description: "test env vars",
	})

	if !result.Success {
		t.Errorf("Run() failed: %v", result.Err)
	}

	if result.Stdout != "test_value\n" {
		t.Errorf("Run() stdout = %q, want %q", result.Stdout, "test_value\n")
	}
}

func TestCommandRunner_Run_Timeout(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{
		Script:      "sleep 5",
		Timeout:     100 * time.Millisecond,
		Description: "test timeout",
	})

	if result.Success {
		t.Error("Run() should have timed out")
	}

	if result.Err == nil {
		t.Error("Run() should have returned an error")
	}

	if result.ExitCode != -1 {
		t.Errorf("Run() exit code = %d, want -1 for timeout", result.ExitCode)
	}
}

func TestCommandRunner_Run_WorkingDirectory(t *testing.T) {
	r := NewCommandRunner(nil)
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	result := r.Run(context.Background(), CommandSpec{
		Script:      "ls test.txt",
		WorkingDir:  tempDir,
		Description: "test working directory",
	})

	if !result.Success {
		t.Errorf("Run() failed: %v", result.Err)
	}

	if result.Stdout != "test.txt\n" {
		t.Errorf("Run() stdout = %q, want %q", result.Stdout, "test.txt\n")
	}
}

func TestCommandRunner_Run_EmptySpec(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{})

	if result.Success {
		t.Error("Run() should have failed for empty spec")
	}

	if result.ExitCode != -1 {
		t.Errorf("Run() exit code = %d, want -1", result.ExitCode)
	}
}

func TestCommandRunner_Run_StartFailure(t *testing.T) {
	r := NewCommandRunner(nil)

	result := r.Run(context.Background(), CommandSpec{
		Argv: []string{"/no/such/binary/anywhere"},
	})

	if result.Success {
		t.Error("Run() should have failed to start")
	}

	if result.ExitCode != -1 {
		t.Errorf("Run() exit code = %d, want -1 for start failure", result.ExitCode)
	}
}
