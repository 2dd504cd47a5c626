package entities

import (
	"errors"
	"fmt"
)

// ToolExitError reports a non-zero exit from an external tool. The pipeline
// propagates the tool's own exit code as the process exit status.
type ToolExitError struct {
	Tool string
	Code int
}

func (e *ToolExitError) Error() string {
	return fmt.Sprintf("%s failed (exit %d)", e.Tool, e.Code)
}

// ExitCode extracts the exit status to report for a pipeline failure.
// A ToolExitError carries the failing tool's own code; anything else
// (infrastructure errors, bad input) maps to 1. A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var toolErr *ToolExitError
	if errors.As(err, &toolErr) && toolErr.Code > 0 {
		return toolErr.Code
	}
	return 1
}
