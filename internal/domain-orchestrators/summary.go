package orchestrators

import (
	"fmt"
	"strings"

	"trainpipe/internal/domain/entities"
)

// Summary returns a human-readable report of the run for the build log.
func (r *RunResult) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s (%s mode)\n", r.RunID, r.Mode)
	uri := r.Config.TrackingURI
	if uri == "" {
		uri = "(local)"
	}
	fmt.Fprintf(&b, "Tracking:   %s\n", uri)
	fmt.Fprintf(&b, "Experiment: %s\n", r.Config.ExperimentName)
	fmt.Fprintf(&b, "Max iter:   %s\n", r.Config.MaxIterations)
	b.WriteString("\nStages:\n")

	for _, st := range r.Stages {
		line := fmt.Sprintf("  %-16s %s", st.Name, st.Status)
		if st.Status == entities.StageFailed && st.ExitCode != 0 {
			line += fmt.Sprintf(" (exit %d)", st.ExitCode)
		}
		b.WriteString(line + "\n")
	}

	if r.Manifest != nil {
		fmt.Fprintf(&b, "\nArchived %d file(s) to %s", len(r.Manifest.Entries), r.Manifest.Archive)
		if len(r.Manifest.Missing) > 0 {
			fmt.Fprintf(&b, " (%d missing)", len(r.Manifest.Missing))
		}
		b.WriteString("\n")
	}

	if r.Err != nil {
		fmt.Fprintf(&b, "\nFAILED: %v\n", r.Err)
	} else {
		b.WriteString("\nSucceeded\n")
	}

	return b.String()
}
