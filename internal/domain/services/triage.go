package services

// ScanDecision classifies a dependency-scanner exit code.
type ScanDecision int

const (
	// ScanClean means exit 0: no vulnerabilities found, proceed silently.
	ScanClean ScanDecision = iota
	// ScanFindings means exit 1: vulnerabilities were reported. The
	// pipeline logs a warning and proceeds.
	ScanFindings
	// ScanFatal means any other non-zero exit: the scanner itself failed.
	// The run aborts and the scanner's exit code becomes the build's.
	ScanFatal
)

// TriageAuditExit maps a pip-audit exit code to a decision. Exit code 1 is
// the scanner's documented "vulnerabilities found" status and is never
// treated as a tool failure.
func TriageAuditExit(code int) ScanDecision {
	switch code {
	case 0:
		return ScanClean
	case 1:
		return ScanFindings
	default:
		return ScanFatal
	}
}
