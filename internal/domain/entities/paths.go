package entities

// Output paths, relative to the working directory. These mirror what the
// training script and audit tools write, so the archive stage knows exactly
// what to look for.
const (
	TrackingDirPath      = "mlruns_local"
	DependencyReportPath = "reports/pip_audit.json"
	StaticReportPath     = "reports/bandit_report.json"
	MSDOReportPath       = "reports/msdo.sarif"
	RedTeamReportPath    = "reports/garak_report.json"
	FairlearnReportPath  = "artifacts/fairlearn_report.json"
	GiskardReportPath    = "artifacts/giskard_report.json"
	CredoReportPath      = "artifacts/credoai_report.json"
	SBOMReportPath       = "reports/sbom.json"
	IntegrityPath        = "artifacts/security_manifest.json"
	ModelPath            = "artifacts/model.pkl"
	DatasetPath          = "data/iris.parquet"
)

// DefaultArchiveSet is the fixed best-effort set of output paths collected
// as build artifacts. Missing entries are tolerated.
func DefaultArchiveSet() []string {
	return []string{
		TrackingDirPath,
		DependencyReportPath,
		StaticReportPath,
		MSDOReportPath,
		RedTeamReportPath,
		FairlearnReportPath,
		GiskardReportPath,
		CredoReportPath,
		IntegrityPath,
		SBOMReportPath,
	}
}
