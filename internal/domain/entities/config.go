// Package entities defines core domain models and data structures.
package entities

// Default values used when neither a run parameter nor an environment
// variable provides a configuration value.
const (
	DefaultExperimentName = "jenkins-mlflow-demo"
	DefaultMaxIterations  = "200"
)

// Environment variable names consulted by the configuration resolver.
const (
	EnvTrackingURI    = "MLFLOW_TRACKING_URI"
	EnvExperimentName = "MLFLOW_EXPERIMENT_NAME"
	EnvMaxIterations  = "MAX_ITER"
	EnvTrackingToken  = "MLFLOW_TRACKING_TOKEN"
)

// RunParams holds the raw build-time inputs for a pipeline run, before any
// resolution against the environment. String values may be empty or
// whitespace-only; boolean toggles gate their respective stages.
type RunParams struct {
	TrackingURI    string
	ExperimentName string
	MaxIterations  string

	// UseMLflowProject selects project mode for the training stage.
	// When false, pipeline mode (params.yaml + dvc repro) is used.
	UseMLflowProject bool

	RunSecurityScans bool
	RunMSDO          bool

	RunGarak  bool
	GarakArgs string

	RunFairlearn bool
	RunGiskard   bool
	RunCredo     bool
	RunSBOM      bool
}

// ResolvedConfig holds the three configuration values after the
// parameter -> environment -> default precedence chain has been applied.
// MaxIterations stays a string: it is passed through uninterpreted to the
// training tool, which validates it on its own terms.
type ResolvedConfig struct {
	TrackingURI    string
	ExperimentName string
	MaxIterations  string
}
