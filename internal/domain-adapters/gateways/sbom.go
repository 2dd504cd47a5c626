package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trainpipe/internal/domain/interfaces"
)

// SBOMGateway generates a CycloneDX software bill of materials for the
// virtual environment via cyclonedx-py.
//
// The tool itself is installed on demand. When its package cannot be
// installed, the stage substitutes a placeholder artifact noting the skip
// instead of failing the build.
type SBOMGateway struct {
	venv   *Venv
	runner *CommandRunner
	log    interfaces.Logger
}

// NewSBOMGateway creates an SBOM gateway.
func NewSBOMGateway(venv *Venv, runner *CommandRunner, log interfaces.Logger) *SBOMGateway {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &SBOMGateway{venv: venv, runner: runner, log: log}
}

// sbomPlaceholder is written in place of a real SBOM when cyclonedx-bom is
// unavailable for installation.
type sbomPlaceholder struct {
	Skipped     bool      `json:"skipped"`
	Reason      string    `json:"reason"`
	Detail      string    `json:"detail,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Generate writes a CycloneDX SBOM of the environment to outPath.
func (g *SBOMGateway) Generate(ctx context.Context, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	ok, detail := g.venv.TryInstallPackage(ctx, "cyclonedx-bom")
	if !ok {
		g.log.Warn("cyclonedx-bom unavailable; writing placeholder SBOM",
			interfaces.F("report", outPath))
		return g.writePlaceholder(outPath, detail)
	}

	res := g.runner.Run(ctx, CommandSpec{
		Argv:        []string{g.venv.Tool("cyclonedx-py"), "environment", g.venv.Dir(), "-o", outPath},
		Description: "CycloneDX SBOM generation",
	})
	if !res.Success {
		return CommandFailure("cyclonedx-py", res)
	}

	g.log.Info("SBOM written", interfaces.F("report", outPath))
	return nil
}

func (g *SBOMGateway) writePlaceholder(outPath, detail string) error {
	placeholder := sbomPlaceholder{
		Skipped:     true,
		Reason:      "cyclonedx-bom could not be installed",
		Detail:      detail,
		GeneratedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(placeholder, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode placeholder: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write placeholder: %w", err)
	}
	return nil
}
