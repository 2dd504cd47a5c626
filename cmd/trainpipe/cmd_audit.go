package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trainpipe/internal/domain/entities"
)

func runAudit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	var (
		opts   pipelineOptions
		params entities.RunParams
	)
	registerCommonFlags(fs, &opts)
	fs.BoolVar(&params.RunGarak, "garak", false, "Run the garak red-team scan")
	fs.StringVar(&params.GarakArgs, "garak-args", "", "Arguments passed to garak (empty skips the scan)")
	fs.BoolVar(&params.RunFairlearn, "fairlearn", false, "Run the Fairlearn bias audit")
	fs.BoolVar(&params.RunGiskard, "giskard", false, "Run the Giskard scan")
	fs.BoolVar(&params.RunCredo, "credo", false, "Capture Credo AI metadata")
	fs.BoolVar(&params.RunSBOM, "sbom", false, "Generate a CycloneDX SBOM")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe audit [options]

Run the post-training audits against an already-trained artifact. Each
audit is gated independently; none runs unless requested.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  trainpipe audit --fairlearn --giskard
  trainpipe audit --garak --garak-args "--model_type huggingface"
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	orch, cleanup, err := buildOrchestrator(&opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	result := orch.RunPhases(ctx, params, entities.PhaseSetup, entities.PhaseAudit)
	fmt.Println(result.Summary())

	if result.Err != nil {
		cleanup()
		os.Exit(entities.ExitCode(result.Err))
	}
}
