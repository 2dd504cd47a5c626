package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trainpipe/internal/domain/entities"
)

func runScan(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	var (
		opts pipelineOptions
		msdo bool
	)
	registerCommonFlags(fs, &opts)
	fs.BoolVar(&msdo, "msdo", false, "Also run Microsoft Security DevOps")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe scan [options]

Run the security scanners only: pip-audit over the dependency manifest
(exit code 1 tolerated as a warning) and bandit over the sources. The
virtual environment is created first if needed.

Options:
`)
		fs.PrintDefaults()
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

	params := entities.RunParams{
		RunSecurityScans: true,
		RunMSDO:          msdo,
	}
	result := orch.RunPhases(ctx, params, entities.PhaseSetup, entities.PhaseScan)
	fmt.Println(result.Summary())

	if result.Err != nil {
		cleanup()
		os.Exit(entities.ExitCode(result.Err))
	}
}
