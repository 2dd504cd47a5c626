package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/services"
)

func runPlan(_ context.Context, args []string) {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	var (
		opts   pipelineOptions
		params entities.RunParams
	)
	registerCommonFlags(fs, &opts)
	registerParamFlags(fs, &params)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe plan [options]

Show the resolved configuration and which stages would run, without
invoking any tool.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	// Resolution only reads the environment; the orchestrator is wired
	// without a ledger so planning leaves no trace.
	opts.noStore = true
	orch, cleanup, err := buildOrchestrator(&opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := services.NewConfigResolver().ResolveRunConfig(params)
	mode := entities.ModePipeline
	if params.UseMLflowProject {
		mode = entities.ModeProject
	}

	uri := cfg.TrackingURI
	if uri == "" {
		uri = "(local)"
	}
	fmt.Printf("Tracking:   %s\n", uri)
	fmt.Printf("Experiment: %s\n", cfg.ExperimentName)
	fmt.Printf("Max iter:   %s\n", cfg.MaxIterations)
	fmt.Printf("Mode:       %s\n\nStages:\n", mode)

	for _, entry := range orch.Plan(params) {
		state := "skip"
		if entry.Enabled {
			state = "run"
		}
		fmt.Printf("  %-16s %-8s %s\n", entry.Name, entry.Phase, state)
	}
}
