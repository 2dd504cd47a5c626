package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trainpipe/internal/domain/entities"
)

func runRun(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		opts   pipelineOptions
		params entities.RunParams
	)
	registerCommonFlags(fs, &opts)
	registerParamFlags(fs, &params)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe run [options]

Execute the full pipeline: virtual environment setup, dependency install,
optional security scans, training (mlflow project or dvc repro), optional
post-training audits, and artifact archiving.

Fail-fast: any non-optional stage returning non-zero aborts the run.
pip-audit exit code 1 (vulnerabilities found) is logged and tolerated.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  trainpipe run --security-scans --sbom
  trainpipe run --mlflow-project --experiment-name nightly --max-iter 500
  trainpipe run --garak --garak-args "--model_type huggingface --model_name gpt2"
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

	result := orch.Run(ctx, params)
	fmt.Println(result.Summary())

	if result.Err != nil {
		cleanup()
		os.Exit(entities.ExitCode(result.Err))
	}
}
