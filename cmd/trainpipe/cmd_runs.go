package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trainpipe/internal/runstore"
)

func runRuns(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	var (
		workdir = fs.String("workdir", defaultWorkdir(), "Pipeline working directory")
		store   = fs.String("store", "", "Run ledger database path (default <workdir>/trainpipe.db)")
		limit   = fs.Int("limit", 20, "Maximum number of runs to list")
		stages  = fs.Bool("stages", false, "Show per-stage outcomes")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe runs [options]

List recorded pipeline runs from the run ledger, newest first.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	storePath := *store
	if storePath == "" {
		storePath = filepath.Join(*workdir, "trainpipe.db")
	}

	ledger, err := runstore.Open(storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close() //nolint:errcheck // read-mostly CLI exit path

	runs, err := ledger.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %-9s  mode=%-8s  experiment=%s  max_iter=%s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			run.Mode,
			run.ExperimentName,
			run.MaxIterations)

		if *stages {
			stageRecords, err := ledger.StagesFor(ctx, run.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			for _, st := range stageRecords {
				fmt.Printf("    %-16s %-9s exit=%d %dms\n", st.Name, st.Status, st.ExitCode, st.DurationMS)
			}
		}
	}
}
