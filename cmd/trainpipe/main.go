package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "run":
		runRun(ctx, os.Args[2:])
	case "plan":
		runPlan(ctx, os.Args[2:])
	case "scan":
		runScan(ctx, os.Args[2:])
	case "audit":
		runAudit(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "archive":
		runArchive(ctx, os.Args[2:])
	case "runs":
		runRuns(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trainpipe - ML training pipeline orchestrator

Usage:
  trainpipe <command> [options]

Commands:
  run      Execute the full pipeline (setup, scans, training, audits, archive)
  plan     Show the resolved configuration and stage gating without running
  scan     Run the security scanners only
  audit    Run the post-training audits only
  verify   Verify artifact checksums and signatures
  archive  Collect the artifact set into a build archive
  runs     List recorded pipeline runs

Use "trainpipe <command> --help" for more information about a command.`)
}
