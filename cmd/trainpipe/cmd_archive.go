package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain-adapters/gateways"
)

func runArchive(_ context.Context, args []string) {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	var (
		workdir = fs.String("workdir", defaultWorkdir(), "Pipeline working directory")
		outDir  = fs.String("archive-dir", "archive", "Archive output directory, relative to workdir")
		runID   = fs.String("run-id", "", "Run identifier for the archive name (default random)")
		verbose = fs.Bool("verbose", false, "Verbose logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe archive [options]

Collect the fixed artifact set (tracking runs, scan and audit reports,
integrity manifest, SBOM) into a tar.gz build archive with a manifest.
Missing files are tolerated and listed in the manifest.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	id := *runID
	if id == "" {
		id = uuid.NewString()
	}

	log := interfaces.NewBuildLogger(*verbose)
	archiver := gateways.NewArchiver(gateways.NewFileDigester(), log)

	manifest, err := archiver.Collect(*workdir, id, entities.DefaultArchiveSet(), filepath.Join(*workdir, *outDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Archived %d file(s) to %s\n", len(manifest.Entries), manifest.Archive)
	for _, missing := range manifest.Missing {
		fmt.Printf("  missing: %s\n", missing)
	}
}
