package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"trainpipe/internal/domain/interfaces"
	"trainpipe/internal/domain/services"
	"trainpipe/internal/domain-adapters/gateways"
	"trainpipe/internal/external-adapters/gpg"
)

func runVerify(_ context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var (
		workdir  = fs.String("workdir", defaultWorkdir(), "Pipeline working directory")
		manifest = fs.String("manifest", "", "Integrity manifest path (default <workdir>/artifacts/security_manifest.json)")
		artifact = fs.String("artifact", "", "Artifact to check a detached signature for")
		sig      = fs.String("sig", "", "Detached signature path (default <artifact>.asc)")
		keyring  = fs.String("keyring", "", "Keyring file with the trusted signing keys")
		verbose  = fs.Bool("verbose", false, "Verbose logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: trainpipe verify [options]

Verify the integrity manifest written after training (SHA-256 of the
dataset and model), and optionally a detached GPG signature over an
artifact.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  trainpipe verify
  trainpipe verify --artifact artifacts/model.pkl --keyring release-keys.asc
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *artifact != "" && *keyring == "" {
		fmt.Fprintf(os.Stderr, "Error: --keyring is required with --artifact\n\n")
		fs.Usage()
		os.Exit(1)
	}

	log := interfaces.NewBuildLogger(*verbose)
	integrity := services.NewIntegrityService(gateways.NewFileDigester())

	manifestPath := *manifest
	if manifestPath == "" {
		manifestPath = filepath.Join(*workdir, "artifacts", "security_manifest.json")
	}

	checked, err := integrity.VerifyManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("integrity manifest verified",
		interfaces.F("manifest", manifestPath),
		interfaces.F("files", len(checked.Files)))

	if *artifact != "" {
		sigPath := *sig
		if sigPath == "" {
			sigPath = *artifact + ".asc"
		}

		verifier := gpg.NewVerifier()
		if err := verifier.LoadKeyringFile(*keyring); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := verifier.VerifyDetached(*artifact, sigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Info("signature verified",
			interfaces.F("artifact", *artifact),
			interfaces.F("signature", sigPath))
	}

	fmt.Println("Verification passed")
}
