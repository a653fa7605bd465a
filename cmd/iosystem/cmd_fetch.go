package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/iosystem/internal/domain-orchestrators"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
	"github.com/ochairo/iosystem/internal/domain/services"
)

type fetchOptions struct {
	root        string
	outputDir   string
	extract     bool
	concurrency int
}

func newFetchCmd(g *globalOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and verify every bundle",
		Long: `Fetch all bundles declared in the manifest.

In remote mode each archive is downloaded into --output and verified against
its registered checksum before it is kept. In local mode the bundles are only
located in the project root.

Examples:
  iosystem fetch
  iosystem fetch --output Frameworks --extract
  iosystem fetch --concurrency 8 --log-level info`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, g, opts)
		},
	}

	addRootFlag(cmd, &opts.root)
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "bundles", "Directory downloaded bundles are written to")
	cmd.Flags().BoolVar(&opts.extract, "extract", false, "Unpack each archive next to it")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Maximum parallel downloads")

	return cmd
}

func runFetch(cmd *cobra.Command, g *globalOptions, opts *fetchOptions) error {
	ctx := cmd.Context()
	logger := interfaces.LoggerFromContext(ctx)

	if opts.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	manifest, err := g.loadManifest(ctx)
	if err != nil {
		return err
	}

	mode, finder := detectMode(ctx, manifest, opts.root)
	resolver := services.NewResolver(manifest)

	fileNames := make([]string, len(manifest.Targets))
	for i, name := range manifest.Targets {
		fileNames[i] = resolver.Naming().FileName(name)
	}
	warnPartialLocal(ctx, finder, opts.root, mode, fileNames)

	orchestrator := orchestrators.NewFetchOrchestrator(
		resolver,
		gateways.NewDownloader(opts.root,
			gateways.WithLogger(logger),
			gateways.WithRegistry(manifest.Checksums)),
		orchestrators.FetchOrchestratorConfig{
			OutputDir:   opts.outputDir,
			Extract:     opts.extract,
			Concurrency: opts.concurrency,
		},
	)

	result, err := orchestrator.FetchAll(ctx, mode)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), result.GetFetchSummary())
	return nil
}
