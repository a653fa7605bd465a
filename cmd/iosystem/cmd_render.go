package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/domain/services"
	"github.com/ochairo/iosystem/internal/external-adapters/swiftpm"
)

type renderOptions struct {
	root   string
	output string
}

func newRenderCmd(g *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the manifest as a SwiftPM Package.swift",
		Long: `Render Package.swift for the current project root. Bundles become
.binaryTarget(name:path:) in local mode and .binaryTarget(name:url:checksum:)
in remote mode.

Examples:
  iosystem render > Package.swift
  iosystem render --root . --output Package.swift`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			manifest, err := g.loadManifest(ctx)
			if err != nil {
				return err
			}

			mode, _ := detectMode(ctx, manifest, opts.root)
			resolutions, err := services.NewResolver(manifest).ResolveAll(mode)
			if err != nil {
				return err
			}

			content, err := swiftpm.NewRenderer().Render(manifest, mode, resolutions)
			if err != nil {
				return err
			}

			if opts.output == "" || opts.output == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(opts.output, content, 0644); err != nil { //nolint:gosec // Package.swift is meant to be world-readable
				return fmt.Errorf("failed to write %s: %w", opts.output, err)
			}
			return nil
		},
	}

	addRootFlag(cmd, &opts.root)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Output file ('-' for stdout)")

	return cmd
}
