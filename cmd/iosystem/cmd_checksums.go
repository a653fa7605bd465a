package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/iosystem/internal/domain-orchestrators"
	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
	"github.com/ochairo/iosystem/internal/domain/services"
)

func newChecksumsCmd(g *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "checksums",
		Short: "Compute or update the manifest checksum registry",
		Long: `Compute checksums for a directory of freshly built bundles, or write them
into the manifest for a new release.

Examples:
  iosystem checksums compute --dir build/
  iosystem checksums update --dir build/ --manifest ios_system.yml`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", ".", "Directory holding the bundle archives")

	compute := &cobra.Command{
		Use:   "compute",
		Short: "Print the checksum of every declared bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := checksumOrchestrator(cmd, g, dir)
			if err != nil {
				return err
			}
			registry, err := orch.Compute(cmd.Context(), dir)
			if err != nil {
				return err
			}
			printRegistry(cmd, registry)
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Write the checksum of every declared bundle into the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.manifest == "" {
				return fmt.Errorf("update requires --manifest (the built-in manifest is read-only)")
			}
			orch, err := checksumOrchestrator(cmd, g, dir)
			if err != nil {
				return err
			}
			registry, err := orch.Update(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d checksums in %s\n", len(registry), g.repository().Path())
			return nil
		},
	}

	cmd.AddCommand(compute, update)
	return cmd
}

// checksumOrchestrator builds the orchestrator and warns about archives in
// dir that no declared target will pick up
func checksumOrchestrator(cmd *cobra.Command, g *globalOptions, dir string) (*orchestrators.ChecksumOrchestrator, error) {
	ctx := cmd.Context()
	logger := interfaces.LoggerFromContext(ctx)

	manifest, err := g.loadManifest(ctx)
	if err != nil {
		return nil, err
	}

	finder := gateways.NewArtifactFinder(manifest.LocalMarkers, logger)
	found, err := finder.FindByGlob(dir, manifest.Naming)
	if err != nil {
		return nil, err
	}
	naming := services.NewNaming(manifest.Naming)
	for _, path := range found {
		base := filepath.Base(path)
		if name, ok := naming.ComponentFromFileName(base); !ok || !manifest.HasTarget(name) {
			logger.Warn("bundle is not a declared target, skipping", interfaces.F("file", base))
		}
	}

	return orchestrators.NewChecksumOrchestrator(g.repository(), gateways.NewChecksumVerifier()), nil
}

func printRegistry(cmd *cobra.Command, registry entities.Registry) {
	for _, key := range registry.Keys() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", registry[key], key)
	}
}
