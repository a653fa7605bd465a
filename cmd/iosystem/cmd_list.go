package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/domain/services"
)

func newListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the components declared in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			manifest, err := g.loadManifest(ctx)
			if err != nil {
				return err
			}

			resolver := services.NewResolver(manifest)
			missing := make(map[string]bool)
			for _, name := range resolver.MissingChecksums() {
				missing[string(name)] = true
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%d components)\n", manifest.Name, manifest.Version, len(manifest.Targets))
			if manifest.Description != "" {
				fmt.Fprintf(out, "%s\n", manifest.Description)
			}
			for _, p := range manifest.Platforms {
				fmt.Fprintf(out, "  platform %s %s\n", p.Name, p.Version)
			}
			fmt.Fprintln(out)

			for _, name := range manifest.Targets {
				status := "checksum registered"
				if missing[string(name)] {
					status = "⚠️  no checksum"
				}
				fmt.Fprintf(out, "  %-12s %-45s %s\n", name, resolver.Naming().FileName(name), status)
			}
			return nil
		},
	}
}
