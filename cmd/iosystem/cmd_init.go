package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/external-adapters/yaml"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write the built-in manifest to a file for editing",
		Long: `Write the built-in ios_system manifest to a file. Use it as the starting point
for a new release, then point --manifest at it.

Examples:
  iosystem init ios_system.yml
  iosystem checksums update --manifest ios_system.yml --dir build/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, yaml.DefaultManifest(), 0644); err != nil { //nolint:gosec // manifests are shared with the build
				return fmt.Errorf("failed to write manifest: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
