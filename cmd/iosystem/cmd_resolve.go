package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/services"
)

type resolveOptions struct {
	root    string
	jsonOut bool
}

func newResolveCmd(g *globalOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [component...]",
		Short: "Show where each bundle comes from",
		Long: `Resolve every declared component (or only the named ones) to a local
bundle path or a remote URL with its checksum.

Examples:
  iosystem resolve
  iosystem resolve awk shell --json
  iosystem resolve --root ./checkout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, g, opts, args)
		},
	}

	addRootFlag(cmd, &opts.root)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print resolutions as JSON")

	return cmd
}

func runResolve(cmd *cobra.Command, g *globalOptions, opts *resolveOptions, args []string) error {
	ctx := cmd.Context()

	manifest, err := g.loadManifest(ctx)
	if err != nil {
		return err
	}

	mode, finder := detectMode(ctx, manifest, opts.root)
	resolver := services.NewResolver(manifest)

	var resolutions []entities.Resolution
	if len(args) == 0 {
		resolutions, err = resolver.ResolveAll(mode)
		if err != nil {
			return err
		}
	} else {
		for _, arg := range args {
			name := entities.ComponentName(arg)
			record, err := resolver.Resolve(mode, name)
			if err != nil {
				return err
			}
			resolutions = append(resolutions, entities.Resolution{Component: name, Record: record})
		}
	}

	fileNames := make([]string, len(resolutions))
	for i, res := range resolutions {
		fileNames[i] = resolver.Naming().FileName(res.Component)
	}
	warnPartialLocal(ctx, finder, opts.root, mode, fileNames)

	if opts.jsonOut {
		return writeJSON(cmd.OutOrStdout(), resolutions)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mode: %s\n", mode)
	for _, res := range resolutions {
		fmt.Fprintf(out, "  %-12s %s\n", res.Component, res.Record)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
