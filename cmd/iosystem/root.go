package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/ochairo/iosystem/internal/domain-adapters/gateways"
	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
	"github.com/ochairo/iosystem/internal/external-adapters/yaml"
)

const (
	envManifest = "IOSYSTEM_MANIFEST"
	envRoot     = "IOSYSTEM_ROOT"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	manifest  string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "iosystem",
		Short: "Resolve and fetch ios_system binary bundles",
		Long: `iosystem resolves each command bundle of the ios_system package to either a
local .xcframework in the project root or a remote archive pinned by checksum.

If any bundle is present in the project root, every bundle is taken from the
project root. Otherwise every bundle is downloaded from the manifest's remote
base and verified against its registered checksum.

The manifest is read from --manifest or $IOSYSTEM_MANIFEST; without either the
built-in ios_system manifest is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newBaseLogger(cmd, opts)
			if err != nil {
				return fmt.Errorf("could not set up logger: %w", err)
			}
			cmd.SetContext(slogctx.NewCtx(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.manifest, "manifest", os.Getenv(envManifest),
		"Path to the bundle manifest (default: built-in ios_system manifest)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newResolveCmd(opts),
		newFetchCmd(opts),
		newVerifyCmd(opts),
		newChecksumsCmd(opts),
		newListCmd(opts),
		newRenderCmd(opts),
		newInitCmd(),
	)

	return root
}

func newBaseLogger(cmd *cobra.Command, opts *globalOptions) (*slog.Logger, error) {
	var level slog.Level
	switch opts.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", opts.logLevel)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch opts.logFormat {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", opts.logFormat)
	}

	return slog.New(handler), nil
}

func (o *globalOptions) repository() *yaml.ManifestRepository {
	return yaml.NewManifestRepository(o.manifest)
}

func (o *globalOptions) loadManifest(ctx context.Context) (*entities.Manifest, error) {
	manifest, err := o.repository().LoadManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return manifest, nil
}

// addRootFlag registers --root with the $IOSYSTEM_ROOT fallback
func addRootFlag(cmd *cobra.Command, root *string) {
	def := os.Getenv(envRoot)
	if def == "" {
		def = "."
	}
	cmd.Flags().StringVar(root, "root", def, "Project root scanned for local bundles")
}

// detectMode computes the local/remote signal once for the whole run
func detectMode(ctx context.Context, manifest *entities.Manifest, root string) (entities.ResolutionMode, *gateways.ArtifactFinder) {
	finder := gateways.NewArtifactFinder(manifest.LocalMarkers, interfaces.LoggerFromContext(ctx))
	return finder.DetectMode(ctx, root), finder
}

// warnPartialLocal logs every bundle missing from a local-mode project root.
// Local mode trusts a single marker, so these only fail at build time.
func warnPartialLocal(ctx context.Context, finder *gateways.ArtifactFinder, root string, mode entities.ResolutionMode, fileNames []string) {
	if !mode.Local {
		return
	}
	if _, missing := finder.FindLocalBundles(root, fileNames); len(missing) > 0 {
		interfaces.LoggerFromContext(ctx).Warn("local mode is on but some bundles are not in the project root",
			interfaces.F("marker", mode.Marker),
			interfaces.F("missing", missing))
	}
}
