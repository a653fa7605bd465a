package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/iosystem/internal/domain-adapters/gateways"
	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
	"github.com/ochairo/iosystem/internal/domain/services"
)

type verifyOptions struct {
	checksum  string
	component string
	signature string
	key       string
}

func newVerifyCmd(g *globalOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a bundle checksum and optionally the manifest signature",
		Long: `Verify a bundle archive against an explicit checksum or against the checksum
registered for a component in the manifest.

With --signature and --key the manifest itself is first checked against a
detached OpenPGP signature, so its checksums can be trusted. --key accepts a
key file or an http(s) URL to a KEYS file.

Examples:
  # Verify against an explicit digest
  iosystem verify apple-universal-awk.xcframework.zip --checksum 0386d3...

  # Verify against the manifest
  iosystem verify bundles/apple-universal-awk.xcframework.zip --component awk

  # Check the manifest signature first
  iosystem verify bundle.zip --component awk --manifest ios_system.yml \
    --signature ios_system.yml.asc --key maintainers.asc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, g, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.checksum, "checksum", "", "Expected checksum (hex SHA-256 or algorithm:hex)")
	cmd.Flags().StringVar(&opts.component, "component", "", "Component whose registered checksum is expected")
	cmd.Flags().StringVar(&opts.signature, "signature", "", "Detached OpenPGP signature of the manifest")
	cmd.Flags().StringVar(&opts.key, "key", "", "Public key file or KEYS URL for --signature")
	cmd.MarkFlagsMutuallyExclusive("checksum", "component")
	cmd.MarkFlagsOneRequired("checksum", "component")
	cmd.MarkFlagsRequiredTogether("signature", "key")

	return cmd
}

func runVerify(cmd *cobra.Command, g *globalOptions, opts *verifyOptions, filePath string) error {
	ctx := cmd.Context()
	logger := interfaces.LoggerFromContext(ctx)

	if opts.signature != "" {
		if err := verifyManifestSignature(ctx, g.manifest, opts.signature, opts.key); err != nil {
			return err
		}
		logger.Info("manifest signature verified", interfaces.F("manifest", g.manifest))
	}

	expected := opts.checksum
	if opts.component != "" {
		manifest, err := g.loadManifest(ctx)
		if err != nil {
			return err
		}
		// Registered checksums only exist for remote records
		record, err := services.NewResolver(manifest).Resolve(entities.RemoteMode(), entities.ComponentName(opts.component))
		if err != nil {
			return err
		}
		expected = record.Checksum
	}

	if err := gateways.NewChecksumVerifier().VerifyChecksum(ctx, filePath, expected); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: checksum OK\n", filePath)
	return nil
}

func verifyManifestSignature(ctx context.Context, manifestPath, sigPath, key string) error {
	if manifestPath == "" {
		return errors.New("--signature requires --manifest (the built-in manifest is not signed)")
	}

	verifier := gateways.NewGPGVerifier()
	if strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "http://") {
		if err := verifier.ImportKeysFromURL(ctx, key); err != nil {
			return err
		}
	} else if err := verifier.ImportKeyFromFile(key); err != nil {
		return err
	}

	interfaces.LoggerFromContext(ctx).Debug("verifying manifest signature",
		interfaces.F("keys", verifier.KeyringSize()),
		interfaces.F("signature", sigPath))

	return verifier.VerifySignatureFromFile(manifestPath, sigPath)
}
