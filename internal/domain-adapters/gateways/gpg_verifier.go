package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/iosystem/internal/external-adapters/gpg"
)

// gpgVerifier wraps the external OpenPGP adapter to implement the domain
// signature gateway for signed manifests
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a new signature gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{
		verifier: gpg.NewVerifier(),
	}
}

// ImportKeysFromURL imports all public keys from a KEYS file URL
func (g *gpgVerifier) ImportKeysFromURL(ctx context.Context, keysURL string) error {
	if err := g.verifier.ImportKeysFromURL(ctx, keysURL); err != nil {
		return fmt.Errorf("failed to import keys from URL: %w", err)
	}
	return nil
}

// ImportKeyFromFile imports a public key from a local file
func (g *gpgVerifier) ImportKeyFromFile(keyPath string) error {
	if err := g.verifier.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import key from file: %w", err)
	}
	return nil
}

// VerifySignatureFromFile verifies a detached signature over a manifest file
func (g *gpgVerifier) VerifySignatureFromFile(filePath, sigPath string) error {
	if err := g.verifier.VerifySignatureFromFile(filePath, sigPath); err != nil {
		return fmt.Errorf("manifest signature verification failed: %w", err)
	}
	return nil
}

// KeyringSize returns the number of keys loaded
func (g *gpgVerifier) KeyringSize() int {
	return g.verifier.GetKeyringSize()
}
