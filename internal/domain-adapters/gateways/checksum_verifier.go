package gateways

import (
	"context"
	// Register hash implementations used by go-digest
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
)

// checksumVerifier implements checksum verification with go-digest
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// ParseChecksum turns a registry checksum into a digest.
// A bare hex string is SHA-256 (the format of the manifest registry);
// "sha256:<hex>" and "sha512:<hex>" are accepted as well.
func ParseChecksum(sum string) (digest.Digest, error) {
	sum = strings.TrimSpace(sum)
	if sum == "" {
		return "", fmt.Errorf("empty checksum")
	}

	var d digest.Digest
	if strings.Contains(sum, ":") {
		d = digest.Digest(strings.ToLower(sum))
	} else {
		d = digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(sum))
	}

	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("invalid checksum %q: %w", sum, err)
	}
	return d, nil
}

// VerifyChecksum verifies a file against the expected checksum
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	//nolint:gosec // G304: File path is user-provided for checksum verification
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return v.VerifyReader(f, expectedSum)
}

// VerifyReader consumes r and checks its digest against expectedSum
func (v *checksumVerifier) VerifyReader(r io.Reader, expectedSum string) error {
	expected, err := ParseChecksum(expectedSum)
	if err != nil {
		return err
	}

	actual, err := expected.Algorithm().FromReader(r)
	if err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected.Encoded(), actual.Encoded())
	}

	return nil
}

// CalculateChecksum calculates the SHA256 checksum of a file as bare hex
func (v *checksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return d.Encoded(), nil
}
