// Package gpg provides OpenPGP signature verification for manifests.
package gpg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const (
	armoredSignatureHeader = "-----BEGIN PGP SIGNATURE-----"
	maxKeyringSize         = 10 * 1024 * 1024
	maxSignatureSize       = 10 * 1024
)

// Verifier checks detached OpenPGP signatures over manifest files using
// ProtonMail's go-crypto (maintained fork of golang.org/x/crypto/openpgp).
// This is in external-adapters to isolate the external dependency.
type Verifier struct {
	keyring    openpgp.EntityList
	httpClient *http.Client
}

// NewVerifier creates a new verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{
		keyring: make(openpgp.EntityList, 0),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ImportKeysFromURL imports all public keys published at keysURL (a KEYS file)
func (v *Verifier) ImportKeysFromURL(ctx context.Context, keysURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, keysURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download KEYS file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("KEYS file download failed with status %d", resp.StatusCode)
	}

	entities, err := readKeyRing(io.LimitReader(resp.Body, maxKeyringSize))
	if err != nil {
		return fmt.Errorf("failed to parse KEYS file: %w", err)
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// ImportKeyFromFile imports a public key from an armored or binary key file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is user-provided for key import
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}

	entities, err := readKeyRing(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// readKeyRing accepts armored input first and falls back to binary packets
func readKeyRing(r io.Reader) (openpgp.EntityList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}

	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found")
	}
	return entities, nil
}

// VerifySignatureFromFile verifies a detached signature over filePath
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) error {
	//nolint:gosec // G304: sigPath is user-provided for signature verification
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer sigFile.Close()

	//nolint:gosec // G304: filePath is user-provided for signature verification
	dataFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer dataFile.Close()

	return v.VerifySignature(dataFile, io.LimitReader(sigFile, maxSignatureSize))
}

// VerifySignature verifies a detached signature (armored or binary) over signed
func (v *Verifier) VerifySignature(signed, signature io.Reader) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no public keys imported")
	}

	sig := bufio.NewReader(signature)
	peek, _ := sig.Peek(len(armoredSignatureHeader))

	var err error
	if string(peek) == armoredSignatureHeader {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, signed, sig, nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, signed, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}

	return nil
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}
