// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

// ArtifactFetcher materialises a resolved record on disk
type ArtifactFetcher interface {
	// Fetch downloads (remote) or locates (local) the bundle and verifies it
	Fetch(ctx context.Context, component entities.ComponentName, record entities.ArtifactRecord, outputDir string) (*entities.Artifact, error)

	// Extract unpacks a bundle archive into destDir
	Extract(archivePath, destDir string) error
}

// ChecksumGateway computes and checks bundle digests
type ChecksumGateway interface {
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
	CalculateChecksum(filePath string) (string, error)
}
