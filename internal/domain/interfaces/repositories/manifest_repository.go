// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

// ManifestRepository defines the interface for accessing the bundle manifest
type ManifestRepository interface {
	// LoadManifest reads and validates the manifest
	LoadManifest(ctx context.Context) (*entities.Manifest, error)

	// SaveChecksums replaces the manifest's checksum registry
	SaveChecksums(ctx context.Context, checksums entities.Registry) error
}
