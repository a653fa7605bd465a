package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
	"github.com/ochairo/iosystem/internal/domain/interfaces/gateways"
	"github.com/ochairo/iosystem/internal/domain/interfaces/repositories"
	"github.com/ochairo/iosystem/internal/domain/services"
)

// ChecksumOrchestrator produces a new registry from a directory of bundle
// archives, which is how a new manifest revision is authored
type ChecksumOrchestrator struct {
	repo     repositories.ManifestRepository
	checksum gateways.ChecksumGateway
}

// NewChecksumOrchestrator creates a new checksum orchestrator
func NewChecksumOrchestrator(repo repositories.ManifestRepository, checksum gateways.ChecksumGateway) *ChecksumOrchestrator {
	return &ChecksumOrchestrator{repo: repo, checksum: checksum}
}

// Compute hashes the bundle of every declared target found in dir.
// All missing bundles are reported together.
func (o *ChecksumOrchestrator) Compute(ctx context.Context, dir string) (entities.Registry, error) {
	manifest, err := o.repo.LoadManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	naming := services.NewNaming(manifest.Naming)
	registry := make(entities.Registry, len(manifest.Targets))

	var errs []error
	for _, name := range manifest.Targets {
		fileName := naming.FileName(name)
		path := filepath.Join(dir, fileName)

		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Errorf("bundle for %s not found: %s", name, fileName))
			continue
		}

		sum, err := o.checksum.CalculateChecksum(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("checksum %s: %w", fileName, err))
			continue
		}
		registry[fileName] = sum
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return registry, nil
}

// Update computes the registry from dir and writes it into the manifest
func (o *ChecksumOrchestrator) Update(ctx context.Context, dir string) (entities.Registry, error) {
	logger := interfaces.LoggerFromContext(ctx)

	registry, err := o.Compute(ctx, dir)
	if err != nil {
		return nil, err
	}

	if err := o.repo.SaveChecksums(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save checksums: %w", err)
	}

	logger.Info("manifest checksums updated", interfaces.F("bundles", len(registry)), interfaces.F("dir", dir))
	return registry, nil
}
