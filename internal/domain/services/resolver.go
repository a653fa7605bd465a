// Package services contains the domain business logic.
package services

import (
	"fmt"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

// Resolver decides, for each declared component, whether the consuming
// build references a local bundle or a remote URL plus checksum.
//
// Resolution performs no I/O. The local/remote decision is made once by the
// caller (see gateways.ArtifactFinder.DetectMode) and passed in as a value,
// so one signal governs every component: a checkout holding any bundle is
// treated as holding all of them.
type Resolver struct {
	manifest *entities.Manifest
	naming   Naming
}

// NewResolver creates a resolver for a loaded manifest
func NewResolver(manifest *entities.Manifest) *Resolver {
	return &Resolver{
		manifest: manifest,
		naming:   NewNaming(manifest.Naming),
	}
}

// Naming returns the file name template used by the resolver
func (r *Resolver) Naming() Naming {
	return r.naming
}

// Resolve returns the artifact record for a single component
func (r *Resolver) Resolve(mode entities.ResolutionMode, name entities.ComponentName) (entities.ArtifactRecord, error) {
	if !r.manifest.HasTarget(name) {
		return entities.ArtifactRecord{}, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}

	fileName := r.naming.FileName(name)

	if mode.Local {
		return entities.NewLocalRecord(fileName), nil
	}

	checksum, ok := r.lookupChecksum(fileName, name)
	if !ok {
		return entities.ArtifactRecord{}, &ConfigurationError{
			Component: name,
			Key:       fileName,
			Err:       ErrMissingChecksum,
		}
	}

	return entities.NewRemoteRecord(r.naming.RemoteURL(r.manifest.RemoteBase, name), checksum), nil
}

// ResolveAll resolves every declared target in declaration order.
// Any configuration error aborts the whole evaluation and nil is returned.
func (r *Resolver) ResolveAll(mode entities.ResolutionMode) ([]entities.Resolution, error) {
	resolutions := make([]entities.Resolution, 0, len(r.manifest.Targets))
	for _, name := range r.manifest.Targets {
		record, err := r.Resolve(mode, name)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, entities.Resolution{Component: name, Record: record})
	}
	return resolutions, nil
}

// MissingChecksums lists the targets that have no registry entry.
// It is used to report every gap at once instead of the first one.
func (r *Resolver) MissingChecksums() []entities.ComponentName {
	var missing []entities.ComponentName
	for _, name := range r.manifest.Targets {
		if _, ok := r.lookupChecksum(r.naming.FileName(name), name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// lookupChecksum reads the registry by templated file name, then by bare
// component name for registries written in short form.
func (r *Resolver) lookupChecksum(fileName string, name entities.ComponentName) (string, bool) {
	if sum, ok := r.manifest.Checksums.Checksum(fileName); ok {
		return sum, true
	}
	return r.manifest.Checksums.Checksum(string(name))
}
