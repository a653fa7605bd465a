package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
)

// DefaultLocalMarkers are the suffixes that mark a bundle in the project root
var DefaultLocalMarkers = []string{".xcframework", ".xcframework.zip"}

// ArtifactFinder provides utilities for locating bundles in the project root
type ArtifactFinder struct {
	markers []string
	logger  interfaces.Logger
}

// NewArtifactFinder creates a new artifact finder; empty markers use DefaultLocalMarkers
func NewArtifactFinder(markers []string, logger interfaces.Logger) *ArtifactFinder {
	if len(markers) == 0 {
		markers = DefaultLocalMarkers
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ArtifactFinder{markers: markers, logger: logger}
}

// DetectMode lists projectRoot once and switches local mode on if any entry
// ends with a marker suffix. It does not check that every component's bundle
// is present. A root that cannot be listed yields remote mode.
func (f *ArtifactFinder) DetectMode(_ context.Context, projectRoot string) entities.ResolutionMode {
	entries, err := os.ReadDir(projectRoot)
	if err != nil {
		f.logger.Debug("project root not readable, using remote artifacts",
			interfaces.F("root", projectRoot), interfaces.F("error", err))
		return entities.RemoteMode()
	}

	for _, entry := range entries {
		if f.isMarker(entry.Name()) {
			f.logger.Debug("local bundle found, using local artifacts",
				interfaces.F("root", projectRoot), interfaces.F("marker", entry.Name()))
			return entities.LocalMode(entry.Name())
		}
	}

	return entities.RemoteMode()
}

func (f *ArtifactFinder) isMarker(name string) bool {
	for _, suffix := range f.markers {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// FindLocalBundles reports which of the given bundle file names exist in
// projectRoot and which are missing
func (f *ArtifactFinder) FindLocalBundles(projectRoot string, fileNames []string) (present, missing []string) {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(projectRoot, name)); err == nil {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	return present, missing
}

// FindByGlob returns bundle archives in dir matching "<prefix>-*.<extension>"
func (f *ArtifactFinder) FindByGlob(dir string, naming entities.Naming) ([]string, error) {
	pattern := fmt.Sprintf("%s-*.%s", naming.Prefix, strings.TrimPrefix(naming.Extension, "."))

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	sort.Strings(matches)

	return matches, nil
}
