// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
	"github.com/ochairo/iosystem/internal/domain/interfaces/gateways"
	"github.com/ochairo/iosystem/internal/domain/services"
)

const defaultConcurrency = 4

// FetchOrchestrator resolves every declared component and materialises the
// bundles: remote ones are downloaded and verified, local ones located.
type FetchOrchestrator struct {
	resolver    *services.Resolver
	fetcher     gateways.ArtifactFetcher
	outputDir   string
	extract     bool
	concurrency int
}

// FetchOrchestratorConfig holds configuration for the orchestrator
type FetchOrchestratorConfig struct {
	OutputDir   string
	Extract     bool
	Concurrency int
}

// NewFetchOrchestrator creates a new fetch orchestrator
func NewFetchOrchestrator(
	resolver *services.Resolver,
	fetcher gateways.ArtifactFetcher,
	config FetchOrchestratorConfig,
) *FetchOrchestrator {
	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = "bundles"
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &FetchOrchestrator{
		resolver:    resolver,
		fetcher:     fetcher,
		outputDir:   outputDir,
		extract:     config.Extract,
		concurrency: concurrency,
	}
}

// FetchResult contains the result of a fetch run
type FetchResult struct {
	Mode      entities.ResolutionMode
	Artifacts []*entities.Artifact // In manifest declaration order
	Duration  time.Duration
}

// FetchAll resolves all targets for mode and fetches them concurrently.
// A configuration error aborts before any download starts.
func (o *FetchOrchestrator) FetchAll(ctx context.Context, mode entities.ResolutionMode) (*FetchResult, error) {
	startTime := time.Now()
	logger := interfaces.LoggerFromContext(ctx)

	resolutions, err := o.resolver.ResolveAll(mode)
	if err != nil {
		return nil, err
	}

	logger.Info("fetching bundles",
		interfaces.F("mode", mode.String()),
		interfaces.F("components", len(resolutions)),
		interfaces.F("concurrency", o.concurrency))

	artifacts := make([]*entities.Artifact, len(resolutions))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.concurrency)

	for i, res := range resolutions {
		i, res := i, res
		eg.Go(func() error {
			artifact, err := o.fetcher.Fetch(egctx, res.Component, res.Record, o.outputDir)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", res.Component, err)
			}

			if o.extract {
				extractDir := filepath.Join(o.outputDir, bundleDirName(artifact.Path))
				if err := o.fetcher.Extract(artifact.Path, extractDir); err != nil {
					return fmt.Errorf("extract %s: %w", res.Component, err)
				}
				artifact.Extracted = extractDir
			}

			logger.Debug("bundle ready",
				interfaces.F("component", res.Component),
				interfaces.F("path", artifact.Path),
				interfaces.F("verified", artifact.Verified))

			artifacts[i] = artifact
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &FetchResult{
		Mode:      mode,
		Artifacts: artifacts,
		Duration:  time.Since(startTime),
	}, nil
}

// bundleDirName strips ".zip" so "x.xcframework.zip" unpacks next to itself as "x.xcframework"
func bundleDirName(archivePath string) string {
	base := filepath.Base(archivePath)
	if trimmed := strings.TrimSuffix(base, ".zip"); trimmed != base {
		return trimmed
	}
	return base + "-extracted"
}

// GetFetchSummary returns a human-readable summary of the run
func (r *FetchResult) GetFetchSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fetched %d bundles (%s mode) in %v\n", len(r.Artifacts), r.Mode, r.Duration.Round(time.Millisecond))
	for _, a := range r.Artifacts {
		status := "unverified"
		if a.Verified {
			status = "verified"
		}
		fmt.Fprintf(&b, "  %-12s %-10s %s\n", a.Component, status, a.Path)
	}
	return b.String()
}
