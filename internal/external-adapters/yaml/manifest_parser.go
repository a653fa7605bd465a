// Package yaml provides YAML-based manifest parsing and repository implementations.
package yaml

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// defaultManifest is the manifest of the published ios_system bundles
//
//go:embed ios_system.yml
var defaultManifest []byte

// DefaultManifest returns the raw embedded manifest
func DefaultManifest() []byte {
	return defaultManifest
}

// yamlManifest represents the raw YAML structure
type yamlManifest struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description"`
	Platforms    []yamlPlatform    `yaml:"platforms"`
	Products     []yamlProduct     `yaml:"products"`
	RemoteBase   string            `yaml:"remote_base"`
	Naming       yamlNaming        `yaml:"naming"`
	LocalMarkers []string          `yaml:"local_markers"`
	Targets      []string          `yaml:"targets"`
	Checksums    map[string]string `yaml:"checksums"`
}

type yamlPlatform struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type yamlProduct struct {
	Name    string   `yaml:"name"`
	Targets []string `yaml:"targets"`
}

type yamlNaming struct {
	Prefix    string `yaml:"prefix"`
	Extension string `yaml:"extension"`
}

// ManifestParser parses YAML manifest files
type ManifestParser struct{}

// NewManifestParser creates a new YAML parser
func NewManifestParser() *ManifestParser {
	return &ManifestParser{}
}

// ParseFile parses a YAML manifest file into a Manifest entity
func (p *ManifestParser) ParseFile(filePath string) (*entities.Manifest, error) {
	//nolint:gosec // G304: filePath is the manifest path given on the command line
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a validated Manifest entity
func (p *ManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	var ym yamlManifest
	if err := yaml.Unmarshal(data, &ym); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&ym); err != nil {
		return nil, err
	}

	targets := convertTargets(ym.Targets)

	m := &entities.Manifest{
		Name:         ym.Name,
		Version:      ym.Version,
		Description:  ym.Description,
		Platforms:    convertPlatforms(ym.Platforms),
		Products:     convertProducts(ym.Products, targets),
		RemoteBase:   ym.RemoteBase,
		Naming:       entities.Naming{Prefix: ym.Naming.Prefix, Extension: ym.Naming.Extension},
		LocalMarkers: ym.LocalMarkers,
		Targets:      targets,
		Checksums:    entities.Registry(ym.Checksums),
	}
	if m.Checksums == nil {
		m.Checksums = entities.Registry{}
	}

	return m, nil
}

func validate(ym *yamlManifest) error {
	if ym.Name == "" {
		return fmt.Errorf("manifest must have a name")
	}
	if len(ym.Targets) == 0 {
		return fmt.Errorf("manifest must declare at least one target")
	}

	seen := make(map[string]bool, len(ym.Targets))
	for _, t := range ym.Targets {
		if t == "" {
			return fmt.Errorf("manifest has an empty target name")
		}
		if seen[t] {
			return fmt.Errorf("duplicate target %q", t)
		}
		seen[t] = true
	}

	for _, prod := range ym.Products {
		if prod.Name == "" {
			return fmt.Errorf("product must have a name")
		}
		for _, t := range prod.Targets {
			if !seen[t] {
				return fmt.Errorf("product %s references undeclared target %q", prod.Name, t)
			}
		}
	}

	if ym.Naming.Prefix == "" || ym.Naming.Extension == "" {
		return fmt.Errorf("naming prefix and extension are required")
	}

	u, err := url.Parse(ym.RemoteBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote_base must be an absolute http(s) URL, got %q", ym.RemoteBase)
	}

	return nil
}

func convertTargets(names []string) []entities.ComponentName {
	out := make([]entities.ComponentName, 0, len(names))
	for _, n := range names {
		out = append(out, entities.ComponentName(n))
	}
	return out
}

func convertPlatforms(yp []yamlPlatform) []entities.Platform {
	out := make([]entities.Platform, 0, len(yp))
	for _, p := range yp {
		out = append(out, entities.Platform{Name: p.Name, Version: p.Version})
	}
	return out
}

// convertProducts maps products; a product without targets exposes all of them
func convertProducts(yp []yamlProduct, all []entities.ComponentName) []entities.Product {
	out := make([]entities.Product, 0, len(yp))
	for _, p := range yp {
		targets := convertTargets(p.Targets)
		if len(targets) == 0 {
			targets = append([]entities.ComponentName(nil), all...)
		}
		out = append(out, entities.Product{Name: p.Name, Targets: targets})
	}
	return out
}
