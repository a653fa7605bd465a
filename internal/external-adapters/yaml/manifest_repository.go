package yaml

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// ManifestRepository implements repositories.ManifestRepository using a YAML file.
// With an empty path it serves the embedded default manifest read-only.
type ManifestRepository struct {
	path   string
	parser *ManifestParser
}

// NewManifestRepository creates a new YAML-based manifest repository
func NewManifestRepository(path string) *ManifestRepository {
	return &ManifestRepository{
		path:   path,
		parser: NewManifestParser(),
	}
}

// Path returns the manifest file path, empty for the embedded manifest
func (r *ManifestRepository) Path() string {
	return r.path
}

// LoadManifest reads and validates the manifest
func (r *ManifestRepository) LoadManifest(_ context.Context) (*entities.Manifest, error) {
	if r.path == "" {
		return r.parser.Parse(defaultManifest)
	}

	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest not found: %s", r.path)
	}

	return r.parser.ParseFile(r.path)
}

// SaveChecksums replaces the checksums block of the manifest file, keeping
// every other key and its comments untouched
func (r *ManifestRepository) SaveChecksums(_ context.Context, checksums entities.Registry) error {
	if r.path == "" {
		return fmt.Errorf("the embedded manifest is read-only, pass a manifest file")
	}

	//nolint:gosec // G304: path is the manifest path given on the command line
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("manifest root must be a mapping")
	}

	setMappingValue(doc.Content[0], "checksums", registryNode(checksums))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	// Make sure the result still parses before replacing the file
	if _, err := r.parser.Parse(buf.Bytes()); err != nil {
		return fmt.Errorf("updated manifest is invalid: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	return nil
}

func registryNode(checksums entities.Registry) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range checksums.Keys() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: checksums[key]},
		)
	}
	return node
}

func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			value.HeadComment = mapping.Content[i+1].HeadComment
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}
