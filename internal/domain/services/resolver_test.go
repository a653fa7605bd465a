package services

import (
	"errors"
	"testing"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

const testBase = "https://artifacts.example.com/ios_system/v3.0.0"

func newTestManifest(targets []entities.ComponentName, checksums entities.Registry) *entities.Manifest {
	return &entities.Manifest{
		Name:       "ios_system",
		RemoteBase: testBase,
		Naming:     entities.Naming{Prefix: "apple-universal", Extension: "xcframework.zip"},
		Targets:    targets,
		Checksums:  checksums,
	}
}

func TestResolver_Resolve(t *testing.T) {
	manifest := newTestManifest(
		[]entities.ComponentName{"awk", "shell"},
		entities.Registry{
			"apple-universal-awk.xcframework.zip":   "abc123",
			"apple-universal-shell.xcframework.zip": "def456",
		},
	)

	tests := []struct {
		name      string
		mode      entities.ResolutionMode
		component entities.ComponentName
		want      entities.ArtifactRecord
	}{
		{
			name:      "remote awk",
			mode:      entities.RemoteMode(),
			component: "awk",
			want:      entities.NewRemoteRecord(testBase+"/apple-universal-awk.xcframework.zip", "abc123"),
		},
		{
			name:      "remote shell",
			mode:      entities.RemoteMode(),
			component: "shell",
			want:      entities.NewRemoteRecord(testBase+"/apple-universal-shell.xcframework.zip", "def456"),
		},
		{
			name:      "local awk",
			mode:      entities.LocalMode("apple-universal-shell.xcframework.zip"),
			component: "awk",
			want:      entities.NewLocalRecord("apple-universal-awk.xcframework.zip"),
		},
	}

	resolver := NewResolver(manifest)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.mode, tt.component)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Empty project root, registry in short form: awk resolves remotely.
func TestResolver_Resolve_ShortRegistryKey(t *testing.T) {
	manifest := newTestManifest([]entities.ComponentName{"awk"}, entities.Registry{"awk": "abc123"})

	got, err := NewResolver(manifest).Resolve(entities.RemoteMode(), "awk")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := entities.NewRemoteRecord(testBase+"/apple-universal-awk.xcframework.zip", "abc123")
	if got != want {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

// A single local bundle puts every component into local mode, even ones
// whose bundle is absent.
func TestResolver_ResolveAll_LocalModeCoversAllComponents(t *testing.T) {
	manifest := newTestManifest([]entities.ComponentName{"awk", "shell"}, nil)
	mode := entities.LocalMode("apple-universal-shell.xcframework.zip")

	got, err := NewResolver(manifest).ResolveAll(mode)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ResolveAll() returned %d records, want 2", len(got))
	}

	for _, res := range got {
		if !res.Record.IsLocal() || res.Record.IsRemote() {
			t.Errorf("%s: record = %v, want local only", res.Component, res.Record)
		}
		wantPath := "apple-universal-" + string(res.Component) + ".xcframework.zip"
		if res.Record.Path != wantPath {
			t.Errorf("%s: path = %s, want %s", res.Component, res.Record.Path, wantPath)
		}
	}
}

func TestResolver_ResolveAll_MissingChecksum(t *testing.T) {
	manifest := newTestManifest(
		[]entities.ComponentName{"awk", "curl_ios", "tar"},
		entities.Registry{
			"apple-universal-awk.xcframework.zip": "abc123",
			"apple-universal-tar.xcframework.zip": "fed987",
		},
	)

	got, err := NewResolver(manifest).ResolveAll(entities.RemoteMode())
	if err == nil {
		t.Fatal("ResolveAll() should fail when a checksum is missing")
	}
	if got != nil {
		t.Errorf("ResolveAll() returned partial result %v, want nil", got)
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %T, want *ConfigurationError", err)
	}
	if cfgErr.Component != "curl_ios" {
		t.Errorf("Component = %s, want curl_ios", cfgErr.Component)
	}
	if cfgErr.Key != "apple-universal-curl_ios.xcframework.zip" {
		t.Errorf("Key = %s", cfgErr.Key)
	}
	if !errors.Is(err, ErrMissingChecksum) {
		t.Error("error should wrap ErrMissingChecksum")
	}
}

func TestResolver_MissingChecksum_IgnoredInLocalMode(t *testing.T) {
	manifest := newTestManifest([]entities.ComponentName{"awk"}, entities.Registry{})

	if _, err := NewResolver(manifest).Resolve(entities.LocalMode("x.xcframework"), "awk"); err != nil {
		t.Errorf("Resolve() in local mode error = %v", err)
	}
}

func TestResolver_Resolve_UnknownComponent(t *testing.T) {
	manifest := newTestManifest([]entities.ComponentName{"awk"}, entities.Registry{"awk": "abc123"})

	_, err := NewResolver(manifest).Resolve(entities.RemoteMode(), "perl")
	if !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("Resolve() error = %v, want ErrUnknownComponent", err)
	}
}

func TestResolver_Resolve_Idempotent(t *testing.T) {
	manifest := newTestManifest([]entities.ComponentName{"text"}, entities.Registry{
		"apple-universal-text.xcframework.zip": "09b1ca",
	})
	resolver := NewResolver(manifest)

	for _, mode := range []entities.ResolutionMode{entities.RemoteMode(), entities.LocalMode("a.xcframework")} {
		first, err := resolver.Resolve(mode, "text")
		if err != nil {
			t.Fatalf("first Resolve() error = %v", err)
		}
		second, err := resolver.Resolve(mode, "text")
		if err != nil {
			t.Fatalf("second Resolve() error = %v", err)
		}
		if first != second {
			t.Errorf("mode %s: %v != %v", mode, first, second)
		}
	}
}

func TestResolver_MissingChecksums(t *testing.T) {
	manifest := newTestManifest(
		[]entities.ComponentName{"awk", "files", "shell"},
		entities.Registry{"apple-universal-files.xcframework.zip": "e37529"},
	)

	missing := NewResolver(manifest).MissingChecksums()
	if len(missing) != 2 || missing[0] != "awk" || missing[1] != "shell" {
		t.Errorf("MissingChecksums() = %v, want [awk shell]", missing)
	}
}

func TestNaming(t *testing.T) {
	n := NewNaming(entities.Naming{Prefix: "apple-universal", Extension: ".xcframework.zip"})

	if got := n.FileName("curl_ios"); got != "apple-universal-curl_ios.xcframework.zip" {
		t.Errorf("FileName() = %s", got)
	}

	if got := n.RemoteURL(testBase+"/", "tar"); got != testBase+"/apple-universal-tar.xcframework.zip" {
		t.Errorf("RemoteURL() = %s", got)
	}

	name, ok := n.ComponentFromFileName("apple-universal-ios_system.xcframework.zip")
	if !ok || name != "ios_system" {
		t.Errorf("ComponentFromFileName() = %s, %v", name, ok)
	}

	if _, ok := n.ComponentFromFileName("apple-universal-.xcframework.zip"); ok {
		t.Error("ComponentFromFileName() should reject empty component")
	}
	if _, ok := n.ComponentFromFileName("README.md"); ok {
		t.Error("ComponentFromFileName() should reject unrelated file")
	}
}
