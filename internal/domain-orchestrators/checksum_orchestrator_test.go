package orchestrators

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

type mockManifestRepository struct {
	manifest *entities.Manifest
	err      error
	saved    entities.Registry
	saveErr  error
}

func (m *mockManifestRepository) LoadManifest(_ context.Context) (*entities.Manifest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.manifest, nil
}

func (m *mockManifestRepository) SaveChecksums(_ context.Context, checksums entities.Registry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = checksums
	return nil
}

// mockChecksum derives a fake checksum from the file name
type mockChecksum struct{}

func (m *mockChecksum) VerifyChecksum(_ context.Context, _, _ string) error { return nil }

func (m *mockChecksum) CalculateChecksum(filePath string) (string, error) {
	return "sum-of-" + filepath.Base(filePath), nil
}

func bundleDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func smallManifest() *entities.Manifest {
	return &entities.Manifest{
		Name:    "ios_system",
		Naming:  entities.Naming{Prefix: "apple-universal", Extension: "xcframework.zip"},
		Targets: []entities.ComponentName{"awk", "shell"},
	}
}

func TestChecksumOrchestrator_Compute(t *testing.T) {
	dir := bundleDir(t, "apple-universal-awk.xcframework.zip", "apple-universal-shell.xcframework.zip", "unrelated.zip")
	orch := NewChecksumOrchestrator(&mockManifestRepository{manifest: smallManifest()}, &mockChecksum{})

	registry, err := orch.Compute(context.Background(), dir)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if len(registry) != 2 {
		t.Fatalf("Compute() returned %d entries, want 2: %v", len(registry), registry)
	}
	if registry["apple-universal-awk.xcframework.zip"] != "sum-of-apple-universal-awk.xcframework.zip" {
		t.Errorf("awk checksum = %q", registry["apple-universal-awk.xcframework.zip"])
	}
}

func TestChecksumOrchestrator_Compute_MissingBundles(t *testing.T) {
	orch := NewChecksumOrchestrator(&mockManifestRepository{manifest: smallManifest()}, &mockChecksum{})

	_, err := orch.Compute(context.Background(), bundleDir(t))
	if err == nil {
		t.Fatal("Compute() should fail when bundles are missing")
	}
	for _, name := range []string{"apple-universal-awk.xcframework.zip", "apple-universal-shell.xcframework.zip"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should name %s", err, name)
		}
	}
}

func TestChecksumOrchestrator_Update(t *testing.T) {
	dir := bundleDir(t, "apple-universal-awk.xcframework.zip", "apple-universal-shell.xcframework.zip")
	repo := &mockManifestRepository{manifest: smallManifest()}

	registry, err := NewChecksumOrchestrator(repo, &mockChecksum{}).Update(context.Background(), dir)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(repo.saved) != 2 || len(registry) != 2 {
		t.Errorf("saved = %v", repo.saved)
	}
}

func TestChecksumOrchestrator_Update_SaveFails(t *testing.T) {
	dir := bundleDir(t, "apple-universal-awk.xcframework.zip", "apple-universal-shell.xcframework.zip")
	repo := &mockManifestRepository{manifest: smallManifest(), saveErr: errors.New("read-only")}

	if _, err := NewChecksumOrchestrator(repo, &mockChecksum{}).Update(context.Background(), dir); err == nil {
		t.Error("Update() should surface save errors")
	}
}

func TestChecksumOrchestrator_LoadFails(t *testing.T) {
	repo := &mockManifestRepository{err: errors.New("manifest not found")}

	if _, err := NewChecksumOrchestrator(repo, &mockChecksum{}).Compute(context.Background(), t.TempDir()); err == nil {
		t.Error("Compute() should fail when the manifest cannot be loaded")
	}
}
