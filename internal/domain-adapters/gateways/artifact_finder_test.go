package gateways

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

func TestArtifactFinder_DetectMode(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		dirs      []string
		wantLocal bool
	}{
		{name: "empty root", wantLocal: false},
		{name: "unrelated files", files: []string{"README.md", "Package.swift", "manifest.yml"}, wantLocal: false},
		{name: "bundle archive", files: []string{"apple-universal-shell.xcframework.zip"}, wantLocal: true},
		{name: "unpacked bundle", dirs: []string{"shell.xcframework"}, wantLocal: true},
		{name: "marker inside name only", files: []string{"apple-universal-shell.xcframework.zip.bak"}, wantLocal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, name := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0600))
			}
			for _, name := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(root, name), 0750))
			}

			mode := NewArtifactFinder(nil, nil).DetectMode(context.Background(), root)
			assert.Equal(t, tt.wantLocal, mode.Local)
			if tt.wantLocal {
				assert.NotEmpty(t, mode.Marker)
			}
		})
	}
}

func TestArtifactFinder_DetectMode_UnreadableRoot(t *testing.T) {
	mode := NewArtifactFinder(nil, nil).DetectMode(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, entities.RemoteMode(), mode)
}

func TestArtifactFinder_DetectMode_CustomMarkers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "apple-universal-awk.xcframework.zip"), []byte("x"), 0600))

	finder := NewArtifactFinder([]string{".bundle"}, nil)
	assert.False(t, finder.DetectMode(context.Background(), root).Local)
}

func TestArtifactFinder_FindLocalBundles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "apple-universal-shell.xcframework.zip"), []byte("x"), 0600))

	present, missing := NewArtifactFinder(nil, nil).FindLocalBundles(root, []string{
		"apple-universal-awk.xcframework.zip",
		"apple-universal-shell.xcframework.zip",
	})

	assert.Equal(t, []string{"apple-universal-shell.xcframework.zip"}, present)
	assert.Equal(t, []string{"apple-universal-awk.xcframework.zip"}, missing)
}

func TestArtifactFinder_FindByGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"apple-universal-tar.xcframework.zip",
		"apple-universal-awk.xcframework.zip",
		"other-awk.xcframework.zip",
		"apple-universal-awk.tar.gz",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	matches, err := NewArtifactFinder(nil, nil).FindByGlob(dir, entities.Naming{Prefix: "apple-universal", Extension: "xcframework.zip"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "apple-universal-awk.xcframework.zip"),
		filepath.Join(dir, "apple-universal-tar.xcframework.zip"),
	}, matches)
}
