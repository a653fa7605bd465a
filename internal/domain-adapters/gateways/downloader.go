package gateways

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/iosystem/internal/domain/entities"
	"github.com/ochairo/iosystem/internal/domain/interfaces"
)

// maxExtractedFileSize caps a single unpacked file (decompression bombs)
const maxExtractedFileSize int64 = 1 << 30

// Downloader fetches resolved bundles and verifies them against the registry
type Downloader struct {
	httpClient  *http.Client
	projectRoot string
	userAgent   string
	registry    entities.Registry
	maxFileSize int64
	logger      interfaces.Logger
}

// DownloaderOption configures a Downloader
type DownloaderOption func(*Downloader)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.httpClient = c }
}

// WithRegistry sets the checksums local bundles are verified against
func WithRegistry(r entities.Registry) DownloaderOption {
	return func(d *Downloader) { d.registry = r }
}

// WithLogger sets the logger
func WithLogger(l interfaces.Logger) DownloaderOption {
	return func(d *Downloader) { d.logger = l }
}

// NewDownloader creates a new downloader; local records are looked up in projectRoot
func NewDownloader(projectRoot string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for large bundles
		},
		projectRoot: projectRoot,
		userAgent:   "iosystem/1.0",
		maxFileSize: maxExtractedFileSize,
		logger:      &interfaces.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch materialises a record. Remote records are downloaded into outputDir
// and verified while streaming; local records are located under the project root.
func (d *Downloader) Fetch(ctx context.Context, component entities.ComponentName, record entities.ArtifactRecord, outputDir string) (*entities.Artifact, error) {
	switch record.Kind {
	case entities.RecordLocal:
		return d.locate(ctx, component, record)
	case entities.RecordRemote:
		return d.download(ctx, component, record, outputDir)
	default:
		return nil, fmt.Errorf("component %s: invalid record kind %q", component, record.Kind)
	}
}

func (d *Downloader) locate(ctx context.Context, component entities.ComponentName, record entities.ArtifactRecord) (*entities.Artifact, error) {
	localPath := filepath.Join(d.projectRoot, record.Path)

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("local bundle for %s not found: %w", component, err)
	}

	absPath, err := filepath.Abs(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", localPath, err)
	}

	artifact := &entities.Artifact{
		Component: component,
		Record:    record,
		Path:      absPath,
		Size:      info.Size(),
	}

	// Same lookup order as the resolver: templated file name, then bare name
	sum, ok := d.registry.Checksum(record.Path)
	if !ok {
		sum, ok = d.registry.Checksum(string(component))
	}
	if !ok {
		d.logger.Debug("no checksum registered for local bundle",
			interfaces.F("component", component), interfaces.F("path", record.Path))
		return artifact, nil
	}
	if info.IsDir() {
		return nil, fmt.Errorf("local bundle for %s is a directory, expected the %s archive", component, record.Path)
	}

	if err := NewChecksumVerifier().VerifyChecksum(ctx, localPath, sum); err != nil {
		return nil, fmt.Errorf("local bundle for %s failed verification: %w", component, err)
	}
	artifact.Verified = true

	return artifact, nil
}

func (d *Downloader) download(ctx context.Context, component entities.ComponentName, record entities.ArtifactRecord, outputDir string) (*entities.Artifact, error) {
	expected, err := ParseChecksum(record.Checksum)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", component, err)
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := sanitizeFilename(record.URL)
	outputPath := filepath.Join(outputDir, filename)
	partPath := filepath.Join(outputDir, fmt.Sprintf(".%s.%s.part", filename, uuid.NewString()))

	written, err := d.downloadFile(ctx, record.URL, partPath, expected.Verifier())
	if err != nil {
		_ = os.Remove(partPath)
		return nil, fmt.Errorf("download of %s failed: %w", component, err)
	}

	if err := os.Rename(partPath, outputPath); err != nil {
		_ = os.Remove(partPath)
		return nil, fmt.Errorf("failed to move bundle into place: %w", err)
	}

	d.logger.Info("downloaded bundle",
		interfaces.F("component", component),
		interfaces.F("file", filename),
		interfaces.F("bytes", written))

	return &entities.Artifact{
		Component: component,
		Record:    record,
		Path:      outputPath,
		Size:      written,
		Verified:  true,
	}, nil
}

// digestWriter is satisfied by go-digest verifiers
type digestWriter interface {
	io.Writer
	Verified() bool
}

// downloadFile streams rawURL to dest, feeding the verifier on the way
func (d *Downloader) downloadFile(ctx context.Context, rawURL, dest string, verifier digestWriter) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	//nolint:gosec // G304: dest is built from the output directory and a sanitized name
	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, copyErr := io.Copy(out, io.TeeReader(resp.Body, verifier))
	if err := errors.Join(copyErr, out.Close()); err != nil {
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if !verifier.Verified() {
		return written, errors.New("checksum mismatch")
	}

	return written, nil
}

var invalidFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeFilename derives a safe local file name from a URL
func sanitizeFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}

	name = invalidFilenameChars.ReplaceAllString(name, "_")
	if strings.Trim(name, "._") == "" {
		return "download"
	}
	return name
}

// Extract unpacks a bundle archive into destDir
func (d *Downloader) Extract(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)

	// Symlinks are created after all regular files exist
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	for _, file := range zr.File {
		//nolint:gosec // G305: Path traversal validated by HasPrefix check below
		target := filepath.Join(destDir, file.Name)
		if !strings.HasPrefix(filepath.Clean(target)+string(os.PathSeparator), cleanDest) {
			return fmt.Errorf("invalid file path in archive: %s", file.Name)
		}

		mode := file.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case mode&os.ModeSymlink != 0:
			linkname, err := readZipEntry(file, 4096)
			if err != nil {
				return fmt.Errorf("failed to read symlink %s: %w", file.Name, err)
			}
			if !withinDir(cleanDest, filepath.Dir(target), string(linkname)) {
				return fmt.Errorf("symlink %s points outside the destination: %s", file.Name, linkname)
			}
			symlinks = append(symlinks, symlinkInfo{target: target, linkname: string(linkname)})

		default:
			if err := extractZipFile(file, target, d.maxFileSize); err != nil {
				return err
			}
		}
	}

	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			d.logger.Warn("failed to create symlink",
				interfaces.F("target", link.target),
				interfaces.F("link", link.linkname),
				interfaces.F("error", err))
		}
	}

	d.logger.Debug("extracted bundle", interfaces.F("archive", archivePath), interfaces.F("dest", destDir))
	return nil
}

// withinDir reports whether linkname, resolved from linkDir, stays under cleanDest
func withinDir(cleanDest, linkDir, linkname string) bool {
	if linkname == "" || filepath.IsAbs(linkname) {
		return false
	}
	resolved := filepath.Clean(filepath.Join(linkDir, linkname)) + string(os.PathSeparator)
	return strings.HasPrefix(resolved, cleanDest)
}

func extractZipFile(file *zip.File, target string, limit int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if file.UncompressedSize64 > uint64(limit) {
		return fmt.Errorf("archive entry %s exceeds %d bytes", file.Name, limit)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	//nolint:errcheck // Defer close on archive entry
	defer rc.Close()

	//nolint:gosec // G304: target validated against destination directory
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode().Perm()|0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	// The header size can lie; read one byte past the cap to detect that
	written, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if err == nil && written > limit {
		err = fmt.Errorf("archive entry %s exceeds %d bytes", file.Name, limit)
	}
	if err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func readZipEntry(file *zip.File, limit int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on archive entry
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit))
}
