// Package entities defines core domain models and data structures.
package entities

import "fmt"

// ComponentName names one binary artifact bundle (e.g. "awk", "curl_ios")
type ComponentName string

// RecordKind discriminates the two ArtifactRecord variants
type RecordKind string

// Artifact record variants
const (
	RecordLocal  RecordKind = "local"
	RecordRemote RecordKind = "remote"
)

// ArtifactRecord is the resolved location of one bundle.
// Exactly one variant is populated: Path for local records, URL and
// Checksum for remote records. Use NewLocalRecord / NewRemoteRecord.
type ArtifactRecord struct {
	Kind     RecordKind `json:"kind"`
	Path     string     `json:"path,omitempty"`
	URL      string     `json:"url,omitempty"`
	Checksum string     `json:"checksum,omitempty"`
}

// NewLocalRecord creates a record pointing at a file relative to the project root
func NewLocalRecord(path string) ArtifactRecord {
	return ArtifactRecord{Kind: RecordLocal, Path: path}
}

// NewRemoteRecord creates a record pointing at a remote URL with its expected checksum
func NewRemoteRecord(url, checksum string) ArtifactRecord {
	return ArtifactRecord{Kind: RecordRemote, URL: url, Checksum: checksum}
}

// IsLocal reports whether the record references a local file
func (r ArtifactRecord) IsLocal() bool {
	return r.Kind == RecordLocal
}

// IsRemote reports whether the record references a remote URL
func (r ArtifactRecord) IsRemote() bool {
	return r.Kind == RecordRemote
}

func (r ArtifactRecord) String() string {
	switch r.Kind {
	case RecordLocal:
		return fmt.Sprintf("Local{path: %s}", r.Path)
	case RecordRemote:
		return fmt.Sprintf("Remote{url: %s, checksum: %s}", r.URL, r.Checksum)
	default:
		return "Invalid{}"
	}
}

// Resolution pairs a component with its resolved record
type Resolution struct {
	Component ComponentName  `json:"component"`
	Record    ArtifactRecord `json:"record"`
}

// ResolutionMode is the local-vs-remote signal computed once per manifest load.
// It is a plain value and is passed to every resolution call.
type ResolutionMode struct {
	Local bool
	// Marker is the directory entry that switched local mode on, if any
	Marker string
}

// LocalMode returns a mode that resolves every component locally
func LocalMode(marker string) ResolutionMode {
	return ResolutionMode{Local: true, Marker: marker}
}

// RemoteMode returns a mode that resolves every component remotely
func RemoteMode() ResolutionMode {
	return ResolutionMode{}
}

func (m ResolutionMode) String() string {
	if m.Local {
		return "local"
	}
	return "remote"
}

// Artifact represents a bundle that was materialised on disk by a fetch
type Artifact struct {
	Component ComponentName
	Record    ArtifactRecord
	Path      string // Absolute path of the bundle archive on disk
	Extracted string // Directory the archive was unpacked to, if requested
	Size      int64
	Verified  bool // Checksum was checked against the registry
}
