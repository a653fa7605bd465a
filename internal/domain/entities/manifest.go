package entities

import "sort"

// Manifest represents a bundle package manifest
type Manifest struct {
	Name         string
	Version      string
	Description  string
	Platforms    []Platform
	Products     []Product
	RemoteBase   string
	Naming       Naming
	LocalMarkers []string
	Targets      []ComponentName
	Checksums    Registry
}

// Platform is a minimum deployment target (e.g. iOS 14)
type Platform struct {
	Name    string
	Version string
}

// Product is a library exposed to downstream consumers
type Product struct {
	Name    string
	Targets []ComponentName
}

// Naming holds the fixed parts of the bundle file name template
type Naming struct {
	Prefix    string // e.g. "apple-universal"
	Extension string // e.g. "xcframework.zip"
}

// HasTarget reports whether name is a declared target
func (m *Manifest) HasTarget(name ComponentName) bool {
	for _, t := range m.Targets {
		if t == name {
			return true
		}
	}
	return false
}

// Registry maps a templated bundle file name to its expected checksum.
// A Registry is never mutated during resolution.
type Registry map[string]string

// Checksum looks up the checksum stored under key
func (r Registry) Checksum(key string) (string, bool) {
	sum, ok := r[key]
	if !ok || sum == "" {
		return "", false
	}
	return sum, true
}

// Keys returns the registry keys in sorted order
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
