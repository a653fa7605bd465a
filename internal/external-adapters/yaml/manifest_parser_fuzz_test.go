package yaml

import (
	"testing"
)

// FuzzManifestParser tests the YAML parser against random/malformed inputs
// to detect crashes, panics, or unexpected behavior.
//
// Run with: go test -fuzz=FuzzManifestParser -fuzztime=30s
func FuzzManifestParser(f *testing.F) {
	f.Add(DefaultManifest())
	f.Add([]byte(validManifest))

	f.Add([]byte(``))
	f.Add([]byte(`name: ""` + "\n"))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte("targets: [a, a]\n"))
	f.Add([]byte("checksums: [not, a, map]\n"))
	f.Add([]byte("name: x\nremote_base: \"://\"\n"))

	parser := NewManifestParser()

	f.Fuzz(func(t *testing.T, data []byte) {
		m, err := parser.Parse(data)
		if err != nil {
			return
		}
		// Anything accepted must be usable by the resolver
		if m.Name == "" || len(m.Targets) == 0 || m.Checksums == nil {
			t.Errorf("Parse() accepted an incomplete manifest: %+v", m)
		}
	})
}
