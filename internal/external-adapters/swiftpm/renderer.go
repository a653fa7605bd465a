// Package swiftpm renders a bundle manifest as a SwiftPM Package.swift.
package swiftpm

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

const toolsVersion = "5.3"

const packageTemplate = `// swift-tools-version:{{ .ToolsVersion }}
// Generated by iosystem ({{ .Mode }} mode). Do not edit.

import PackageDescription

let package = Package(
    name: {{ quote .Name }},
{{- if .Platforms }}
    platforms: [
{{- range $i, $p := .Platforms }}{{ if $i }},{{ end }}
        {{ $p }}
{{- end }}
    ],
{{- end }}
    products: [
{{- range $i, $p := .Products }}{{ if $i }},{{ end }}
        .library(
            name: {{ quote $p.Name }},
            targets: [{{ quoteList $p.Targets }}]
        )
{{- end }}
    ],
    dependencies: [],
    targets: [
{{- range $i, $t := .Targets }}{{ if $i }},{{ end }}
        {{ $t }}
{{- end }}
    ]
)
`

// Renderer turns resolved bundle records into a Package.swift
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a Package.swift renderer
func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"quote": swiftString,
		"quoteList": func(names []entities.ComponentName) string {
			quoted := make([]string, len(names))
			for i, n := range names {
				quoted[i] = swiftString(string(n))
			}
			return strings.Join(quoted, ", ")
		},
	}
	return &Renderer{
		tmpl: template.Must(template.New("Package.swift").Funcs(funcs).Parse(packageTemplate)),
	}
}

type packageData struct {
	ToolsVersion string
	Mode         string
	Name         string
	Platforms    []string
	Products     []entities.Product
	Targets      []string
}

// Render produces Package.swift for the manifest. resolutions must come
// from Resolver.ResolveAll for the same manifest and mode.
func (r *Renderer) Render(manifest *entities.Manifest, mode entities.ResolutionMode, resolutions []entities.Resolution) ([]byte, error) {
	if len(resolutions) == 0 {
		return nil, fmt.Errorf("no targets to render")
	}

	data := packageData{
		ToolsVersion: toolsVersion,
		Mode:         mode.String(),
		Name:         manifest.Name,
		Products:     manifest.Products,
	}

	for _, p := range manifest.Platforms {
		platform, err := platformCall(p)
		if err != nil {
			return nil, err
		}
		data.Platforms = append(data.Platforms, platform)
	}

	for _, res := range resolutions {
		target, err := binaryTarget(res)
		if err != nil {
			return nil, err
		}
		data.Targets = append(data.Targets, target)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render Package.swift: %w", err)
	}
	return buf.Bytes(), nil
}

func binaryTarget(res entities.Resolution) (string, error) {
	name := swiftString(string(res.Component))
	switch {
	case res.Record.IsLocal():
		return fmt.Sprintf(".binaryTarget(name: %s, path: %s)", name, swiftString(res.Record.Path)), nil
	case res.Record.IsRemote():
		return fmt.Sprintf(".binaryTarget(name: %s, url: %s, checksum: %s)",
			name, swiftString(res.Record.URL), swiftString(res.Record.Checksum)), nil
	default:
		return "", fmt.Errorf("invalid record for %s: %s", res.Component, res.Record)
	}
}

// platformCall maps {iOS, 14} to ".iOS(.v14)" and {macOS, 10.15} to ".macOS(.v10_15)"
func platformCall(p entities.Platform) (string, error) {
	if p.Name == "" || p.Version == "" {
		return "", fmt.Errorf("invalid platform %q version %q", p.Name, p.Version)
	}
	for _, part := range strings.Split(p.Version, ".") {
		if _, err := strconv.Atoi(part); err != nil {
			return "", fmt.Errorf("invalid %s version %q", p.Name, p.Version)
		}
	}
	return fmt.Sprintf(".%s(.v%s)", p.Name, strings.ReplaceAll(p.Version, ".", "_")), nil
}

func swiftString(s string) string {
	return strconv.Quote(s)
}
