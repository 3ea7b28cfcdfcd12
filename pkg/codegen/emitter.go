// Package codegen renders a flattened HRTF table into C++ constant-data
// artifacts: a header declaring the array shapes and a source file
// defining the literal values.
//
// Rendering is strict: a template that references a context name the
// emitter did not supply fails the run instead of substituting an empty
// value. Output is deterministic, so equal tables yield byte-identical
// artifacts.
package codegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"hrtf-gen/pkg/hrtfdata"
)

// Artifacts holds the two rendered outputs of a generation run.
type Artifacts struct {
	// Header declares the impulse-array and elevation-table shapes.
	Header []byte
	// Source defines both symbols with literal values.
	Source []byte
}

// Render produces the header and source artifacts for a flattened table.
// The template context exposes exactly the table's shape constants, the
// pre-formatted impulse rows, and the elevation descriptors.
func Render(table *hrtfdata.Table) (*Artifacts, error) {
	rows := make([]string, len(table.Impulses))
	for i, impulse := range table.Impulses {
		rows[i] = joinSamples(impulse)
	}

	ctx := map[string]any{
		"impulse_length": table.ImpulseLength,
		"total_impulses": table.TotalImpulses,
		"num_elevs":      len(table.Elevations),
		"impulses":       rows,
		"elevations":     table.Elevations,
	}

	header, err := render("header", headerTemplate, ctx)
	if err != nil {
		return nil, err
	}

	source, err := render("source", sourceTemplate, ctx)
	if err != nil {
		return nil, err
	}

	return &Artifacts{Header: header, Source: source}, nil
}

// Write stores both artifacts at the given paths, creating parent
// directories as needed and overwriting existing files. The first failure
// aborts; there is no partial-write recovery.
func (a *Artifacts) Write(headerPath, sourcePath string) error {
	outputs := []struct {
		path    string
		content []byte
	}{
		{headerPath, a.Header},
		{sourcePath, a.Source},
	}

	for _, out := range outputs {
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		if err := os.WriteFile(out.path, out.content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out.path, err)
		}
	}

	return nil
}

// render executes one template against the context with strict-undefined
// semantics: missing context names are errors, never empty substitutions.
func render(name, text string, ctx map[string]any) ([]byte, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{"formatFloat": formatFloat}).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", name, err)
	}

	return buf.Bytes(), nil
}

// joinSamples formats one impulse as comma-joined float literals using the
// shortest representation that round-trips through float32.
func joinSamples(impulse []float32) string {
	var sb strings.Builder
	for i, sample := range impulse {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(strconv.FormatFloat(float64(sample), 'g', -1, 32))
	}

	return sb.String()
}

// formatFloat renders an elevation angle as a float64 literal.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
