// Package writer serializes an assembled package to the file system
// (SPEC_FULL.md §4.10): one directory per artifact kind, one file per
// artifact named <ResourceType>-<id>.json, written with the teacher's
// staged-write discipline (temp file, then rename into place) so a crash
// mid-write never leaves a half-written artifact behind.
package writer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/util"
)

// Writer writes a model.Package's artifacts under outDir.
type Writer struct {
	outDir string
}

// New returns a Writer rooted at outDir.
func New(outDir string) *Writer {
	return &Writer{outDir: outDir}
}

type group struct {
	dir       string
	artifacts []model.Artifact
}

// WritePackage writes every artifact in pkg and returns how many files
// were written.
func (w *Writer) WritePackage(pkg *model.Package) (int, error) {
	groups := []group{
		{"codesystems", pkg.CodeSystems},
		{"valuesets", pkg.ValueSets},
		{"extensions", pkg.Extensions},
		{"profiles", pkg.Profiles},
		{"logicals", pkg.Logicals},
		{"resources", pkg.Resources},
		{"mappings", pkg.Mappings},
	}

	count := 0
	for _, g := range groups {
		for _, a := range g.artifacts {
			if err := w.writeArtifact(g.dir, a); err != nil {
				return count, err
			}
			count++
		}
	}

	for _, a := range pkg.Instances {
		dir := filepath.Join("instances", usageDir(a.Usage))
		if err := w.writeArtifact(dir, a); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func (w *Writer) writeArtifact(dir string, a model.Artifact) error {
	data, err := json.MarshalIndent(a.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s-%s: %w", a.ResourceType, a.ID, err)
	}
	data = append(data, '\n')

	name := fmt.Sprintf("%s-%s.json", a.ResourceType, a.ID)
	path := filepath.Join(w.outDir, dir, name)
	return util.WriteFileAtomic(path, data, 0o644)
}

func usageDir(usage string) string {
	if usage == "" {
		return "example"
	}
	return strings.ToLower(usage)
}
