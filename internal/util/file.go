// Package util collects small, dependency-light helpers shared across the
// compiler: atomic file writes, content hashing, and diff rendering.
package util

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SHA1Hex calculates the SHA1 hash of a byte slice and returns it as a hex string.
func SHA1Hex(data []byte) string {
	h := sha1.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SHA1FileHex calculates the SHA1 hash of a file's content and returns it as a hex string.
func SHA1FileHex(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RaceDetected reports whether a file changed on disk between two stats of it.
func RaceDetected(before, after os.FileInfo) bool {
	return before.ModTime() != after.ModTime() || before.Size() != after.Size()
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a crash mid-write never leaves a partial artifact.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmpFile.Name(), path)
}

// UnifiedDiff renders a unified diff between two file contents for
// round-trip / idempotence checks (see SPEC_FULL.md §8).
func UnifiedDiff(from, to, path string, context int) string {
	if from == to {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}
