// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// WriteTree materializes files under root. Keys are slash-separated
// relative paths; parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		full := filepath.Join(root, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// ReadTree walks root and returns every file's content keyed by
// slash-separated relative path. Directories themselves are not
// recorded.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		data, err := os.ReadFile(current)
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, current)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(relPath)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("reading tree under %s: %v", root, err)
	}
	return files
}
