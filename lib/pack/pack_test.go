// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/policy"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		full := filepath.Join(root, relPath)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func entryPaths(t *testing.T, data []byte, format archive.Format) map[string]bool {
	t.Helper()
	opened, err := archive.Open(data, format)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	paths := make(map[string]bool)
	for {
		entry, err := opened.Next()
		if err == io.EOF {
			return paths
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		paths[entry.Path] = entry.IsDir
	}
}

func TestCompressNaive(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/Main.java":      "class Main {}\n",
		"test/MainTest.java": "class MainTest {}\n",
	})

	result, err := New(nil).Compress(dir, Options{Format: archive.Zip})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	paths := entryPaths(t, result.Data, archive.Zip)
	for _, want := range []string{"src", "src/Main.java", "test", "test/MainTest.java"} {
		if _, ok := paths[want]; !ok {
			t.Errorf("archive lacks %s", want)
		}
	}
}

func TestCompressPolicyDriven(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/Main.java":      "class Main {}\n",
		"test/MainTest.java": "class MainTest {}\n",
	})

	result, err := New(nil).Compress(dir, Options{
		Format: archive.Tar,
		Policy: policy.New(nil, "src"),
	})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	paths := entryPaths(t, result.Data, archive.Tar)
	if _, ok := paths["src/Main.java"]; !ok {
		t.Error("student file missing from policy-driven archive")
	}
	if _, ok := paths["test/MainTest.java"]; ok {
		t.Error("non-student file leaked into policy-driven archive")
	}
	if _, ok := paths["test"]; ok {
		t.Error("non-student directory leaked into policy-driven archive")
	}
}

func TestCompressDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/Main.java": "class Main {}\n",
		"src/Util.java": "class Util {}\n",
		"notes.md":      "remember\n",
	})

	for _, format := range []archive.Format{archive.Zip, archive.Tar, archive.TarZstd, archive.TarLz4} {
		t.Run(format.String(), func(t *testing.T) {
			first, err := New(nil).Compress(dir, Options{Format: format, Deterministic: true, Hash: true})
			if err != nil {
				t.Fatal(err)
			}
			second, err := New(nil).Compress(dir, Options{Format: format, Deterministic: true, Hash: true})
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(first.Data, second.Data) {
				t.Error("deterministic compression produced differing bytes")
			}
			if first.Digest == "" || first.Digest != second.Digest {
				t.Errorf("digest mismatch: %q vs %q", first.Digest, second.Digest)
			}
		})
	}
}

func TestCompressHonorsIgnoreMarker(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/Main.java":      "class Main {}\n",
		"scratch/.tmcignore": "",
		"scratch/wip.java":   "class Wip {}\n",
	})

	result, err := New(nil).Compress(dir, Options{Format: archive.Tar})
	if err != nil {
		t.Fatal(err)
	}

	paths := entryPaths(t, result.Data, archive.Tar)
	if _, ok := paths["scratch/wip.java"]; ok {
		t.Error("ignore-marked directory leaked into archive")
	}
	if _, ok := paths["src/Main.java"]; !ok {
		t.Error("regular file missing")
	}
}

func TestCompressWithPrefix(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/Main.java": "class Main {}\n",
	})

	result, err := New(nil).Compress(dir, Options{
		Format:        archive.Tar,
		Deterministic: true,
		Prefix:        "course/ex1",
	})
	if err != nil {
		t.Fatal(err)
	}

	paths := entryPaths(t, result.Data, archive.Tar)
	for _, want := range []string{"course", "course/ex1", "course/ex1/src", "course/ex1/src/Main.java"} {
		if _, ok := paths[want]; !ok {
			t.Errorf("archive lacks prefixed entry %s", want)
		}
	}
}
