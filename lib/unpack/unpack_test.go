// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package unpack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/policy"
	"github.com/courseware-foundation/courseware/lib/projectfile"
)

// exerciseArchive builds a tar archive shaped like a distributed
// exercise, rooted under "ex/".
func exerciseArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	writer := archive.NewWriter(archive.Tar, true)
	if err := writer.WriteDir("ex"); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteDir("ex/src"); err != nil {
		t.Fatal(err)
	}
	for relPath, content := range files {
		if err := writer.WriteFile("ex/"+relPath, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return writer.Bytes()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestExtractProject(t *testing.T) {
	data := exerciseArchive(t, map[string]string{
		"src/Main.java":      "class Main {}\n",
		"test/MainTest.java": "class MainTest {}\n",
	})
	target := t.TempDir()

	if err := New(nil).ExtractProject(data, archive.Tar, target, Options{}); err != nil {
		t.Fatalf("ExtractProject failed: %v", err)
	}

	if got := readFile(t, filepath.Join(target, "src", "Main.java")); got != "class Main {}\n" {
		t.Errorf("Main.java content = %q", got)
	}
	if got := readFile(t, filepath.Join(target, "test", "MainTest.java")); got != "class MainTest {}\n" {
		t.Errorf("MainTest.java content = %q", got)
	}
}

func TestExtractProjectIdempotent(t *testing.T) {
	data := exerciseArchive(t, map[string]string{
		"src/Main.java": "class Main {}\n",
	})
	target := t.TempDir()
	materializer := New(nil)

	if err := materializer.ExtractProject(data, archive.Tar, target, Options{}); err != nil {
		t.Fatal(err)
	}

	// Backdate the extracted file; a rewrite would refresh its mtime.
	epoch := time.Unix(0, 0)
	extracted := filepath.Join(target, "src", "Main.java")
	if err := os.Chtimes(extracted, epoch, epoch); err != nil {
		t.Fatal(err)
	}

	if err := materializer.ExtractProject(data, archive.Tar, target, Options{}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(extracted)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(epoch) {
		t.Error("unchanged file was rewritten on second extraction")
	}
}

func TestStudentEditPreserved(t *testing.T) {
	data := exerciseArchive(t, map[string]string{
		"src/Main.java": "class Main {}\n",
	})
	target := t.TempDir()
	studentPolicy := policy.New(nil, "src")

	if err := New(nil).ExtractProject(data, archive.Tar, target, Options{Policy: studentPolicy}); err != nil {
		t.Fatal(err)
	}

	// The learner edits their file; a new exercise version arrives.
	edited := filepath.Join(target, "src", "Main.java")
	if err := os.WriteFile(edited, []byte("class Main { int mine; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	updated := exerciseArchive(t, map[string]string{
		"src/Main.java": "class Main { int theirs; }\n",
	})

	if err := New(nil).ExtractProject(updated, archive.Tar, target, Options{Policy: studentPolicy}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, edited); got != "class Main { int mine; }\n" {
		t.Errorf("student edit was overwritten: %q", got)
	}
}

func TestForceUpdateOverwritesStudentFile(t *testing.T) {
	config := &projectfile.Config{ForceUpdate: []string{"src/Config.java"}}
	forcedPolicy := policy.New(config, "src")

	data := exerciseArchive(t, map[string]string{
		"src/Config.java": "version 2\n",
	})
	target := t.TempDir()
	if err := os.MkdirAll(filepath.Join(target, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "src", "Config.java"), []byte("version 1, edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := New(nil).ExtractProject(data, archive.Tar, target, Options{Policy: forcedPolicy}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(target, "src", "Config.java")); got != "version 2\n" {
		t.Errorf("force-updated file not overwritten: %q", got)
	}
}

func TestProjectConfigAlwaysOverwritten(t *testing.T) {
	data := exerciseArchive(t, map[string]string{
		projectfile.FileName: "sandbox_image: new\n",
	})
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, projectfile.FileName), []byte("sandbox_image: old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Everything-is-student-owned would normally preserve the file.
	if err := New(nil).ExtractProject(data, archive.Tar, target, Options{Policy: policy.Everything{}}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(target, projectfile.FileName)); got != "sandbox_image: new\n" {
		t.Errorf("project config not overwritten: %q", got)
	}
}

func TestCleanDeletesStaleExerciseContent(t *testing.T) {
	studentPolicy := policy.New(nil, "src")
	target := t.TempDir()

	// Previous exercise version left a test file and a generated
	// directory; the learner also added their own source file.
	initial := exerciseArchive(t, map[string]string{
		"src/Main.java":     "class Main {}\n",
		"test/OldTest.java": "class OldTest {}\n",
	})
	if err := New(nil).ExtractProject(initial, archive.Tar, target, Options{Policy: studentPolicy}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "src", "Extra.java"), []byte("class Extra {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The new version dropped test/OldTest.java.
	updated := exerciseArchive(t, map[string]string{
		"src/Main.java": "class Main {}\n",
	})
	if err := New(nil).ExtractProject(updated, archive.Tar, target, Options{Policy: studentPolicy, Clean: true}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(target, "test", "OldTest.java")); !os.IsNotExist(err) {
		t.Error("stale exercise file survived clean extraction")
	}
	if _, err := os.Stat(filepath.Join(target, "test")); !os.IsNotExist(err) {
		t.Error("emptied directory was not pruned")
	}
	if _, err := os.Stat(filepath.Join(target, "src", "Extra.java")); err != nil {
		t.Error("student-owned extra file was deleted by clean extraction")
	}
}

func TestExtractStudentFiles(t *testing.T) {
	data := exerciseArchive(t, map[string]string{
		"src/Main.java":      "class Main {}\n",
		"test/MainTest.java": "class MainTest {}\n",
		".idea/workspace":    "ide state\n",
	})
	target := t.TempDir()

	err := New(nil).ExtractStudentFiles(data, archive.Tar, target, policy.New(nil, "src"), nil)
	if err != nil {
		t.Fatalf("ExtractStudentFiles failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(target, "src", "Main.java")); err != nil {
		t.Error("student file missing from extraction")
	}
	for _, absent := range []string{
		filepath.Join(target, "test", "MainTest.java"),
		filepath.Join(target, ".idea", "workspace"),
	} {
		if _, err := os.Stat(absent); !os.IsNotExist(err) {
			t.Errorf("non-student path %s leaked into extraction", absent)
		}
	}
}

func TestExtractProjectNoRoot(t *testing.T) {
	writer := archive.NewWriter(archive.Tar, true)
	if err := writer.WriteFile("README.md", []byte("no src\n")); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	err := New(nil).ExtractProject(writer.Bytes(), archive.Tar, t.TempDir(), Options{})
	if !errors.Is(err, archive.ErrNoProjectRoot) {
		t.Errorf("ExtractProject = %v, want ErrNoProjectRoot", err)
	}
}
