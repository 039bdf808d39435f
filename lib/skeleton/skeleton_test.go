// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package skeleton

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/courseware-foundation/courseware/lib/annotation"
	"github.com/courseware-foundation/courseware/lib/testutil"
)

const annotatedJava = `public class Counter {
    public int next() {
        // BEGIN SOLUTION
        return current++;
        // END SOLUTION
        // STUB: return 0;
    }
    // BEGIN HIDDEN
    int cheat() { return 42; }
    // END HIDDEN
}
`

func TestPrepareStubs(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	testutil.WriteTree(t, source, map[string]string{
		"src/Counter.java": annotatedJava,
	})

	if err := NewFilter(nil).PrepareStubs(source, target); err != nil {
		t.Fatalf("PrepareStubs failed: %v", err)
	}

	got := testutil.ReadTree(t, target)["src/Counter.java"]
	want := `public class Counter {
    public int next() {
        return 0;
    }
}
`
	if got != want {
		t.Errorf("stub output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrepareSolutions(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	testutil.WriteTree(t, source, map[string]string{
		"src/Counter.java": annotatedJava,
	})

	if err := NewFilter(nil).PrepareSolutions(source, target); err != nil {
		t.Fatalf("PrepareSolutions failed: %v", err)
	}

	got := testutil.ReadTree(t, target)["src/Counter.java"]
	want := `public class Counter {
    public int next() {
        return current++;
    }
}
`
	if got != want {
		t.Errorf("solution output:\n%s\nwant:\n%s", got, want)
	}
}

// Reparsing filtered output must never surface tokens of the kinds the
// mode dropped.
func TestFilteredOutputReparses(t *testing.T) {
	source := t.TempDir()
	testutil.WriteTree(t, source, map[string]string{
		"src/Counter.java": annotatedJava,
		"src/util.py":      "# BEGIN HIDDEN\nsecret = 1\n# END HIDDEN\n# STUB: pass\nvalue = 2\n",
	})

	tests := []struct {
		mode      Mode
		forbidden []annotation.Kind
	}{
		{ModeSolution, []annotation.Kind{annotation.Stub, annotation.Hidden}},
		{ModeStub, []annotation.Kind{annotation.Solution, annotation.Hidden}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			target := t.TempDir()
			var err error
			if tt.mode == ModeSolution {
				err = NewFilter(nil).PrepareSolutions(source, target)
			} else {
				err = NewFilter(nil).PrepareStubs(source, target)
			}
			if err != nil {
				t.Fatalf("prepare failed: %v", err)
			}

			for relPath, content := range testutil.ReadTree(t, target) {
				tokens, err := annotation.ParseAll(strings.NewReader(content), filepath.Ext(relPath))
				if err != nil {
					t.Fatalf("reparsing %s: %v", relPath, err)
				}
				for _, token := range tokens {
					for _, forbidden := range tt.forbidden {
						if token.Kind == forbidden {
							t.Errorf("%s: found %v token in %v output: %q",
								relPath, token.Kind, tt.mode, token.Text)
						}
					}
				}
			}
		})
	}
}

func TestWholeFileMarkers(t *testing.T) {
	source := t.TempDir()
	testutil.WriteTree(t, source, map[string]string{
		"src/Model.java":  "// SOLUTION FILE\nclass Model {}\n",
		"src/Secret.java": "// HIDDEN FILE\nclass Secret {}\n",
		"src/Plain.java":  "class Plain {}\n",
	})

	solutionTarget := t.TempDir()
	if err := NewFilter(nil).PrepareSolutions(source, solutionTarget); err != nil {
		t.Fatal(err)
	}
	solution := testutil.ReadTree(t, solutionTarget)
	if _, ok := solution["src/Model.java"]; !ok {
		t.Error("SOLUTION FILE should remain in solution output")
	}
	if _, ok := solution["src/Secret.java"]; ok {
		t.Error("HIDDEN FILE must not appear in solution output")
	}

	stubTarget := t.TempDir()
	if err := NewFilter(nil).PrepareStubs(source, stubTarget); err != nil {
		t.Fatal(err)
	}
	stub := testutil.ReadTree(t, stubTarget)
	if _, ok := stub["src/Model.java"]; ok {
		t.Error("SOLUTION FILE must not appear in stub output")
	}
	if _, ok := stub["src/Secret.java"]; ok {
		t.Error("HIDDEN FILE must not appear in stub output")
	}
	if _, ok := stub["src/Plain.java"]; !ok {
		t.Error("plain file should remain in stub output")
	}
}

func TestExclusions(t *testing.T) {
	source := t.TempDir()
	testutil.WriteTree(t, source, map[string]string{
		"src/Main.java":            "class Main {}\n",
		".git/config":              "[core]\n",
		"private/answers.txt":      "42\n",
		"scratch/.tmcignore":       "",
		"scratch/draft.java":       "class Draft {}\n",
		"test/HiddenEdgeTest.java": "class HiddenEdgeTest {}\n",
		"test/VisibleTest.java":    "class VisibleTest {}\n",
		"nested/test/HiddenT.java": "class HiddenT {}\n",
		"nested/test/Regular.java": "class Regular {}\n",
		"assets/logo.png":          "\x89PNG not really",
		"src/data.bin":             "\x00\x01\x02",
	})

	for _, mode := range []Mode{ModeSolution, ModeStub} {
		t.Run(mode.String(), func(t *testing.T) {
			target := t.TempDir()
			var err error
			if mode == ModeSolution {
				err = NewFilter(nil).PrepareSolutions(source, target)
			} else {
				err = NewFilter(nil).PrepareStubs(source, target)
			}
			if err != nil {
				t.Fatalf("prepare failed: %v", err)
			}
			got := testutil.ReadTree(t, target)

			for _, absent := range []string{
				".git/config",
				"private/answers.txt",
				"scratch/draft.java",
				"scratch/.tmcignore",
				"test/HiddenEdgeTest.java",
				"nested/test/HiddenT.java",
			} {
				if _, ok := got[absent]; ok {
					t.Errorf("%s should be excluded", absent)
				}
			}
			for _, present := range []string{
				"src/Main.java",
				"test/VisibleTest.java",
				"nested/test/Regular.java",
			} {
				if _, ok := got[present]; !ok {
					t.Errorf("%s should be present", present)
				}
			}

			// Binary files pass through byte-identical.
			if got["assets/logo.png"] != "\x89PNG not really" {
				t.Error("png not copied verbatim")
			}
			if got["src/data.bin"] != "\x00\x01\x02" {
				t.Error("bin not copied verbatim")
			}
		})
	}
}

func TestIsBinaryName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"archive.jar", true},
		{"Makefile", true}, // no extension
		{"photo.JPG", true},
		{"Main.java", false},
		{"script.py", false},
	}
	for _, tt := range tests {
		if got := isBinaryName(tt.name); got != tt.want {
			t.Errorf("isBinaryName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
