// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package projecttype routes an exercise to its language family. Each
// family supplies the pieces the rest of the pipeline needs: default
// student paths for the file policy, a project-root locator for
// archives, and the default grading sandbox image.
//
// Detection runs the families' predicates in a fixed order, most
// specific marker first. The order is load-bearing: the Ant family
// accepts the generic src+test directory shape, which would shadow a
// Maven project (which also has src/) if it ran before the pom.xml
// check. Keep specific markers (pom.xml, Makefile, setup.py) ahead of
// shape heuristics when adding families.
package projecttype

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/policy"
	"github.com/courseware-foundation/courseware/lib/projectfile"
)

// Type describes one language family.
type Type struct {
	// Name identifies the family ("maven", "ant", ...). It is also
	// the key into the sandbox image catalog.
	Name string

	// StudentPaths are the family's default student-owned paths,
	// relative to the project root.
	StudentPaths []string

	// ExercisePaths are the paths owned by the grading harness. Used
	// when packaging needs the explicit split (lib/policy.FileSets).
	ExercisePaths []string

	// markerFiles are file names whose presence at a directory's top
	// level identifies the family. Empty for shape-based families.
	markerFiles []string

	// matches overrides marker-file detection when set.
	matches func(dir string) bool
}

// Matches reports whether the directory holds a project of this type.
func (t *Type) Matches(dir string) bool {
	if t.matches != nil {
		return t.matches(dir)
	}
	for _, marker := range t.markerFiles {
		if fileExists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

// Policy returns the family's student file policy bound to a project
// configuration.
func (t *Type) Policy(config *projectfile.Config) policy.StudentFilePolicy {
	return policy.New(config, t.StudentPaths...)
}

// FileSets returns the family's packaging-time student/exercise path
// split merged with the configuration's extra lists. A nil config is
// treated as the zero configuration.
func (t *Type) FileSets(config *projectfile.Config) policy.FileSets {
	if config == nil {
		config = &projectfile.Config{}
	}
	student := append(append([]string{}, t.StudentPaths...), config.ExtraStudentFiles...)
	exercise := append(append([]string{}, t.ExercisePaths...), config.ExtraExerciseFiles...)
	return policy.NewFileSets(student, exercise)
}

// RootStep returns the archive project-root locator for this family:
// the first entry matching one of the family's marker files wins, with
// the generic src heuristic as fallback for shape-based families.
func (t *Type) RootStep() archive.RootStep {
	if len(t.markerFiles) == 0 {
		return archive.DefaultRootStep
	}
	return func(entry *archive.Entry) (string, bool) {
		if entry.IsDir {
			return "", false
		}
		base := path.Base(entry.Path)
		for _, marker := range t.markerFiles {
			if base == marker && !strings.Contains(entry.Path, "__MACOSX") {
				dir := path.Dir(entry.Path)
				if dir == "." {
					// Marker at the archive's top level. The empty
					// string is the canonical top-level root.
					dir = ""
				}
				return dir, true
			}
		}
		return "", false
	}
}

// SandboxImage returns the family's default grading sandbox image.
func (t *Type) SandboxImage() string {
	return imageForFamily(t.Name)
}

// types is the detection order. Most specific marker first; shape
// heuristics last (see the package comment).
var types = []*Type{
	{
		Name:          "maven",
		StudentPaths:  []string{"src/main"},
		ExercisePaths: []string{"src/test", "pom.xml"},
		markerFiles:   []string{"pom.xml"},
	},
	{
		Name:          "make",
		StudentPaths:  []string{"src"},
		ExercisePaths: []string{"test", "Makefile"},
		markerFiles:   []string{"Makefile"},
	},
	{
		Name:          "python",
		StudentPaths:  []string{"src"},
		ExercisePaths: []string{"test", "tmc"},
		markerFiles:   []string{"setup.py", "requirements.txt", "pyproject.toml"},
	},
	{
		Name:          "ant",
		StudentPaths:  []string{"src"},
		ExercisePaths: []string{"test", "lib", "build.xml"},
		matches: func(dir string) bool {
			if fileExists(filepath.Join(dir, "build.xml")) {
				return true
			}
			// Generic Java shape: src and test side by side.
			return dirExists(filepath.Join(dir, "src")) && dirExists(filepath.Join(dir, "test"))
		},
	},
}

// Detect routes a project directory to its language family. The
// second return is false when no family matches; callers typically
// fall back to a degenerate policy (policy.Everything) and
// [DefaultImage].
func Detect(dir string) (*Type, bool) {
	for _, candidate := range types {
		if candidate.Matches(dir) {
			return candidate, true
		}
	}
	return nil, false
}

// All returns the families in detection order. Exposed for the outer
// course-orchestration layer and for tests.
func All() []*Type {
	return types
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
