// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package skeleton reconstructs the two distributable forms of an
// instructor's annotated exercise tree: the model solution and the
// student stub. It walks the source tree, runs annotated text files
// through lib/annotation, and keeps or drops lines by token kind.
//
// The walk excludes instructor-only content before any file is read:
// dot-directories, directories opting out with a .tmcignore marker,
// names on the deny list, and "Hidden"-named files directly inside a
// test directory. Binary files are copied verbatim; the annotation
// language only exists inside text files.
package skeleton

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/courseware-foundation/courseware/lib/annotation"
)

// IgnoreMarker is the opt-out marker file name. A directory containing
// one at its top level is excluded, descendants included, from both
// skeleton generation and policy-driven compression.
const IgnoreMarker = ".tmcignore"

// Mode selects which distributable form to build.
type Mode int

const (
	// ModeSolution keeps Text and Solution lines and skips files
	// flagged HIDDEN FILE.
	ModeSolution Mode = iota

	// ModeStub keeps Text and Stub lines and skips files flagged
	// SOLUTION FILE or HIDDEN FILE.
	ModeStub
)

// String returns the mode's name.
func (m Mode) String() string {
	if m == ModeSolution {
		return "solution"
	}
	return "stub"
}

// denyList is the fixed set of names excluded from every distributable
// form, whether they appear as files or directories.
var denyList = map[string]bool{
	"private":      true,
	"hidden_tests": true,
}

// binaryExtensions lists file types that are byte-copied without
// annotation parsing: archives, images, bytecode, databases. Files
// with no extension at all are treated the same way.
var binaryExtensions = map[string]bool{
	"7z": true, "gz": true, "jar": true, "lz4": true, "rar": true,
	"tar": true, "tgz": true, "zip": true, "zst": true,
	"bmp": true, "gif": true, "ico": true, "jpeg": true, "jpg": true,
	"pdf": true, "png": true,
	"a": true, "bin": true, "class": true, "dll": true, "exe": true,
	"o": true, "pyc": true, "so": true,
	"db": true, "sqlite": true, "sqlite3": true,
}

// Filter builds solution or stub trees from an annotated source tree.
type Filter struct {
	logger *slog.Logger
}

// NewFilter returns a filter. A nil logger falls back to
// slog.Default.
func NewFilter(logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{logger: logger}
}

// PrepareSolutions materializes the model-solution form of source
// into target.
func (f *Filter) PrepareSolutions(source, target string) error {
	return f.prepare(source, target, ModeSolution)
}

// PrepareStubs materializes the student-stub form of source into
// target.
func (f *Filter) PrepareStubs(source, target string) error {
	return f.prepare(source, target, ModeStub)
}

func (f *Filter) prepare(source, target string, mode Mode) error {
	return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}

		relPath, err := filepath.Rel(source, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		if relPath == "." {
			return nil
		}

		name := entry.Name()

		if entry.IsDir() {
			if excluded, reason := f.excludeDir(path, name); excluded {
				f.logger.Debug("skipping directory", "path", relPath, "reason", reason)
				return filepath.SkipDir
			}
			if err := os.MkdirAll(filepath.Join(target, relPath), 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", relPath, err)
			}
			return nil
		}

		if f.excludeFile(path, name) {
			f.logger.Debug("skipping file", "path", relPath)
			return nil
		}

		return f.writeFiltered(path, filepath.Join(target, relPath), mode)
	})
}

// excludeDir applies the directory exclusion rules.
func (f *Filter) excludeDir(path, name string) (bool, string) {
	if strings.HasPrefix(name, ".") {
		return true, "hidden directory"
	}
	if denyList[name] {
		return true, "deny list"
	}
	if f.ContainsIgnoreMarker(path) {
		return true, IgnoreMarker
	}
	return false, ""
}

// excludeFile applies the file exclusion rules: deny-listed names,
// the ignore marker itself, and "Hidden" files directly inside a
// directory named test.
func (f *Filter) excludeFile(path, name string) bool {
	if denyList[name] || name == IgnoreMarker {
		return true
	}
	if strings.Contains(name, "Hidden") && filepath.Base(filepath.Dir(path)) == "test" {
		return true
	}
	return false
}

// ContainsIgnoreMarker reports whether dir opts out of traversal with
// a top-level ignore marker. A stat failure other than absence is
// logged and treated as "no marker" so one unreadable entry does not
// abort a whole tree walk.
func (f *Filter) ContainsIgnoreMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, IgnoreMarker))
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		f.logger.Warn("cannot check ignore marker", "dir", dir, "error", err)
	}
	return false
}

// writeFiltered produces the output form of one file.
func (f *Filter) writeFiltered(sourcePath, targetPath string, mode Mode) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourcePath, err)
	}

	if isBinaryName(filepath.Base(sourcePath)) {
		return writeFile(targetPath, data)
	}

	content, skip, err := FilterContent(data, filepath.Ext(sourcePath), mode)
	if err != nil {
		return fmt.Errorf("filtering %s: %w", sourcePath, err)
	}
	if skip {
		return nil
	}
	return writeFile(targetPath, content)
}

// FilterContent runs one text file's bytes through the annotation
// parser and keeps the lines the mode allows. The skip return is true
// when a whole-file marker excludes the file from this form entirely.
func FilterContent(data []byte, extension string, mode Mode) (content []byte, skip bool, err error) {
	tokens, err := annotation.ParseAll(strings.NewReader(string(data)), extension)
	if err != nil {
		return nil, false, err
	}

	var output strings.Builder
	for _, token := range tokens {
		switch token.Kind {
		case annotation.HiddenFileMarker:
			return nil, true, nil
		case annotation.SolutionFileMarker:
			if mode == ModeStub {
				return nil, true, nil
			}
		case annotation.Text:
			output.WriteString(token.Text)
		case annotation.Solution:
			if mode == ModeSolution {
				output.WriteString(token.Text)
			}
		case annotation.Stub:
			if mode == ModeStub {
				output.WriteString(token.Text)
			}
		case annotation.Hidden:
			// Dropped from every distributable form.
		}
	}
	return []byte(output.String()), false, nil
}

// isBinaryName reports whether the file is byte-copied instead of
// parsed: a binary-indicating extension, or no extension at all.
func isBinaryName(name string) bool {
	extension := strings.TrimPrefix(filepath.Ext(name), ".")
	if extension == "" {
		return true
	}
	return binaryExtensions[strings.ToLower(extension)]
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
