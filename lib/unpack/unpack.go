// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package unpack materializes exercise archives into working
// directories without destroying a learner's edits. Extraction is
// policy-aware: student-owned files already present in the target are
// left untouched (unless force-updated), unchanged files are never
// rewritten, and the optional clean mode resynchronizes the target by
// deleting stale non-student content the archive no longer carries.
//
// Re-running an extraction against an already-synchronized target
// performs no writes: the content-equality short circuit makes the
// operation idempotent, which the course updater relies on when it
// re-extracts every exercise on every refresh.
package unpack

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/policy"
	"github.com/courseware-foundation/courseware/lib/projectfile"
	"github.com/courseware-foundation/courseware/lib/projecttype"
)

// Materializer extracts archives into target directories.
type Materializer struct {
	logger *slog.Logger
}

// New returns a materializer. A nil logger falls back to
// slog.Default.
func New(logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{logger: logger}
}

// Options tune an extraction.
type Options struct {
	// Clean deletes target paths absent from the archive (when
	// force-updated or not student-owned) and prunes emptied
	// directories afterward.
	Clean bool

	// RootStep locates the project root inside the archive. Nil uses
	// the generic src-subtree heuristic.
	RootStep archive.RootStep

	// Policy classifies target paths. Nil detects the policy from
	// the target directory's current contents; on a first-time
	// extraction into an empty target this resolves to the
	// everything-is-student-owned policy, which is harmless because
	// no destination files exist yet.
	Policy policy.StudentFilePolicy
}

// ExtractProject extracts the archive's project into target. Files
// under the project root are written unless the destination already
// holds identical content, or the destination is a student file not
// on the force-update list. The project configuration file is always
// overwritten so a newer exercise version can retune the policy.
func (m *Materializer) ExtractProject(data []byte, format archive.Format, target string, options Options) error {
	root, err := locateRoot(data, format, options.RootStep)
	if err != nil {
		return err
	}

	filePolicy := options.Policy
	if filePolicy == nil {
		filePolicy, err = projecttype.PolicyFor(target)
		if err != nil {
			return err
		}
	}

	// Second pass over a fresh handle: archives are single-pass and
	// the root scan consumed the first one.
	opened, err := archive.Open(data, format)
	if err != nil {
		return err
	}

	// Relative paths present in the archive, for clean mode.
	present := make(map[string]bool)

	for {
		entry, err := opened.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		relPath, under := pathUnderRoot(entry.Path, root)
		if !under {
			continue
		}
		markPresent(present, relPath)

		destination := filepath.Join(target, filepath.FromSlash(relPath))

		if entry.IsDir {
			if err := os.MkdirAll(destination, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", relPath, err)
			}
			continue
		}

		incoming, err := io.ReadAll(entry.Reader)
		if err != nil {
			return fmt.Errorf("reading archive entry %s: %w", relPath, err)
		}

		write, err := shouldWrite(destination, relPath, incoming, filePolicy)
		if err != nil {
			return err
		}
		if !write {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", relPath, err)
		}
		if err := os.WriteFile(destination, incoming, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", relPath, err)
		}
		m.logger.Debug("extracted", "path", relPath)
	}

	if options.Clean {
		if err := m.clean(target, present, filePolicy); err != nil {
			return err
		}
	}
	return nil
}

// ExtractStudentFiles writes only the entries the policy classifies
// as student-owned. Used to isolate a learner's own work from an
// archive that may also contain test or IDE scaffolding.
func (m *Materializer) ExtractStudentFiles(data []byte, format archive.Format, target string, filePolicy policy.StudentFilePolicy, rootStep archive.RootStep) error {
	root, err := locateRoot(data, format, rootStep)
	if err != nil {
		return err
	}

	opened, err := archive.Open(data, format)
	if err != nil {
		return err
	}

	for {
		entry, err := opened.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		relPath, under := pathUnderRoot(entry.Path, root)
		if !under || entry.IsDir {
			continue
		}
		if !filePolicy.IsStudentFile(relPath) {
			continue
		}

		destination := filepath.Join(target, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", relPath, err)
		}
		incoming, err := io.ReadAll(entry.Reader)
		if err != nil {
			return fmt.Errorf("reading archive entry %s: %w", relPath, err)
		}
		if err := os.WriteFile(destination, incoming, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", relPath, err)
		}
		m.logger.Debug("extracted student file", "path", relPath)
	}
}

// locateRoot runs the project root scan over its own archive handle.
func locateRoot(data []byte, format archive.Format, step archive.RootStep) (string, error) {
	opened, err := archive.Open(data, format)
	if err != nil {
		return "", err
	}
	return archive.FindProjectRoot(opened, step)
}

// pathUnderRoot strips the project root prefix from an entry path.
func pathUnderRoot(entryPath, root string) (string, bool) {
	if root == "" {
		return entryPath, true
	}
	if entryPath == root {
		// The root's own directory entry maps to the target itself.
		return "", false
	}
	if strings.HasPrefix(entryPath, root+"/") {
		return entryPath[len(root)+1:], true
	}
	return "", false
}

// markPresent records a path and all its ancestors.
func markPresent(present map[string]bool, relPath string) {
	for relPath != "" && relPath != "." {
		present[relPath] = true
		relPath = path.Dir(relPath)
	}
}

// shouldWrite decides whether an incoming file replaces the
// destination. The content comparison only happens when the
// destination exists, so first-time extraction does no extra reads.
func shouldWrite(destination, relPath string, incoming []byte, filePolicy policy.StudentFilePolicy) (bool, error) {
	// The project configuration file is exempt from every
	// preservation rule.
	if relPath == projectfile.FileName {
		return true, nil
	}

	existing, err := os.ReadFile(destination)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("reading existing %s: %w", relPath, err)
	}

	if bytes.Equal(existing, incoming) {
		return false, nil
	}
	if filePolicy.IsStudentFile(relPath) && !filePolicy.IsForcedUpdate(relPath) {
		return false, nil
	}
	return true, nil
}

// clean deletes target files that the archive no longer carries,
// unless student-owned, then prunes directories the deletions
// emptied. A deletion failure aborts the whole extraction: a
// half-cleaned target is worse than a failed operation the caller can
// retry.
func (m *Materializer) clean(target string, present map[string]bool, filePolicy policy.StudentFilePolicy) error {
	var staleFiles []string
	var candidateDirs []string

	err := filepath.WalkDir(target, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		relNative, err := filepath.Rel(target, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		relPath := filepath.ToSlash(relNative)
		if relPath == "." {
			return nil
		}

		if entry.IsDir() {
			if !present[relPath] {
				candidateDirs = append(candidateDirs, path)
			}
			return nil
		}
		if present[relPath] {
			return nil
		}
		if filePolicy.IsForcedUpdate(relPath) || !filePolicy.IsStudentFile(relPath) {
			staleFiles = append(staleFiles, path)
			m.logger.Debug("deleting stale file", "path", relPath)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range staleFiles {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("deleting stale file %s: %w", path, err)
		}
	}

	// Deepest first, so nested emptied directories collapse upward.
	sort.Slice(candidateDirs, func(i, j int) bool {
		return len(candidateDirs[i]) > len(candidateDirs[j])
	})
	for _, dir := range candidateDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading directory %s: %w", dir, err)
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("pruning directory %s: %w", dir, err)
		}
	}
	return nil
}
