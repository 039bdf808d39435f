// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package pack serializes exercise directories into archives. Two
// selection modes exist: naive (the whole tree, minus directories
// opting out with the ignore marker) and policy-driven (only paths the
// student file policy selects, used when a learner's work travels to
// the grading server without harness scaffolding).
//
// Deterministic mode fixes entry order and zeroes timestamps so that
// compressing an unchanged tree is byte-identical across runs. The
// course updater hashes produced archives for change detection, so
// spurious byte differences would look like content changes. The
// optional digest is BLAKE3 over the finished archive bytes.
package pack

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/policy"
	"github.com/courseware-foundation/courseware/lib/skeleton"
)

// Compressor serializes directories into archives.
type Compressor struct {
	logger *slog.Logger
}

// New returns a compressor. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Compressor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{logger: logger}
}

// Options tune a compression.
type Options struct {
	// Format selects the output codec.
	Format archive.Format

	// Deterministic fixes entry ordering and zeroes timestamps.
	Deterministic bool

	// Policy restricts the archive to student-owned paths. Nil
	// serializes the whole tree.
	Policy policy.StudentFilePolicy

	// Prefix is prepended to every entry path (slash-separated, no
	// trailing separator). The submission packager uses
	// "<course>/<exercise>".
	Prefix string

	// Hash computes a BLAKE3 digest of the archive bytes.
	Hash bool
}

// Result is a finished archive.
type Result struct {
	// Data is the archive bytes.
	Data []byte

	// Digest is the hex BLAKE3 digest of Data; empty unless
	// Options.Hash was set.
	Digest string
}

// Compress serializes dir into an archive.
func (c *Compressor) Compress(dir string, options Options) (*Result, error) {
	files, dirs, err := c.collect(dir, options.Policy)
	if err != nil {
		return nil, err
	}

	if options.Deterministic {
		sort.Strings(files)
		sort.Strings(dirs)
	}

	writer := archive.NewWriter(options.Format, options.Deterministic)

	if options.Prefix != "" {
		// Emit the prefix chain itself so consumers that require
		// explicit directory entries see every level.
		for _, prefixDir := range prefixChain(options.Prefix) {
			if err := writer.WriteDir(prefixDir); err != nil {
				return nil, err
			}
		}
	}

	for _, relPath := range dirs {
		if err := writer.WriteDir(joinPrefix(options.Prefix, relPath)); err != nil {
			return nil, err
		}
	}
	for _, relPath := range files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(relPath)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", relPath, err)
		}
		if err := writer.WriteFile(joinPrefix(options.Prefix, relPath), data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	result := &Result{Data: writer.Bytes()}
	if options.Hash {
		digest := blake3.Sum256(result.Data)
		result.Digest = hex.EncodeToString(digest[:])
	}
	c.logger.Debug("compressed directory",
		"dir", dir, "format", options.Format.String(),
		"entries", len(files)+len(dirs), "bytes", len(result.Data))
	return result, nil
}

// collect walks the tree and returns the relative file and directory
// paths to serialize. Directories carrying the ignore marker are
// excluded with their descendants; in policy mode, only directories
// that lead to a selected file (or are selected themselves) survive.
func (c *Compressor) collect(dir string, filePolicy policy.StudentFilePolicy) (files, dirs []string, err error) {
	ignoreFilter := skeleton.NewFilter(c.logger)
	dirSet := make(map[string]bool)

	err = filepath.WalkDir(dir, func(walkPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", walkPath, err)
		}
		relNative, err := filepath.Rel(dir, walkPath)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", walkPath, err)
		}
		relPath := filepath.ToSlash(relNative)
		if relPath == "." {
			return nil
		}

		if entry.IsDir() {
			if ignoreFilter.ContainsIgnoreMarker(walkPath) {
				return filepath.SkipDir
			}
			if filePolicy == nil || filePolicy.IsStudentFile(relPath) {
				dirSet[relPath] = true
			}
			return nil
		}

		if entry.Name() == skeleton.IgnoreMarker {
			return nil
		}
		if filePolicy != nil && !filePolicy.IsStudentFile(relPath) {
			return nil
		}
		files = append(files, relPath)
		// Every ancestor directory must exist in the archive.
		for parent := path.Dir(relPath); parent != "." && parent != ""; parent = path.Dir(parent) {
			dirSet[parent] = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for relPath := range dirSet {
		dirs = append(dirs, relPath)
	}
	return files, dirs, nil
}

// prefixChain expands "a/b/c" into ["a", "a/b", "a/b/c"].
func prefixChain(prefix string) []string {
	var chain []string
	current := ""
	for _, component := range strings.Split(prefix, "/") {
		if component == "" {
			continue
		}
		current = joinPrefix(current, component)
		chain = append(chain, current)
	}
	return chain
}

func joinPrefix(prefix, relPath string) string {
	if prefix == "" {
		return relPath
	}
	if relPath == "" {
		return prefix
	}
	return prefix + "/" + relPath
}
