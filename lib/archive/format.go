// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies an archive codec.
type Format int

const (
	// Zip is a standard deflate-compressed zip archive.
	Zip Format = iota

	// Tar is an uncompressed POSIX tar archive.
	Tar

	// TarZstd is a tar archive compressed with zstd.
	TarZstd

	// TarLz4 is a tar archive compressed with lz4 frames.
	TarLz4
)

// String returns the canonical name of the format.
func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case Tar:
		return "tar"
	case TarZstd:
		return "tar.zst"
	case TarLz4:
		return "tar.lz4"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseFormat parses a format from its canonical name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "zip":
		return Zip, nil
	case "tar":
		return Tar, nil
	case "tar.zst", "tar.zstd":
		return TarZstd, nil
	case "tar.lz4":
		return TarLz4, nil
	default:
		return 0, fmt.Errorf("unknown archive format: %q", name)
	}
}

// FormatForPath guesses the format from a file name's suffix.
func FormatForPath(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return Zip, nil
	case strings.HasSuffix(path, ".tar.zst"), strings.HasSuffix(path, ".tzst"):
		return TarZstd, nil
	case strings.HasSuffix(path, ".tar.lz4"):
		return TarLz4, nil
	case strings.HasSuffix(path, ".tar"):
		return Tar, nil
	default:
		return 0, fmt.Errorf("cannot infer archive format from %q", path)
	}
}

// FormatError reports corrupt or unsupported archive data. It wraps
// the codec's underlying error.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s archive: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ErrNoProjectRoot is returned by [FindProjectRoot] when no entry
// satisfies the step function. Distinct from any I/O or format error:
// the archive was readable, it just holds no recognizable project.
var ErrNoProjectRoot = errors.New("no project root found in archive")
