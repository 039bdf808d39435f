// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// Entry is one archive member as seen during iteration. Path is
// slash-separated and relative, with no trailing separator. Reader
// streams the file content and is valid only until the next call to
// [Archive.Next]; it is nil for directories.
type Entry struct {
	Path   string
	IsDir  bool
	Size   int64
	Reader io.Reader
}

// Archive is an open handle over archive bytes. It is a single-pass
// forward iterator; reopening is the only way to iterate again.
type Archive struct {
	format Format

	// zip iteration state.
	zipFiles []*zip.File
	zipIndex int
	openFile io.ReadCloser

	// tar iteration state (Tar, TarZstd, and TarLz4 all end up here;
	// compressed variants are decompressed fully on Open).
	tarReader *tar.Reader
}

// Open prepares an archive handle over data. Compressed tar formats
// are decompressed in one pass up front; corrupt input fails here or,
// for plain tar, on the first [Archive.Next] call.
func Open(data []byte, format Format) (*Archive, error) {
	switch format {
	case Zip:
		reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, &FormatError{Format: Zip, Err: err}
		}
		return &Archive{format: Zip, zipFiles: reader.File}, nil

	case Tar:
		return &Archive{format: Tar, tarReader: tar.NewReader(bytes.NewReader(data))}, nil

	case TarZstd:
		decompressed, err := decompressZstd(data)
		if err != nil {
			return nil, &FormatError{Format: TarZstd, Err: err}
		}
		return &Archive{format: TarZstd, tarReader: tar.NewReader(bytes.NewReader(decompressed))}, nil

	case TarLz4:
		decompressed, err := decompressLz4(data)
		if err != nil {
			return nil, &FormatError{Format: TarLz4, Err: err}
		}
		return &Archive{format: TarLz4, tarReader: tar.NewReader(bytes.NewReader(decompressed))}, nil

	default:
		return nil, fmt.Errorf("unsupported archive format: %v", format)
	}
}

// Next advances to the next entry. It returns io.EOF when the archive
// is exhausted and a [FormatError] on corrupt data. Non-regular
// members other than directories (symlinks, devices) are skipped.
func (a *Archive) Next() (*Entry, error) {
	if a.openFile != nil {
		a.openFile.Close()
		a.openFile = nil
	}

	if a.tarReader != nil {
		return a.nextTar()
	}
	return a.nextZip()
}

func (a *Archive) nextTar() (*Entry, error) {
	for {
		header, err := a.tarReader.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &FormatError{Format: a.format, Err: err}
		}

		entryPath, err := cleanEntryPath(header.Name)
		if err != nil {
			return nil, &FormatError{Format: a.format, Err: err}
		}
		if entryPath == "" {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			return &Entry{Path: entryPath, IsDir: true}, nil
		case tar.TypeReg:
			return &Entry{Path: entryPath, Size: header.Size, Reader: a.tarReader}, nil
		default:
			continue
		}
	}
}

func (a *Archive) nextZip() (*Entry, error) {
	for a.zipIndex < len(a.zipFiles) {
		file := a.zipFiles[a.zipIndex]
		a.zipIndex++

		entryPath, err := cleanEntryPath(file.Name)
		if err != nil {
			return nil, &FormatError{Format: Zip, Err: err}
		}
		if entryPath == "" {
			continue
		}

		if strings.HasSuffix(file.Name, "/") || file.FileInfo().IsDir() {
			return &Entry{Path: entryPath, IsDir: true}, nil
		}

		reader, err := file.Open()
		if err != nil {
			return nil, &FormatError{Format: Zip, Err: err}
		}
		a.openFile = reader
		return &Entry{
			Path:   entryPath,
			Size:   int64(file.UncompressedSize64),
			Reader: reader,
		}, nil
	}
	return nil, io.EOF
}

// cleanEntryPath normalizes an archive member name to a clean relative
// slash path. Empty, root, and current-directory names normalize to
// "". Names escaping the archive root are rejected.
func cleanEntryPath(name string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "/"))
	if cleaned == "." || cleaned == "" {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("entry path escapes archive root: %q", name)
	}
	return cleaned, nil
}

// RootStep examines one entry during project root location. It
// returns the project root path and true to stop scanning, or false
// to continue.
type RootStep func(entry *Entry) (string, bool)

// FindProjectRoot scans the archive until step locates the project
// root. It consumes the handle (the scan is the handle's single
// forward pass). Returns [ErrNoProjectRoot] when the archive is
// exhausted without a hit.
func FindProjectRoot(a *Archive, step RootStep) (string, error) {
	if step == nil {
		step = DefaultRootStep
	}
	for {
		entry, err := a.Next()
		if err == io.EOF {
			return "", ErrNoProjectRoot
		}
		if err != nil {
			return "", err
		}
		if root, found := step(entry); found {
			return root, nil
		}
	}
}

// DefaultRootStep is the generic project root heuristic: the first
// directory containing a "src" subtree. macOS resource-fork litter is
// ignored. The empty string is a valid root (src at the archive's top
// level).
func DefaultRootStep(entry *Entry) (string, bool) {
	components := strings.Split(entry.Path, "/")
	for i, component := range components {
		if component == "__MACOSX" {
			return "", false
		}
		if component == "src" {
			// A file named "src" is not a source tree.
			if i == len(components)-1 && !entry.IsDir {
				return "", false
			}
			return path.Join(components[:i]...), true
		}
	}
	return "", false
}
