// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive provides a uniform reader and writer over the
// archive formats the exercise pipeline consumes and produces: zip,
// tar, zstd-compressed tar, and lz4-compressed tar.
//
// Reading is a single forward pass: [Open] a byte slice, then call
// [Archive.Next] until [io.EOF]. Entries expose a relative path, a
// directory flag, and a content reader valid until the next entry.
// Re-iterating means reopening — archive handles carry no rewind
// support.
//
// [FindProjectRoot] locates the exercise's top-level directory inside
// an archive without materializing any files. The step function is
// supplied by the project type (or [DefaultRootStep] for the generic
// "first directory with a src subtree" heuristic). The returned root
// is a logical cursor into the entry paths: it is not guaranteed to
// have a directory entry of its own.
//
// Writing goes through [Writer]. Directory entries carry an explicit
// trailing separator and every entry carries 0o755 permission bits;
// downstream consumers of produced archives rely on both. Compressed
// tar output is built as an uncompressed tar in memory and compressed
// in one pass on Close.
package archive
