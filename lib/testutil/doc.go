// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for courseware
// packages.
//
// [WriteTree] materializes a map of relative paths to file contents
// under a root directory, creating parents as needed. [ReadTree] is
// its inverse: it walks a directory and returns every file keyed by
// slash-separated relative path. Together they let tests state
// fixture trees and expected output trees as literals and compare
// them with go-cmp.
//
// All helpers call t.Fatal on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no courseware-internal dependencies.
package testutil
