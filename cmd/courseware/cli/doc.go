// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree framework for the courseware
// binary: declarative command definitions with pflag flag sets,
// structured help output, typo suggestions for unknown commands and
// flags, and exit-code plumbing for commands whose non-zero exit is
// an answer rather than an error.
package cli
