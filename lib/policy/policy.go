// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy answers the single most consequential question in the
// exercise pipeline: does this path belong to the learner or to the
// grading harness? Extraction preserves student-owned paths across
// updates, compression can restrict an archive to student-owned paths,
// and submission packaging uses the answer to keep test scaffolding
// out of a student's submission overlay.
//
// A policy combines a project type's default student paths with the
// per-exercise configuration (lib/projectfile): a path is student-owned
// when it lies under a default student path or is listed in
// extra_student_files, unless extra_exercise_files excludes it.
//
// Two degenerate policies exist for archives with no recognized
// project type: [Everything] treats every path as student-owned and
// [Nothing] treats none.
package policy

import (
	"strings"

	"github.com/courseware-foundation/courseware/lib/projectfile"
)

// StudentFilePolicy decides path ownership for a single project. Paths
// are slash-separated and relative to the project root. Implementations
// are read-only for the duration of an operation.
type StudentFilePolicy interface {
	// IsStudentFile reports whether the path is owned by the learner
	// and must survive re-extraction.
	IsStudentFile(relPath string) bool

	// IsForcedUpdate reports whether the path is overwritten on every
	// extraction even when student-owned.
	IsForcedUpdate(relPath string) bool
}

// Policy is the standard implementation parameterized by a project
// type's default student paths and the project configuration.
type Policy struct {
	defaultStudentPaths []string
	config              *projectfile.Config
}

// New builds a policy. A nil config is treated as the zero
// configuration.
func New(config *projectfile.Config, defaultStudentPaths ...string) *Policy {
	if config == nil {
		config = &projectfile.Config{}
	}
	return &Policy{
		defaultStudentPaths: defaultStudentPaths,
		config:              config,
	}
}

// IsStudentFile implements [StudentFilePolicy]. Exclusion via
// extra_exercise_files wins over both default paths and
// extra_student_files.
func (p *Policy) IsStudentFile(relPath string) bool {
	relPath = projectfile.Normalize(relPath)

	if p.config.IsExtraExerciseFile(relPath) {
		return false
	}
	if p.config.IsExtraStudentFile(relPath) {
		return true
	}
	for _, defaultPath := range p.defaultStudentPaths {
		defaultPath = projectfile.Normalize(defaultPath)
		if relPath == defaultPath || strings.HasPrefix(relPath, defaultPath+"/") {
			return true
		}
	}
	return false
}

// IsForcedUpdate implements [StudentFilePolicy].
func (p *Policy) IsForcedUpdate(relPath string) bool {
	return p.config.IsForceUpdated(relPath)
}

// Everything is the degenerate policy that treats every path as
// student-owned. Used for archives with no recognized project type,
// where destroying anything would be worse than preserving too much.
type Everything struct{}

func (Everything) IsStudentFile(string) bool  { return true }
func (Everything) IsForcedUpdate(string) bool { return false }

// Nothing is the degenerate policy that treats no path as
// student-owned. Every path is safe to overwrite or delete.
type Nothing struct{}

func (Nothing) IsStudentFile(string) bool  { return false }
func (Nothing) IsForcedUpdate(string) bool { return false }
