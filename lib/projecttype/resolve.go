// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package projecttype

import (
	"fmt"

	"github.com/courseware-foundation/courseware/lib/policy"
	"github.com/courseware-foundation/courseware/lib/projectfile"
)

// PolicyFor loads the directory's project configuration and returns
// the student file policy of its detected language family. Directories
// with no recognized family get the everything-is-student-owned
// degenerate policy: when the project shape is unknown, preserving too
// much is strictly better than destroying a learner's work.
func PolicyFor(dir string) (policy.StudentFilePolicy, error) {
	config, err := projectfile.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	if family, ok := Detect(dir); ok {
		return family.Policy(config), nil
	}
	return policy.Everything{}, nil
}

// FileSetsFor loads the directory's project configuration and returns
// the detected family's packaging path split merged with the
// configuration's extras. Directories with no recognized family carry
// only the configured extras.
func FileSetsFor(dir string) (policy.FileSets, error) {
	config, err := projectfile.Load(dir)
	if err != nil {
		return policy.FileSets{}, fmt.Errorf("loading project config: %w", err)
	}
	if family, ok := Detect(dir); ok {
		return family.FileSets(config), nil
	}
	return policy.NewFileSets(config.ExtraStudentFiles, config.ExtraExerciseFiles), nil
}

// SandboxImageFor resolves the grading sandbox image for a project
// directory: the per-exercise override when configured, else the
// detected family's default, else the catalog default.
func SandboxImageFor(dir string) (string, error) {
	config, err := projectfile.Load(dir)
	if err != nil {
		return "", fmt.Errorf("loading project config: %w", err)
	}
	if config.SandboxImage != "" {
		return config.SandboxImage, nil
	}
	if family, ok := Detect(dir); ok {
		return family.SandboxImage(), nil
	}
	return DefaultImage(), nil
}
