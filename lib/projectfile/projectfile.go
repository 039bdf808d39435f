// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package projectfile loads the per-exercise configuration file that
// instructors place at the project root. The file tunes the student
// file policy (extra student-owned or exercise-owned paths), marks
// paths that must be overwritten on every extraction, and can override
// the sandbox image the grading server runs the submission in.
//
// The configuration is loaded once per operation and treated as
// immutable for its duration. A missing file is not an error: it loads
// as the zero configuration.
package projectfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file's name at the project root. The
// file is always overwritten on extraction regardless of student-file
// status, so a newer exercise version can retune the policy.
const FileName = ".tmcproject.yml"

// Config is the parsed project configuration.
type Config struct {
	// ExtraStudentFiles lists relative paths (files or directory
	// prefixes) that are student-owned in addition to the project
	// type's defaults.
	ExtraStudentFiles []string `yaml:"extra_student_files"`

	// ExtraExerciseFiles lists relative paths owned by the grading
	// harness even when a default or extra student path covers them.
	ExtraExerciseFiles []string `yaml:"extra_exercise_files"`

	// ForceUpdate lists relative paths overwritten on every
	// extraction even when student-owned.
	ForceUpdate []string `yaml:"force_update"`

	// SandboxImage overrides the project type's default grading
	// sandbox image.
	SandboxImage string `yaml:"sandbox_image"`
}

// Load reads the configuration from the project root. A missing file
// yields the zero configuration and no error; an unreadable or
// malformed file is an error.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading project config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing project config %s: %w", path, err)
	}
	return &config, nil
}

// IsExtraStudentFile reports whether the relative path is covered by
// the extra_student_files list.
func (c *Config) IsExtraStudentFile(relPath string) bool {
	return coveredByAny(relPath, c.ExtraStudentFiles)
}

// IsExtraExerciseFile reports whether the relative path is covered by
// the extra_exercise_files list.
func (c *Config) IsExtraExerciseFile(relPath string) bool {
	return coveredByAny(relPath, c.ExtraExerciseFiles)
}

// IsForceUpdated reports whether the relative path is covered by the
// force_update list.
func (c *Config) IsForceUpdated(relPath string) bool {
	return coveredByAny(relPath, c.ForceUpdate)
}

// coveredByAny reports whether relPath equals one of the listed paths
// or lies underneath one of them. All paths are slash-separated and
// relative to the project root; comparison is purely lexical.
func coveredByAny(relPath string, prefixes []string) bool {
	relPath = Normalize(relPath)
	for _, prefix := range prefixes {
		prefix = Normalize(prefix)
		if prefix == "" {
			continue
		}
		if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
			return true
		}
	}
	return false
}

// Normalize converts a path to the canonical relative form used for
// policy comparisons: slash-separated, cleaned, no leading "./".
func Normalize(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimSuffix(path, "/")
	return path
}
