// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import "github.com/courseware-foundation/courseware/lib/projectfile"

// FileSets is the packaging-time split of an exercise's paths into
// student-owned and exercise-owned sets. The two sets are disjoint:
// any path present in both inputs is removed from the exercise set
// during construction, so a path can never be claimed by both sides.
type FileSets struct {
	StudentFilePaths  map[string]struct{}
	ExerciseFilePaths map[string]struct{}
}

// NewFileSets builds disjoint file sets from raw path lists. Paths are
// normalized; duplicates collapse.
func NewFileSets(studentPaths, exercisePaths []string) FileSets {
	sets := FileSets{
		StudentFilePaths:  make(map[string]struct{}, len(studentPaths)),
		ExerciseFilePaths: make(map[string]struct{}, len(exercisePaths)),
	}
	for _, path := range studentPaths {
		sets.StudentFilePaths[projectfile.Normalize(path)] = struct{}{}
	}
	for _, path := range exercisePaths {
		normalized := projectfile.Normalize(path)
		if _, taken := sets.StudentFilePaths[normalized]; taken {
			continue
		}
		sets.ExerciseFilePaths[normalized] = struct{}{}
	}
	return sets
}
