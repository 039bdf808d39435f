// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/courseware-foundation/courseware/cmd/courseware/cli"
	"github.com/courseware-foundation/courseware/lib/projecttype"
)

func packagingConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "packaging-config",
		Summary: "Print an exercise's packaging path configuration",
		Description: `Print an exercise's packaging path configuration.

Resolves the exercise's language family and project configuration
into the two disjoint path sets packaging operates on: student-owned
paths and exercise-owned paths. A path claimed by both sides is
reported as student-owned.`,
		Usage: "courseware packaging-config <exercise-dir>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <exercise-dir>, got %d args", len(args))
			}
			sets, err := projecttype.FileSetsFor(args[0])
			if err != nil {
				return err
			}
			fmt.Println("student_file_paths:")
			for _, path := range sortedPaths(sets.StudentFilePaths) {
				fmt.Printf("  %s\n", path)
			}
			fmt.Println("exercise_file_paths:")
			for _, path := range sortedPaths(sets.ExerciseFilePaths) {
				fmt.Printf("  %s\n", path)
			}
			return nil
		},
	}
}

func sortedPaths(set map[string]struct{}) []string {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
