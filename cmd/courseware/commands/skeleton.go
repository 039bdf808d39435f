// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/courseware-foundation/courseware/cmd/courseware/cli"
	"github.com/courseware-foundation/courseware/lib/skeleton"
)

func prepareStubsCommand() *cli.Command {
	return &cli.Command{
		Name:    "prepare-stubs",
		Summary: "Generate student stub trees from annotated exercises",
		Description: `Generate student stub trees from annotated exercises.

Walks the source tree, strips solution and hidden regions from
annotated files, and writes the resulting stubs to the target
directory. Files carrying a solution or hidden file marker are
omitted entirely.`,
		Usage: "courseware prepare-stubs <source> <target>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <source> <target>, got %d args", len(args))
			}
			return skeleton.NewFilter(logger).PrepareStubs(args[0], args[1])
		},
	}
}

func prepareSolutionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "prepare-solutions",
		Summary: "Generate model solution trees from annotated exercises",
		Description: `Generate model solution trees from annotated exercises.

Walks the source tree, strips stub and hidden regions from annotated
files, and writes the resulting solutions to the target directory.
Files carrying a hidden file marker are omitted entirely.`,
		Usage: "courseware prepare-solutions <source> <target>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <source> <target>, got %d args", len(args))
			}
			return skeleton.NewFilter(logger).PrepareSolutions(args[0], args[1])
		},
	}
}
