// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete courseware CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/courseware-foundation/courseware/cmd/courseware/cli"
	"github.com/courseware-foundation/courseware/lib/version"
)

// Root builds and returns the complete courseware CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "courseware",
		Description: `Courseware: programming exercise packaging toolkit.

Turn annotated model solutions into student stubs and solution
listings, materialize exercise archives into working directories,
and package student submissions for the grading sandbox.`,
		Subcommands: []*cli.Command{
			prepareStubsCommand(),
			prepareSolutionsCommand(),
			extractCommand(),
			compressCommand(),
			prepareSubmissionCommand(),
			packagingConfigCommand(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Generate student stubs from an annotated exercise",
				Command:     "courseware prepare-stubs ./clone/part01-ex01 ./stubs/part01-ex01",
			},
			{
				Description: "Materialize an exercise archive into a working directory",
				Command:     "courseware extract part01-ex01.zip ./work/part01-ex01",
			},
			{
				Description: "Package a submission for grading",
				Command:     "courseware prepare-submission sub.zip ./clone/mooc/ex01 out.tar.zst",
			},
		},
	}
}

func versionCommand() *cli.Command {
	var short bool
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flags.BoolVar(&short, "short", false, "print only the version number")
			return flags
		},
		Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
			if short {
				fmt.Println(version.Short())
				return nil
			}
			fmt.Printf("courseware %s\n", version.Full())
			return nil
		},
	}
}
