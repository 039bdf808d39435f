// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/courseware-foundation/courseware/cmd/courseware/cli"
	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/unpack"
)

func extractCommand() *cli.Command {
	var (
		formatName string
		clean      bool
	)
	return &cli.Command{
		Name:    "extract",
		Summary: "Materialize an exercise archive into a directory",
		Description: `Materialize an exercise archive into a directory.

Locates the project root inside the archive and extracts it into the
target, preserving the student's local edits: a file the project
type's policy classifies as student-owned is never overwritten unless
the exercise forces the update. With --clean, files absent from the
archive that are not student-owned are deleted and emptied
directories pruned.`,
		Usage: "courseware extract <archive> <target> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flags.StringVar(&formatName, "format", "", "archive format (zip, tar, tar.zst, tar.lz4); inferred from the file name when empty")
			flags.BoolVar(&clean, "clean", false, "delete stale non-student files absent from the archive")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <archive> <target>, got %d args", len(args))
			}
			archivePath, target := args[0], args[1]

			format, err := resolveFormat(formatName, archivePath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(archivePath)
			if err != nil {
				return fmt.Errorf("reading archive: %w", err)
			}
			return unpack.New(logger).ExtractProject(data, format, target, unpack.Options{Clean: clean})
		},
	}
}

// resolveFormat picks the archive format from an explicit flag value,
// falling back to the file name's extension.
func resolveFormat(flagValue, path string) (archive.Format, error) {
	if flagValue != "" {
		return archive.ParseFormat(flagValue)
	}
	return archive.FormatForPath(path)
}
