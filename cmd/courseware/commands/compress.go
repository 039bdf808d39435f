// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/courseware-foundation/courseware/cmd/courseware/cli"
	"github.com/courseware-foundation/courseware/lib/pack"
	"github.com/courseware-foundation/courseware/lib/projecttype"
)

func compressCommand() *cli.Command {
	var (
		formatName    string
		deterministic bool
		studentOnly   bool
		printDigest   bool
	)
	return &cli.Command{
		Name:    "compress",
		Summary: "Serialize a project directory into an archive",
		Description: `Serialize a project directory into an archive.

By default the whole tree is archived, minus directories opting out
with a top-level ignore marker. With --student-only, only paths the
project type's student file policy selects are included. With
--deterministic, entry order is fixed and timestamps zeroed so an
unchanged tree compresses to byte-identical output.`,
		Usage: "courseware compress <dir> <output> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("compress", pflag.ContinueOnError)
			flags.StringVar(&formatName, "format", "", "archive format (zip, tar, tar.zst, tar.lz4); inferred from the output name when empty")
			flags.BoolVar(&deterministic, "deterministic", true, "fix entry order and zero timestamps")
			flags.BoolVar(&studentOnly, "student-only", false, "include only student-owned paths")
			flags.BoolVar(&printDigest, "digest", false, "print the archive's BLAKE3 digest to stdout")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <dir> <output>, got %d args", len(args))
			}
			dir, output := args[0], args[1]

			format, err := resolveFormat(formatName, output)
			if err != nil {
				return err
			}

			options := pack.Options{
				Format:        format,
				Deterministic: deterministic,
				Hash:          printDigest,
			}
			if studentOnly {
				filePolicy, err := projecttype.PolicyFor(dir)
				if err != nil {
					return err
				}
				options.Policy = filePolicy
			}

			result, err := pack.New(logger).Compress(dir, options)
			if err != nil {
				return err
			}
			if parent := filepath.Dir(output); parent != "." {
				if err := os.MkdirAll(parent, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := os.WriteFile(output, result.Data, 0o644); err != nil {
				return fmt.Errorf("writing archive: %w", err)
			}
			if printDigest {
				fmt.Println(result.Digest)
			}
			return nil
		},
	}
}
