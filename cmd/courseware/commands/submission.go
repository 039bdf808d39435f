// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/courseware-foundation/courseware/cmd/courseware/cli"
	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/submission"
)

func prepareSubmissionCommand() *cli.Command {
	var (
		stubPath   string
		naive      bool
		noPrefix   bool
		paramPairs []string
	)
	return &cli.Command{
		Name:    "prepare-submission",
		Summary: "Package a student submission for the grading sandbox",
		Description: `Package a student submission for the grading sandbox.

Builds a working tree from the canonical exercise (the clone, or a
stub archive given with --stub), overlays the student's submitted
work, and serializes the result. Entry paths are prefixed with
<course>/<exercise> derived from the clone path unless --no-prefix is
given. The resolved sandbox image is printed to stdout.`,
		Usage: "courseware prepare-submission <submission> <clone> <output> [flags]",
		Examples: []cli.Example{
			{
				Description: "Package with sandbox parameters",
				Command:     "courseware prepare-submission sub.zip ./clone/mooc/ex01 out.tar.zst --param mode=exam --param locales=fi,en",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("prepare-submission", pflag.ContinueOnError)
			flags.StringVar(&stubPath, "stub", "", "stub archive to use as the base layer instead of copying the clone")
			flags.BoolVar(&naive, "naive", false, "overlay every submission entry instead of only student-owned paths")
			flags.BoolVar(&noPrefix, "no-prefix", false, "omit the course/exercise entry path prefix")
			flags.StringArrayVar(&paramPairs, "param", nil, "sandbox parameter KEY=VALUE; a comma-separated value becomes an array")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 3 {
				return fmt.Errorf("expected <submission> <clone> <output>, got %d args", len(args))
			}
			submissionPath, clonePath, outputPath := args[0], args[1], args[2]

			params, err := parseParams(paramPairs)
			if err != nil {
				return err
			}

			submissionFormat, err := archive.FormatForPath(submissionPath)
			if err != nil {
				return err
			}
			outputFormat, err := archive.FormatForPath(outputPath)
			if err != nil {
				return err
			}
			submissionData, err := os.ReadFile(submissionPath)
			if err != nil {
				return fmt.Errorf("reading submission: %w", err)
			}

			input := submission.Input{
				Submission:       submissionData,
				SubmissionFormat: submissionFormat,
				NaiveExtract:     naive,
				OutputPath:       outputPath,
				OutputFormat:     outputFormat,
				NoPrefix:         noPrefix,
				Params:           params,
				ClonePath:        clonePath,
			}
			if stubPath != "" {
				stubFormat, err := archive.FormatForPath(stubPath)
				if err != nil {
					return err
				}
				stubData, err := os.ReadFile(stubPath)
				if err != nil {
					return fmt.Errorf("reading stub archive: %w", err)
				}
				input.Stub = stubData
				input.StubFormat = stubFormat
			}

			result, err := submission.New(logger).PrepareSubmission(input)
			if err != nil {
				return err
			}
			fmt.Println(result.SandboxImage)
			return nil
		},
	}
}

// parseParams converts repeated KEY=VALUE flags into sandbox
// parameters. A value containing commas becomes an array parameter.
func parseParams(pairs []string) (*submission.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	var params submission.Params
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed --param %q: expected KEY=VALUE", pair)
		}
		if strings.Contains(value, ",") {
			if err := params.SetArray(key, strings.Split(value, ",")); err != nil {
				return nil, err
			}
			continue
		}
		if err := params.SetString(key, value); err != nil {
			return nil, err
		}
	}
	return &params, nil
}
