// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package annotation implements the exercise annotation language used to
// maintain a single instructor source tree that materializes into both a
// model solution and a student stub.
//
// Instructors mark up ordinary source files with comments:
//
//	// BEGIN SOLUTION
//	return accumulate(values);
//	// END SOLUTION
//	// STUB: return 0;
//
// The parser classifies every physical line of a file into a token stream:
// plain text, solution code, stub code, hidden code, or a whole-file
// marker. Downstream filters (lib/skeleton) keep or drop tokens by kind to
// reconstruct the solution-only or stub-only form of the file.
//
// Classification is driven by the file's comment syntax. The extension
// table in this package maps a file extension to the comment dialects the
// language supports (line comments, block comments, or both). Files with
// an unknown extension have no dialects, so every line parses as plain
// text and the file passes through unmodified.
//
// A parser is a single-pass iterator over one file: construct it with
// [NewParser], drain it with [Parser.Next] until [io.EOF]. Exhausted
// parsers are not reusable; re-parsing means constructing a new parser
// over a fresh reader. The token count is bounded by the number of input
// lines, so iteration always terminates.
package annotation
