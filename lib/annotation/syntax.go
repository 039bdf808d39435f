// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"regexp"
	"strings"
)

// Dialect is one comment syntax of a language: a comment opener, an
// optional comment closer (empty for line comments, which close at the
// end of the physical line), and the annotation patterns built from
// them. A language may have several dialects (C-family files accept
// both "//" and "/* */" annotations).
//
// All patterns anchor at the start of the line with optional leading
// whitespace. The stub pattern captures that whitespace so the
// indentation of stub code survives into the emitted token.
type Dialect struct {
	name string

	// stubStart matches the opening of a stub comment up to and
	// including "STUB:" plus at most one following space. Replacing
	// the match with the captured indentation strips the marker while
	// keeping the stub text aligned.
	stubStart *regexp.Regexp

	// terminator matches the end of a comment in this dialect at the
	// end of a line. For line comments this is just trailing
	// whitespace (a line comment always ends with its line); for
	// block comments it includes the closing delimiter.
	terminator *regexp.Regexp

	solutionFile  *regexp.Regexp
	hiddenFile    *regexp.Regexp
	solutionBegin *regexp.Regexp
	solutionEnd   *regexp.Regexp
	hiddenBegin   *regexp.Regexp
	hiddenEnd     *regexp.Regexp
}

// newDialect builds a Dialect from regex fragments for the comment
// opener and closer. An empty closer means a line comment.
func newDialect(name, opener, closer string) *Dialect {
	prefix := `^(\s*)` + opener + `\s*`

	terminatorPattern := `\s*$`
	if closer != "" {
		terminatorPattern = `\s*` + closer + `\s*$`
	}

	return &Dialect{
		name:          name,
		stubStart:     regexp.MustCompile(prefix + `STUB:\s?`),
		terminator:    regexp.MustCompile(terminatorPattern),
		solutionFile:  regexp.MustCompile(prefix + `SOLUTION\s+FILE`),
		hiddenFile:    regexp.MustCompile(prefix + `HIDDEN\s+FILE`),
		solutionBegin: regexp.MustCompile(prefix + `BEGIN\s+SOLUTION`),
		solutionEnd:   regexp.MustCompile(prefix + `END\s+SOLUTION`),
		hiddenBegin:   regexp.MustCompile(prefix + `BEGIN\s+HIDDEN`),
		hiddenEnd:     regexp.MustCompile(prefix + `END\s+HIDDEN`),
	}
}

// Name returns the dialect's identifier, e.g. "c-line" or "xml-block".
// Useful in diagnostics and tests.
func (d *Dialect) Name() string {
	return d.name
}

// The dialect instances are shared, immutable, and safe for concurrent
// use (compiled regexes are concurrency-safe).
var (
	cLine        = newDialect("c-line", `//+`, "")
	cBlock       = newDialect("c-block", `/\*+`, `\*+/`)
	hashLine     = newDialect("hash-line", `#`, "")
	xmlBlock     = newDialect("xml-block", `<!--`, `-->`)
	haskellLine  = newDialect("haskell-line", `--`, "")
	haskellBlock = newDialect("haskell-block", `\{-`, `-\}`)
)

// dialectsByExtension maps a lowercased file extension (without the
// leading dot) to the comment dialects recognized in that file type.
// Extensions absent from the table have no dialects: their files are
// never annotated and pass through as plain text.
var dialectsByExtension = map[string][]*Dialect{
	// C family and friends: both line and block comments.
	"c":     {cLine, cBlock},
	"cc":    {cLine, cBlock},
	"cpp":   {cLine, cBlock},
	"cs":    {cLine, cBlock},
	"css":   {cLine, cBlock},
	"go":    {cLine, cBlock},
	"h":     {cLine, cBlock},
	"hpp":   {cLine, cBlock},
	"java":  {cLine, cBlock},
	"js":    {cLine, cBlock},
	"kt":    {cLine, cBlock},
	"qml":   {cLine, cBlock},
	"rs":    {cLine, cBlock},
	"scala": {cLine, cBlock},
	"swift": {cLine, cBlock},
	"ts":    {cLine, cBlock},

	// Hash line comments.
	"pl":         {hashLine},
	"properties": {hashLine},
	"py":         {hashLine},
	"r":          {hashLine},
	"rb":         {hashLine},
	"sh":         {hashLine},

	// Markup: block comments only.
	"htm":   {xmlBlock},
	"html":  {xmlBlock},
	"xhtml": {xmlBlock},
	"xml":   {xmlBlock},

	// Haskell.
	"hs": {haskellLine, haskellBlock},
}

// DialectsForExtension returns the comment dialects for a file
// extension. The extension is matched case-insensitively and may be
// given with or without the leading dot. Unknown extensions return nil.
func DialectsForExtension(extension string) []*Dialect {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	return dialectsByExtension[extension]
}
