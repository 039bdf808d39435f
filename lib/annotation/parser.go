// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Kind classifies a parsed line.
type Kind int

const (
	// Text is a plain line outside any annotation.
	Text Kind = iota

	// Stub is placeholder code shown to students in place of the
	// solution.
	Stub

	// Solution is model-answer code, stripped before distribution.
	Solution

	// Hidden is content excluded from both solution and stub output.
	Hidden

	// SolutionFileMarker flags the whole file as solution-only.
	SolutionFileMarker

	// HiddenFileMarker flags the whole file as excluded from all
	// distributed forms.
	HiddenFileMarker
)

// String returns the kind's name for diagnostics and test output.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Stub:
		return "stub"
	case Solution:
		return "solution"
	case Hidden:
		return "hidden"
	case SolutionFileMarker:
		return "solution-file-marker"
	case HiddenFileMarker:
		return "hidden-file-marker"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Token is one classified line of input. Text-carrying kinds preserve
// the line terminator; the marker kinds carry no text and contribute no
// bytes to any output.
type Token struct {
	Kind Kind
	Text string
}

// Parser classifies the lines of a single file. It is a single-pass
// iterator: call [Parser.Next] until it returns [io.EOF]. A parser
// whose input is exhausted stays exhausted; parse again by building a
// new parser over a fresh reader.
type Parser struct {
	reader   *bufio.Reader
	dialects []*Dialect

	// stub is the dialect whose comment opened the current stub
	// block, or nil outside a stub. Remembering the dialect means a
	// terminator from a different dialect cannot close the block.
	stub     *Dialect
	solution bool
	hidden   bool

	done bool
}

// NewParser returns a parser over r using the comment dialects for the
// given file extension (with or without leading dot). An unknown
// extension yields a parser that classifies every line as [Text].
func NewParser(r io.Reader, extension string) *Parser {
	return &Parser{
		reader:   bufio.NewReader(r),
		dialects: DialectsForExtension(extension),
	}
}

// Next returns the next token. It returns io.EOF when the input is
// exhausted, and wraps any underlying read error. Lines that only
// toggle parser state (block begin/end markers, empty stub openers)
// produce no token; Next keeps reading until it has one.
func (p *Parser) Next() (Token, error) {
	for {
		if p.done {
			return Token{}, io.EOF
		}

		line, err := p.reader.ReadString('\n')
		switch {
		case err == io.EOF:
			p.done = true
			if line == "" {
				return Token{}, io.EOF
			}
		case err != nil:
			p.done = true
			return Token{}, fmt.Errorf("reading line: %w", err)
		}

		if token, ok := p.classify(line); ok {
			return token, nil
		}
	}
}

// ParseAll drains a new parser over r and returns every token. This is
// the convenience form used by file filters and tests.
func ParseAll(r io.Reader, extension string) ([]Token, error) {
	parser := NewParser(r, extension)
	var tokens []Token
	for {
		token, err := parser.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
}

// classify runs one physical line through the state machine. The
// returned bool is false for lines that are fully consumed without
// producing a token.
func (p *Parser) classify(line string) (Token, bool) {
	body, terminator := splitTerminator(line)

	// Emitted stub text always ends with a terminator, even when the
	// input's final line lacks one.
	stubTerminator := terminator
	if stubTerminator == "" {
		stubTerminator = "\n"
	}

	// Stub comment opener. The marker prefix is stripped;
	// indentation survives (the dialect pattern captures it).
	if p.stub == nil {
		for _, dialect := range p.dialects {
			if !dialect.stubStart.MatchString(body) {
				continue
			}
			remainder := dialect.stubStart.ReplaceAllString(body, "$1")

			if dialect.terminator.MatchString(remainder) {
				// The comment closes on this same line. For line
				// comments this is always the case.
				content := dialect.terminator.ReplaceAllString(remainder, "")
				if strings.TrimSpace(content) == "" {
					// Empty one-liner stub: a bare terminator.
					return Token{Kind: Stub, Text: stubTerminator}, true
				}
				return Token{Kind: Stub, Text: content + stubTerminator}, true
			}

			// Block comment spanning further lines.
			p.stub = dialect
			if strings.TrimSpace(remainder) == "" {
				return Token{}, false
			}
			return Token{Kind: Stub, Text: remainder + stubTerminator}, true
		}
	}

	// Stub comment closer. Only the dialect that opened the block can
	// close it; a mismatched terminator falls through to passthrough
	// classification below.
	if p.stub != nil && p.stub.terminator.MatchString(body) {
		dialect := p.stub
		p.stub = nil
		content := dialect.terminator.ReplaceAllString(body, "")
		if strings.TrimSpace(content) == "" {
			return Token{}, false
		}
		return Token{Kind: Stub, Text: content + stubTerminator}, true
	}

	// Whole-file markers and block toggles. These consume the line
	// regardless of stub state.
	for _, dialect := range p.dialects {
		switch {
		case dialect.solutionFile.MatchString(body):
			return Token{Kind: SolutionFileMarker}, true
		case dialect.hiddenFile.MatchString(body):
			return Token{Kind: HiddenFileMarker}, true
		case dialect.solutionBegin.MatchString(body):
			p.solution = true
			return Token{}, false
		case dialect.solutionEnd.MatchString(body):
			p.solution = false
			return Token{}, false
		case dialect.hiddenBegin.MatchString(body):
			p.hidden = true
			return Token{}, false
		case dialect.hiddenEnd.MatchString(body):
			p.hidden = false
			return Token{}, false
		}
	}

	// Passthrough: the whole unmodified line, classified by current
	// state. Solution wins over stub, stub over hidden.
	switch {
	case p.solution:
		return Token{Kind: Solution, Text: line}, true
	case p.stub != nil:
		return Token{Kind: Stub, Text: line}, true
	case p.hidden:
		return Token{Kind: Hidden, Text: line}, true
	default:
		return Token{Kind: Text, Text: line}, true
	}
}

// splitTerminator separates a line's body from its terminator. The
// final line of a file may have no terminator.
func splitTerminator(line string) (body, terminator string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
