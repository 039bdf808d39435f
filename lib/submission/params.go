// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package submission

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ParamsFileName is the file written at the working tree root when
// the caller supplies parameters. The grading sandbox sources it
// before running tests.
const ParamsFileName = ".tmcparams"

var (
	paramKeyPattern   = regexp.MustCompile(`^[A-Za-z_]+$`)
	paramValuePattern = regexp.MustCompile(`^[A-Za-z_-]+$`)
)

// InvalidParamError reports a key or value that cannot be rendered
// into the params file. Because the file is sourced by a shell,
// anything outside the safe character sets is rejected outright
// rather than escaped.
type InvalidParamError struct {
	// Key is the offending parameter's key.
	Key string

	// Value is the offending value. Empty when the key itself is
	// invalid.
	Value string
}

func (e *InvalidParamError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid param key %q", e.Key)
	}
	return fmt.Sprintf("invalid value %q for param %q", e.Value, e.Key)
}

// Params collects the key/value pairs forwarded to the grading
// sandbox through the params file. A value is either a scalar or an
// array; setting a key replaces any previous value of either shape.
// The zero value is ready to use.
//
// Validation happens at insertion time, so a populated Params always
// renders cleanly and an invalid parameter is caught before any
// packaging work begins.
type Params struct {
	scalars map[string]string
	arrays  map[string][]string
}

// SetString records a scalar parameter, rendered as
// "export KEY=VALUE".
func (p *Params) SetString(key, value string) error {
	if !paramKeyPattern.MatchString(key) {
		return &InvalidParamError{Key: key}
	}
	if !paramValuePattern.MatchString(value) {
		return &InvalidParamError{Key: key, Value: value}
	}
	if p.scalars == nil {
		p.scalars = make(map[string]string)
	}
	delete(p.arrays, key)
	p.scalars[key] = value
	return nil
}

// SetArray records an array parameter, rendered as
// "export KEY=( v1 v2 ... )".
func (p *Params) SetArray(key string, values []string) error {
	if !paramKeyPattern.MatchString(key) {
		return &InvalidParamError{Key: key}
	}
	for _, value := range values {
		if !paramValuePattern.MatchString(value) {
			return &InvalidParamError{Key: key, Value: value}
		}
	}
	if p.arrays == nil {
		p.arrays = make(map[string][]string)
	}
	delete(p.scalars, key)
	p.arrays[key] = append([]string(nil), values...)
	return nil
}

// Empty reports whether no parameters have been set.
func (p *Params) Empty() bool {
	return len(p.scalars) == 0 && len(p.arrays) == 0
}

// Render produces the params file body: one export line per entry,
// keys in lexicographic order so repeated packaging of the same
// submission is stable.
func (p *Params) Render() []byte {
	keys := make([]string, 0, len(p.scalars)+len(p.arrays))
	for key := range p.scalars {
		keys = append(keys, key)
	}
	for key := range p.arrays {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		if value, ok := p.scalars[key]; ok {
			fmt.Fprintf(&builder, "export %s=%s\n", key, value)
			continue
		}
		fmt.Fprintf(&builder, "export %s=( %s )\n", key, strings.Join(p.arrays[key], " "))
	}
	return []byte(builder.String())
}
