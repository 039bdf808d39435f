// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package projecttype

import (
	_ "embed"
	"encoding/json"

	"github.com/tidwall/jsonc"
)

// images.jsonc maps language families to their default grading
// sandbox images. JSONC keeps the catalog human-annotated; it is
// embedded at compile time and parsed once during init. A parse
// failure is a build defect, not a runtime condition, so init panics.
//
//go:embed images.jsonc
var imagesSource []byte

var sandboxImages map[string]string

func init() {
	if err := json.Unmarshal(jsonc.ToJSON(imagesSource), &sandboxImages); err != nil {
		panic("projecttype: embedded image catalog is malformed: " + err.Error())
	}
	if sandboxImages["default"] == "" {
		panic("projecttype: embedded image catalog lacks a default image")
	}
}

// DefaultImage is the sandbox image for projects with no recognized
// family.
func DefaultImage() string {
	return sandboxImages["default"]
}

// imageForFamily resolves a family's default image, falling back to
// the catalog's default entry.
func imageForFamily(family string) string {
	if image, ok := sandboxImages[family]; ok && image != "" {
		return image
	}
	return sandboxImages["default"]
}
