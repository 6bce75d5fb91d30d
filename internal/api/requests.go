// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

// AnalyzeForm is the validated shape of a POST /analyze form. File is true
// once a file part has been streamed into the content store; the bytes
// themselves are never held here.
//
// The validation tags follow the go-playground/validator v10 syntax:
//   - required_without / excluded_with: exactly one of file and text
//   - cleantext: valid UTF-8 without NUL bytes
//   - oneof: kind must name a known modality
type AnalyzeForm struct {
	File bool   `form:"file"`
	Text string `form:"text" validate:"required_without=File,excluded_with=File,cleantext"`
	Kind string `form:"kind" validate:"omitempty,oneof=video audio image text"`
}
