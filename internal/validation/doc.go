// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator is configured once with:
//   - field names taken from `form` struct tags, so messages name form fields
//   - the cleantext custom validator (valid UTF-8, no NUL bytes)
//
// Every failure maps to the INVALID_REQUEST API error code.
//
//	type analyzeForm struct {
//	    File bool   `form:"file"`
//	    Text string `form:"text" validate:"required_without=File,excluded_with=File,cleantext"`
//	    Kind string `form:"kind" validate:"omitempty,oneof=video audio image text"`
//	}
//
//	if verr := validation.ValidateStruct(&form); verr != nil {
//	    // verr.Error() == "text is required when file is not provided"
//	}
package validation
