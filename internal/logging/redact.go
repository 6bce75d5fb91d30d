// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RedactText summarises user-submitted text for logs without recording it.
// The output carries the rune count and the first 8 hex chars of its SHA-256,
// enough to spot repeated submissions.
//
//	logging.RedactText("hello") // "len=5 sha256=2cf24dba"
func RedactText(s string) string {
	if s == "" {
		return "len=0"
	}
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("len=%d sha256=%s", utf8.RuneCountInString(s), hex.EncodeToString(sum[:4]))
}

// SanitizeError trims an error message for logging and strips local paths
// that could reveal where uploaded content was staged.
func SanitizeError(msg string) string {
	const maxLen = 256
	fields := strings.Fields(msg)
	for i, f := range fields {
		if strings.HasPrefix(f, "/") && strings.Count(f, "/") > 1 {
			fields[i] = "[path]"
		}
	}
	out := strings.Join(fields, " ")
	if len(out) > maxLen {
		out = out[:maxLen] + "..."
	}
	return out
}
