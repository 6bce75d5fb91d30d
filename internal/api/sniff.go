// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tomtom215/truthx/internal/contentstore"
)

// sniffLen is how much of an upload is buffered for type detection.
const sniffLen = 3072

// sniff identifies the media type of an upload from its first bytes,
// falling back to the part's Content-Type header when the bytes are not
// recognised. The original file name is never consulted.
func sniff(head []byte, partType string) (string, contentstore.Modality, error) {
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if mod, ok := modalityOf(m.String()); ok {
			return baseType(m.String()), mod, nil
		}
	}

	if declared := baseType(partType); declared != "" {
		if mod, ok := modalityOf(declared); ok {
			return declared, mod, nil
		}
	}
	return "", "", ErrUnsupportedFormat
}

func modalityOf(mimeType string) (contentstore.Modality, bool) {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return contentstore.ModalityVideo, true
	case strings.HasPrefix(mimeType, "audio/"):
		return contentstore.ModalityAudio, true
	case strings.HasPrefix(mimeType, "image/"):
		return contentstore.ModalityImage, true
	}
	return "", false
}

func baseType(s string) string {
	if s == "" {
		return ""
	}
	t, _, err := mime.ParseMediaType(s)
	if err != nil {
		return ""
	}
	return t
}
