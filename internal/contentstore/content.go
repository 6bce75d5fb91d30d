// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"errors"
	"time"
)

// Modality is the kind of content under analysis.
type Modality string

const (
	ModalityVideo Modality = "video"
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
	ModalityText  Modality = "text"
)

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityVideo, ModalityAudio, ModalityImage, ModalityText:
		return true
	}
	return false
}

// IsMedia reports whether m is stored as a binary upload.
func (m Modality) IsMedia() bool {
	return m == ModalityVideo || m == ModalityAudio || m == ModalityImage
}

// CanAnalyzeAs reports whether content stored as m may be analyzed as kind.
// A video container may be analyzed for its soundtrack alone.
func (m Modality) CanAnalyzeAs(kind Modality) bool {
	return m == kind || m == ModalityVideo && kind == ModalityAudio
}

// Sentinel errors
var (
	ErrNotFound        = errors.New("content not found")
	ErrContentTooLarge = errors.New("content exceeds upload limit")
	ErrEmptyContent    = errors.New("content is empty")
	ErrStoreClosed     = errors.New("content store closed")
)

// Content describes one stored upload. It never carries the original file name.
type Content struct {
	ID        string    `json:"id"`
	Size      int64     `json:"size"`
	Modality  Modality  `json:"modality"`
	MimeType  string    `json:"mime_type"`
	Location  string    `json:"location"` // backend name and key, e.g. "disk:<id>"
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the content is past its expiry at now.
func (c *Content) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Stats summarises what the store currently holds.
type Stats struct {
	Items int   `json:"items"`
	Bytes int64 `json:"bytes"`
}
