// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package articles

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Article is one corpus entry. Similarity is set on search results.
type Article struct {
	ID          ArticleID `json:"id"`
	Title       string    `json:"title,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt string    `json:"published_at,omitempty"`
	Similarity  float64   `json:"similarity_score,omitempty"`
}

// ArticleID accepts both string and numeric ids.
type ArticleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ArticleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ArticleID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return err
	}
	*id = ArticleID(b)
	return nil
}

// text is the string an article is embedded from.
func (a *Article) text() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Title, a.Summary, a.Description, a.Content} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Article " + string(a.ID)
	}
	return strings.Join(parts, " ")
}
