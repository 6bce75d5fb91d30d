// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package articles finds reference articles related to a text query.
//
// The corpus is a JSON array of articles loaded once at startup. Each
// article is embedded from its title, summary, description and content;
// queries are embedded the same way and ranked by cosine similarity.
// Embeddings come from an OpenAI-compatible endpoint when an API key is
// configured and from a local hashed bag-of-words vectoriser otherwise.
//
// Results are enrichment only. They never influence the authenticity score.
package articles
