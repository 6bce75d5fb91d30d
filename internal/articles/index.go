// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package articles

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/truthx/internal/cache"
	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
)

// ErrEmptyQuery is returned for blank queries.
var ErrEmptyQuery = errors.New("empty query")

const (
	embedBatchSize = 64
	cacheType      = "query_embedding"
)

// Index ranks corpus articles against queries. It is safe for concurrent
// use after Load.
type Index struct {
	articles []Article
	vectors  [][]float32
	embedder Embedder
	cache    *cache.LRUCache[[]float32]
	topK     int
}

// Load reads the corpus at cfg.Path and embeds every article. When the
// preferred embedder fails the index falls back to the hashing
// vectoriser so queries and corpus always share one vector space.
func Load(ctx context.Context, cfg config.ArticlesConfig, preferred Embedder) (*Index, error) {
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read article corpus: %w", err)
	}

	var list []Article
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse article corpus: %w", err)
	}
	return NewIndex(ctx, list, preferred, cfg.TopK, cfg.CacheSize, cfg.CacheTTL)
}

// NewIndex embeds list with preferred, falling back to a HashEmbedder.
func NewIndex(ctx context.Context, list []Article, preferred Embedder, topK, cacheSize int, cacheTTL time.Duration) (*Index, error) {
	if topK <= 0 {
		topK = 3
	}
	idx := &Index{
		articles: list,
		topK:     topK,
		cache:    cache.NewLRUCache[[]float32](cacheSize, cacheTTL),
	}

	texts := make([]string, len(list))
	for i := range list {
		texts[i] = list[i].text()
	}

	if preferred != nil {
		vectors, err := embedAll(ctx, preferred, texts)
		if err == nil {
			idx.embedder, idx.vectors = preferred, vectors
		} else {
			logging.Warn().Err(err).Str("embedder", preferred.Name()).
				Msg("Article embedding failed, falling back to local vectoriser")
		}
	}
	if idx.embedder == nil {
		hash := NewHashEmbedder(0)
		idx.vectors, _ = embedAll(ctx, hash, texts)
		idx.embedder = hash
	}

	logging.Info().Int("articles", len(list)).Str("embedder", idx.embedder.Name()).Msg("Article index ready")
	return idx, nil
}

func embedAll(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		vecs, err := e.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Len returns the corpus size.
func (idx *Index) Len() int { return len(idx.articles) }

// Embedder returns the name of the embedder in use.
func (idx *Index) Embedder() string { return idx.embedder.Name() }

// Search returns up to top-k articles ordered by similarity, best first.
func (idx *Index) Search(ctx context.Context, query string) ([]Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len(idx.articles) == 0 {
		return nil, nil
	}

	qv, err := idx.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(idx.articles))
	scores := make([]float64, len(idx.articles))
	for i, v := range idx.vectors {
		order[i] = i
		scores[i] = dot(v, qv)
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	k := min(idx.topK, len(order))
	out := make([]Article, 0, k)
	for _, i := range order[:k] {
		a := idx.articles[i]
		a.Similarity = math.Round(scores[i]*10000) / 10000
		out = append(out, a)
	}
	return out, nil
}

// queryVector embeds the query, caching by digest so the query text is
// never held as a key.
func (idx *Index) queryVector(ctx context.Context, query string) ([]float32, error) {
	sum := sha256.Sum256([]byte(query))
	key := hex.EncodeToString(sum[:])

	if v, ok := idx.cache.Get(key); ok {
		metrics.RecordCacheAccess(cacheType, true)
		return v, nil
	}
	metrics.RecordCacheAccess(cacheType, false)

	vecs, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: no query embedding", ErrEmbedding)
	}
	idx.cache.Add(key, vecs[0])
	return vecs[0], nil
}
