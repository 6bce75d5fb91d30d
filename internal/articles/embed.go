// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package articles

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/sashabaranov/go-openai"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/modelclient"
)

// ErrEmbedding is returned when a text could not be embedded.
var ErrEmbedding = errors.New("embedding failed")

// Embedder turns texts into L2-normalised vectors of a fixed dimension.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// HashEmbedder is a local bag-of-words vectoriser using the hashing trick.
// Term frequencies are damped logarithmically.
type HashEmbedder struct {
	Dim int
}

const defaultHashDim = 1024

// NewHashEmbedder creates a hashing vectoriser of dim buckets.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = defaultHashDim
	}
	return &HashEmbedder{Dim: dim}
}

func (h *HashEmbedder) Name() string { return "hash" }

// Embed never fails.
func (h *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	counts := make(map[uint32]int)
	for _, tok := range tokenize(text) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		counts[f.Sum32()%uint32(h.Dim)]++
	}

	vec := make([]float32, h.Dim)
	for bucket, n := range counts {
		vec[bucket] = float32(1 + math.Log(float64(n)))
	}
	normalize(vec)
	return vec
}

// tokenize lower-cases text and splits it into letter/digit runs, dropping
// single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

const defaultEmbeddingModel = "text-embedding-3-small"

// NewOpenAIEmbedder returns modelclient.ErrNotConfigured without an API key.
func NewOpenAIEmbedder(cfg config.OpenAIConfig) (*OpenAIEmbedder, error) {
	client, err := modelclient.NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = defaultEmbeddingModel
	}
	return &OpenAIEmbedder{client: client, model: openai.EmbeddingModel(model)}, nil
}

func (e *OpenAIEmbedder) Name() string { return "openai:" + string(e.model) }

// Embed requests one embedding per text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbedding, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrEmbedding, d.Index)
		}
		vec := append([]float32(nil), d.Embedding...)
		normalize(vec)
		out[d.Index] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("%w: missing embedding %d", ErrEmbedding, i)
		}
	}
	return out, nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// dot is the cosine similarity of two normalised vectors. Vectors of
// different length score 0.
func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
