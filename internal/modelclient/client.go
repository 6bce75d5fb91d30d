// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package modelclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/logging"
)

const (
	// maxResponseBytes bounds a model answer. Per-frame output of a long
	// video stays well below this.
	maxResponseBytes = 8 << 20

	userAgent = "truthx-modelclient/1.0"
)

// MediaModel scores uploaded media bytes.
type MediaModel interface {
	PredictMedia(ctx context.Context, r io.Reader, mimeType string) (*Prediction, error)
}

// TextModel scores a text query.
type TextModel interface {
	PredictText(ctx context.Context, text string) (*Prediction, error)
}

// Client calls one HTTP model service.
type Client struct {
	name    string
	url     string
	apiKey  string
	http    *http.Client
	breaker *breaker
	limiter *limiter
}

// New creates a client for the named detector. It returns ErrNotConfigured
// when cfg has no URL.
func New(name string, cfg config.ModelServiceConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid model service URL for %s", name)
	}

	hc := &http.Client{}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	return &Client{
		name:    name,
		url:     u.String(),
		apiKey:  cfg.APIKey,
		http:    hc,
		breaker: newBreaker(name),
		limiter: newLimiter(name, cfg.RateLimit),
	}, nil
}

// Name returns the detector name the client serves.
func (c *Client) Name() string { return c.name }

// State returns the circuit breaker state: closed, half-open or open.
func (c *Client) State() string { return c.breaker.State() }

// PredictMedia streams r to the service as multipart field "file".
// The body is produced while the request is sent, so nothing is buffered
// in memory or on disk.
func (c *Client) PredictMedia(ctx context.Context, r io.Reader, mimeType string) (*Prediction, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}
	return c.breaker.execute(func() (*Prediction, error) {
		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)

		go func() {
			pw.CloseWithError(writeFilePart(mw, r, mimeType))
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
		if err != nil {
			pr.Close()
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return c.do(req)
	})
}

func writeFilePart(mw *multipart.Writer, r io.Reader, mimeType string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="upload"`)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// PredictText posts {"text": text} to the service.
func (c *Client) PredictText(ctx context.Context, text string) (*Prediction, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}

	return c.breaker.execute(func() (*Prediction, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(req)
	})
}

func (c *Client) do(req *http.Request) (*Prediction, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if id := logging.AnalysisIDFromContext(req.Context()); id != "" {
		req.Header.Set("X-Analysis-ID", id)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnsupportedMediaType:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.name)
	case resp.StatusCode >= 400:
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, c.name, resp.StatusCode)
	}

	var p Prediction
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&p); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Model == "" {
		p.Model = c.name
	}

	return &p, nil
}
