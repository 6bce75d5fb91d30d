// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/truthx/internal/analysis"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
	"github.com/tomtom215/truthx/internal/report"
	"github.com/tomtom215/truthx/internal/validation"
)

// multipartSlack covers part headers and boundaries around the upload.
const multipartSlack = 64 << 10

// discardTimeout bounds cleanup of an upload that never reached the
// orchestrator.
const discardTimeout = 30 * time.Second

// upload is the state accumulated while streaming a multipart form.
type upload struct {
	form    AnalyzeForm
	content *contentstore.Content
}

// Analyze handles POST /analyze.
//
// The form carries one file (field "file" or "video") or one text query
// (field "text" or "query"), plus an optional "kind". The file part is
// streamed straight into the content store; nothing is spooled to a
// temporary file and the client's file name is ignored. The stored
// content is deleted before the response is written, on every path.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	ctx := r.Context()

	bodyLimit := h.store.MaxBytes() + h.maxTextBytes + multipartSlack
	if r.ContentLength > bodyLimit {
		respondClassified(w, r, contentstore.ErrContentTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	up := &upload{}
	handedOff := false
	defer func() {
		if up.content != nil && !handedOff {
			h.discard(ctx, up.content.ID)
		}
	}()

	if err := h.readForm(r, up); err != nil {
		respondClassified(w, r, err)
		return
	}

	if verr := validation.ValidateStruct(&up.form); verr != nil {
		details := make([]string, 0, len(verr.Errors()))
		for _, fe := range verr.Errors() {
			details = append(details, fe.Error())
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Provide exactly one of a file or text", details)
		return
	}

	kind, err := resolveKind(up)
	if err != nil {
		respondClassified(w, r, err)
		return
	}

	req := analysis.Request{
		ID:         uuid.NewString(),
		Kind:       kind,
		Text:       up.form.Text,
		ReceivedAt: start,
	}
	if up.content != nil {
		req.ContentID = up.content.ID
	}

	// From here the orchestrator owns the content's lifetime.
	handedOff = true
	out, err := h.analyzer.Run(ctx, req)
	if err != nil {
		respondClassified(w, r, err)
		return
	}

	agg := h.aggregator.Aggregate(out.Results)
	elapsed := h.now().Sub(start)
	rep := report.Build(req, out.Results, agg, report.Options{
		AnalyzedAt:      h.now(),
		Duration:        elapsed,
		RelatedArticles: out.Articles,
		Notes:           out.Notes,
	})

	score := -1
	if agg.Score != nil {
		score = *agg.Score
	}
	metrics.RecordAnalysis(string(kind), string(agg.RiskLevel), score, elapsed)
	if h.audit != nil {
		h.audit.LogAnalysis(ctx, rep)
	}

	logging.Ctx(ctx).Info().
		Str("analysis_id", req.ID).
		Str("kind", string(kind)).
		Str("risk_level", string(agg.RiskLevel)).
		Dur("duration", elapsed).
		Msg("Analysis complete")

	writeJSON(w, http.StatusOK, rep)
}

// readForm streams every part of the multipart body.
func (h *Handler) readForm(r *http.Request, up *upload) error {
	mr, err := r.MultipartReader()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return bodyError(err)
		}

		err = h.readPart(r.Context(), part, up)
		_ = part.Close()
		if err != nil {
			return err
		}
	}
}

func (h *Handler) readPart(ctx context.Context, part *multipart.Part, up *upload) error {
	switch part.FormName() {
	case "file", "video":
		switch {
		case up.content != nil:
			return fmt.Errorf("%w: more than one file", ErrInvalidForm)
		case up.form.Text != "":
			return fmt.Errorf("%w: both a file and text", ErrInvalidForm)
		}
		return h.storeFile(ctx, part, up)

	case "text", "query":
		switch {
		case up.form.Text != "":
			return fmt.Errorf("%w: more than one text field", ErrInvalidForm)
		case up.content != nil:
			return fmt.Errorf("%w: both a file and text", ErrInvalidForm)
		}
		text, err := readField(part, h.maxTextBytes)
		if err != nil {
			return err
		}
		up.form.Text = text

	case "kind":
		kind, err := readField(part, 32)
		if err != nil {
			return err
		}
		up.form.Kind = strings.ToLower(strings.TrimSpace(kind))

	default:
		if _, err := io.Copy(io.Discard, part); err != nil {
			return bodyError(err)
		}
	}
	return nil
}

// storeFile sniffs the first bytes of the file part and streams the whole
// part into the content store.
func (h *Handler) storeFile(ctx context.Context, part *multipart.Part, up *upload) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(part, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return bodyError(err)
	}
	if n == 0 {
		return contentstore.ErrEmptyContent
	}
	head = head[:n]

	mimeType, modality, err := sniff(head, part.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	content, err := h.store.Put(ctx, io.MultiReader(bytes.NewReader(head), part), modality, mimeType)
	if err != nil {
		return err
	}
	up.content = content
	up.form.File = true
	return nil
}

// resolveKind picks the analysis kind: the declared kind when present,
// otherwise the sniffed modality for uploads and text for queries.
func resolveKind(up *upload) (contentstore.Modality, error) {
	kind := contentstore.Modality(up.form.Kind)
	switch {
	case up.content == nil && kind == "":
		return contentstore.ModalityText, nil
	case up.content == nil:
		return kind, nil
	case kind == "":
		return up.content.Modality, nil
	case !up.content.Modality.CanAnalyzeAs(kind):
		return "", fmt.Errorf("%w: %s upload declared as %s", ErrUnsupportedFormat, up.content.Modality, kind)
	}
	return kind, nil
}

// readField reads a small form value, failing with ErrContentTooLarge past
// limit bytes.
func readField(part *multipart.Part, limit int64) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return "", bodyError(err)
	}
	if int64(len(b)) > limit {
		return "", fmt.Errorf("%w: field %s", contentstore.ErrContentTooLarge, part.FormName())
	}
	return string(b), nil
}

// bodyError keeps body-limit errors recognisable and files everything else
// as a malformed form.
func bodyError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidForm, err)
}

// discard deletes an upload that was rejected before analysis.
func (h *Handler) discard(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()
	if err := h.store.Delete(ctx, id); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("content_id", id).Msg("Failed to discard rejected upload; sweeper will retry")
	}
}
