// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/truthx/internal/analysis"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/metrics"
	"github.com/tomtom215/truthx/internal/probe"
	"github.com/tomtom215/truthx/internal/report"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0x42}, 64)...)
	mp4Bytes = append([]byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"), bytes.Repeat([]byte{0x00}, 64)...)
)

// fakeDetector reads the content it is given and returns a fixed verdict.
type fakeDetector struct {
	name       string
	modalities []contentstore.Modality
	label      string
	confidence float64
	calls      atomic.Int32
}

func (f *fakeDetector) Name() string                        { return f.name }
func (f *fakeDetector) Modalities() []contentstore.Modality { return f.modalities }

func (f *fakeDetector) Analyze(ctx context.Context, in detection.Input) detection.Result {
	f.calls.Add(1)
	if in.Content != nil {
		rc, err := in.Content.Open(ctx)
		if err != nil {
			return detection.Failed(f.name, "content no longer available")
		}
		_, _ = io.Copy(io.Discard, rc)
		_ = rc.Close()
	}
	return detection.OK(f.name, f.label, f.confidence, detection.Findings{})
}

type fakeProber struct{ mode probe.Mode }

func (p fakeProber) Mode(context.Context) probe.Mode { return p.mode }
func (p fakeProber) Available(context.Context) bool  { return p.mode != probe.ModeUnavailable }

func (p fakeProber) ExtractAudio(context.Context, string, string) (*probe.AudioTrack, error) {
	return nil, probe.ErrAudioExtraction
}

func (p fakeProber) Probe(context.Context, string) (*probe.MediaMetadata, error) {
	return &probe.MediaMetadata{
		File:  probe.FileInfo{Container: "mov,mp4", DurationSeconds: 12},
		Video: &probe.VideoStream{Codec: "h264", Width: 1920, Height: 1080},
	}, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	reports []*report.Report
}

func (a *recordingAudit) LogAnalysis(_ context.Context, rep *report.Report) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, rep)
}

type fixture struct {
	store    *contentstore.Store
	handler  http.Handler
	video    *fakeDetector
	image    *fakeDetector
	text     *fakeDetector
	audit    *recordingAudit
	maxBytes int64
}

func newFixture(t *testing.T, maxBytes int64) *fixture {
	t.Helper()
	blobs, err := contentstore.NewDiskBlobs(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskBlobs: %v", err)
	}
	store, err := contentstore.New(blobs, "", contentstore.Options{MaxBytes: maxBytes, TTL: time.Minute})
	if err != nil {
		t.Fatalf("contentstore.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		store: store,
		video: &fakeDetector{
			name:       detection.NameVideoDeepfake,
			modalities: []contentstore.Modality{contentstore.ModalityVideo},
			label:      "fake",
			confidence: 0.94,
		},
		image: &fakeDetector{
			name:       detection.NameImageManipulation,
			modalities: []contentstore.Modality{contentstore.ModalityImage},
			label:      "real",
			confidence: 0.1,
		},
		text: &fakeDetector{
			name:       detection.NameTextOrigin,
			modalities: []contentstore.Modality{contentstore.ModalityText},
			label:      "human-written",
			confidence: 0.8,
		},
		audit:    &recordingAudit{},
		maxBytes: maxBytes,
	}

	reg := detection.NewRegistry()
	reg.RegisterDetector(f.video)
	reg.RegisterDetector(f.image)
	reg.RegisterDetector(f.text)

	prober := fakeProber{mode: probe.ModeFFprobe}
	orch := analysis.New(store, reg, prober, nil, analysis.Options{
		RequestTimeout:  5 * time.Second,
		DetectorTimeout: 2 * time.Second,
	})

	h := NewHandler(Dependencies{
		Store:    store,
		Analyzer: orch,
		Prober:   prober,
		Registry: reg,
		Audit:    f.audit,
	})
	f.handler = NewRouter(h, nil).SetupChi()
	return f
}

func (f *fixture) detectorCalls() int32 {
	return f.video.calls.Load() + f.image.calls.Load() + f.text.calls.Load()
}

func (f *fixture) assertStoreEmpty(t *testing.T) {
	t.Helper()
	stats, err := f.store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Items != 0 || stats.Bytes != 0 {
		t.Errorf("store still holds %d items (%d bytes) after the request", stats.Items, stats.Bytes)
	}
}

type formPart struct {
	field       string
	contentType string // set for file parts
	data        []byte
}

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		if p.contentType != "" {
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="holiday.mp4"`)
			h.Set("Content-Type", p.contentType)
		} else {
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"`)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = w.Write(p.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return body, mw.FormDataContentType()
}

func postAnalyze(t *testing.T, h http.Handler, parts ...formPart) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.RemoteAddr = "203.0.113.7:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	return *resp.Error
}

func TestAnalyze_VideoUpload(t *testing.T) {
	f := newFixture(t, 1<<20)

	w := postAnalyze(t, f.handler, formPart{field: "video", contentType: "video/mp4", data: mp4Bytes})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rep report.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Kind != "video" {
		t.Errorf("kind = %q, want video (sniffed)", rep.Kind)
	}
	if rep.Score == nil || *rep.Score != 6 {
		t.Errorf("score = %v, want 6", rep.Score)
	}
	if rep.StatusLabel != report.StatusLikelyManipulated {
		t.Errorf("status_label = %q", rep.StatusLabel)
	}
	if strings.Contains(w.Body.String(), "holiday.mp4") {
		t.Error("report leaks the uploaded file name")
	}
	if f.image.calls.Load() != 0 || f.text.calls.Load() != 0 {
		t.Error("detectors for other modalities ran")
	}
	if len(f.audit.reports) != 1 {
		t.Errorf("audit recorded %d reports, want 1", len(f.audit.reports))
	}
	f.assertStoreEmpty(t)
}

func TestAnalyze_TextQuery(t *testing.T) {
	f := newFixture(t, 1<<20)

	w := postAnalyze(t, f.handler, formPart{field: "query", data: []byte("Is this press release machine written?")})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var rep report.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Kind != "text" || rep.RiskLevel != "low" {
		t.Errorf("kind = %q, risk = %q", rep.Kind, rep.RiskLevel)
	}
	if f.text.calls.Load() != 1 {
		t.Errorf("text detector calls = %d, want 1", f.text.calls.Load())
	}
}

func TestAnalyze_OversizedByContentLength(t *testing.T) {
	f := newFixture(t, 500<<20)

	body, contentType := multipartBody(t, formPart{field: "file", contentType: "video/mp4", data: mp4Bytes})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = 600 << 20
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeContentTooLarge {
		t.Errorf("code = %q", e.Code)
	}
	if n := f.detectorCalls(); n != 0 {
		t.Errorf("detectors invoked %d times for an oversized upload", n)
	}
	f.assertStoreEmpty(t)
}

func TestAnalyze_OversizedWhileStreaming(t *testing.T) {
	f := newFixture(t, 1024)

	big := append(append([]byte{}, mp4Bytes...), bytes.Repeat([]byte{0x01}, 4096)...)
	body, contentType := multipartBody(t, formPart{field: "file", contentType: "video/mp4", data: big})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = -1 // chunked upload, size unknown up front
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413; body = %s", w.Code, w.Body.String())
	}
	if n := f.detectorCalls(); n != 0 {
		t.Errorf("detectors invoked %d times", n)
	}
	f.assertStoreEmpty(t)
}

func TestAnalyze_InvalidForms(t *testing.T) {
	tests := []struct {
		name     string
		parts    []formPart
		wantCode int
		wantErr  string
	}{
		{
			name:     "neither file nor text",
			parts:    []formPart{{field: "kind", data: []byte("video")}},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name: "both file and text",
			parts: []formPart{
				{field: "file", contentType: "image/png", data: pngBytes},
				{field: "text", data: []byte("caption")},
			},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name: "two files",
			parts: []formPart{
				{field: "file", contentType: "image/png", data: pngBytes},
				{field: "video", contentType: "video/mp4", data: mp4Bytes},
			},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name:     "unknown kind",
			parts:    []formPart{{field: "kind", data: []byte("pdf")}, {field: "text", data: []byte("hello")}},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name:     "text declared as video",
			parts:    []formPart{{field: "kind", data: []byte("video")}, {field: "text", data: []byte("hello")}},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name:     "whitespace text",
			parts:    []formPart{{field: "text", data: []byte("   ")}},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name:     "empty file",
			parts:    []formPart{{field: "file", contentType: "video/mp4", data: nil}},
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidRequest,
		},
		{
			name:     "not media",
			parts:    []formPart{{field: "file", contentType: "application/pdf", data: []byte("%PDF-1.7\n%binary")}},
			wantCode: http.StatusUnsupportedMediaType,
			wantErr:  ErrCodeUnsupportedFormat,
		},
		{
			name: "image declared as video",
			parts: []formPart{
				{field: "kind", data: []byte("video")},
				{field: "file", contentType: "image/png", data: pngBytes},
			},
			wantCode: http.StatusUnsupportedMediaType,
			wantErr:  ErrCodeUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1<<20)
			w := postAnalyze(t, f.handler, tt.parts...)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.wantCode, w.Body.String())
			}
			e := decodeError(t, w)
			if e.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", e.Code, tt.wantErr)
			}
			if e.RequestID == "" {
				t.Error("error envelope lacks request_id")
			}
			if n := f.detectorCalls(); n != 0 {
				t.Errorf("detectors invoked %d times", n)
			}
			f.assertStoreEmpty(t)
		})
	}
}

func TestAnalyze_TextBeforeFileStoresNothing(t *testing.T) {
	f := newFixture(t, 1<<20)
	puts := func() float64 {
		return testutil.ToFloat64(metrics.ContentStoreOperations.WithLabelValues("put", "success")) +
			testutil.ToFloat64(metrics.ContentStoreOperations.WithLabelValues("put", "error"))
	}
	before := puts()

	w := postAnalyze(t, f.handler,
		formPart{field: "text", data: []byte("caption")},
		formPart{field: "video", contentType: "video/mp4", data: mp4Bytes},
	)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
	}
	if e := decodeError(t, w); e.Code != ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeInvalidRequest)
	}
	if got := puts() - before; got != 0 {
		t.Errorf("content store received %v uploads, want 0", got)
	}
	f.assertStoreEmpty(t)
}

func TestAnalyze_NotMultipart(t *testing.T) {
	f := newFixture(t, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// stubAnalyzer returns a fixed error and records that it was called.
type stubAnalyzer struct {
	err   error
	calls int
}

func (s *stubAnalyzer) Run(context.Context, analysis.Request) (*analysis.Outcome, error) {
	s.calls++
	return nil, s.err
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"backend unavailable", analysis.ErrBackendUnavailable, http.StatusServiceUnavailable, ErrCodeBackendUnavailable},
		{"metadata extraction", analysis.ErrMetadataExtraction, http.StatusInternalServerError, ErrCodeInternalError},
		{"blob read during metadata extraction", errors.Join(analysis.ErrMetadataExtraction, errors.New("read /var/lib/truthx/blob: input/output error")), http.StatusInternalServerError, ErrCodeInternalError},
		{"store closed", contentstore.ErrStoreClosed, http.StatusServiceUnavailable, ErrCodeBackendUnavailable},
		{"unexpected", errors.New("disk on fire at /var/lib/truthx"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1<<20)
			analyzer := &stubAnalyzer{err: tt.err}
			h := NewRouter(NewHandler(Dependencies{Store: f.store, Analyzer: analyzer}), nil).SetupChi()

			w := postAnalyze(t, h, formPart{field: "text", data: []byte("claim")})
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			e := decodeError(t, w)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
			if strings.Contains(w.Body.String(), "/var/lib") {
				t.Error("internal error detail leaked to the client")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "ok" || status.FFprobe != "available" {
		t.Errorf("health = %+v", status)
	}
	if _, ok := status.Models[detection.NameVideoDeepfake]; !ok {
		t.Errorf("models = %v, want registered detectors", status.Models)
	}

	_ = f.store.Close()
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status after store close = %d, want 503", w.Code)
	}
}

func TestHealth_ExtractorMode(t *testing.T) {
	f := newFixture(t, 1<<20)

	tests := []struct {
		name   string
		prober ProbeChecker
		want   string
	}{
		{"ffprobe", fakeProber{mode: probe.ModeFFprobe}, "available"},
		{"ffmpeg only", fakeProber{mode: probe.ModeFFmpeg}, "fallback (ffmpeg)"},
		{"neither", fakeProber{mode: probe.ModeUnavailable}, "unavailable"},
		{"not configured", nil, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(Dependencies{
				Store:    f.store,
				Prober:   tt.prober,
				Registry: detection.NewRegistry(),
			})
			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var status HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
				t.Fatal(err)
			}
			if status.FFprobe != tt.want {
				t.Errorf("ffprobe = %q, want %q", status.FFprobe, tt.want)
			}
		})
	}
}

func TestRouter_MetricsAndFallbacks(t *testing.T) {
	f := newFixture(t, 1<<20)

	// Generate at least one labelled series.
	f.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "api_requests_total") {
		t.Errorf("/metrics status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound || decodeError(t, w).Code != ErrCodeNotFound {
		t.Errorf("unknown route: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /analyze: status = %d, want 405", w.Code)
	}
}
