// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/analyze", "200"))
	RecordAPIRequest("POST", "/analyze", "200", 250*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/analyze", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 2 {
		t.Errorf("active requests delta = %v, want 2", got)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("active requests = %v, want %v", got, base)
	}
}

func TestRecordDetectorRun(t *testing.T) {
	tests := []struct {
		detector string
		status   string
	}{
		{"video-deepfake", "ok"},
		{"video-deepfake", "timed_out"},
		{"text-origin", "failed"},
		{"audio-voiceclone", "skipped"},
	}
	for _, tt := range tests {
		t.Run(tt.detector+"/"+tt.status, func(t *testing.T) {
			c := DetectorRuns.WithLabelValues(tt.detector, tt.status)
			before := testutil.ToFloat64(c)
			RecordDetectorRun(tt.detector, tt.status, time.Second)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("detector_runs_total delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordAnalysis_UnknownScoreNotObserved(t *testing.T) {
	before := testutil.CollectAndCount(AuthenticityScore)
	RecordAnalysis("metrics-test-kind", "unknown", -1, time.Second)
	if got := testutil.CollectAndCount(AuthenticityScore); got != before {
		t.Errorf("authenticity_score series = %d, want %d", got, before)
	}
	RecordAnalysis("metrics-test-kind", "low", 90, time.Second)
	if got := testutil.CollectAndCount(AuthenticityScore); got != before+1 {
		t.Errorf("authenticity_score series = %d, want %d", got, before+1)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	ok := ContentStoreOperations.WithLabelValues("put", "success")
	bad := ContentStoreOperations.WithLabelValues("put", "error")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	RecordStoreOperation("put", nil)
	RecordStoreOperation("put", errors.New("disk full"))

	if testutil.ToFloat64(ok)-okBefore != 1 {
		t.Error("success counter not incremented")
	}
	if testutil.ToFloat64(bad)-badBefore != 1 {
		t.Error("error counter not incremented")
	}
}

func TestRecordCacheAccess(t *testing.T) {
	hits := CacheHits.WithLabelValues("embedding")
	misses := CacheMisses.WithLabelValues("embedding")
	h, m := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheAccess("embedding", true)
	RecordCacheAccess("embedding", false)
	RecordCacheAccess("embedding", false)

	if testutil.ToFloat64(hits)-h != 1 {
		t.Error("hits delta != 1")
	}
	if testutil.ToFloat64(misses)-m != 2 {
		t.Error("misses delta != 2")
	}
}
