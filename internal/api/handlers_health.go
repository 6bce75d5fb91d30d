// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package api

import (
	"net/http"

	"github.com/tomtom215/truthx/internal/probe"
)

// HealthStatus is the liveness probe body.
type HealthStatus struct {
	Status  string            `json:"status"`
	FFprobe string            `json:"ffprobe,omitempty"`
	Models  map[string]string `json:"models,omitempty"`
}

// Health handles liveness checks. Callers use it to short-circuit before
// uploading: 200 means analyze requests are accepted, 503 means they are not.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || !h.store.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, HealthStatus{Status: "unavailable"})
		return
	}

	mode := probe.ModeUnavailable
	if h.prober != nil {
		mode = h.prober.Mode(r.Context())
	}

	writeJSON(w, http.StatusOK, HealthStatus{
		Status:  "ok",
		FFprobe: string(mode),
		Models:  h.registry.Backends(),
	})
}
