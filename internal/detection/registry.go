// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package detection

import (
	"slices"
	"sync"

	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/logging"
)

// Registry holds the detectors by name.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{detectors: make(map[string]Detector)}
}

// RegisterDetector adds a detector, replacing any previous one of the same
// name.
func (r *Registry) RegisterDetector(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := d.Name()
	if _, exists := r.detectors[name]; !exists {
		r.order = append(r.order, name)
	}
	r.detectors[name] = d

	backend := "local"
	if mi, ok := d.(ModelInfo); ok {
		backend = mi.Backend()
	}
	logging.Info().Str("detector", name).Str("backend", backend).Msg("registered detector")
}

// Get returns the named detector.
func (r *Registry) Get(name string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[name]
	return d, ok
}

// Names returns detector names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// ForModality returns the detectors that accept m, in registration order.
func (r *Registry) ForModality(m contentstore.Modality) []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Detector
	for _, name := range r.order {
		d := r.detectors[name]
		if slices.Contains(d.Modalities(), m) {
			out = append(out, d)
		}
	}
	return out
}

// Backends maps each detector to the backend it runs on: "local",
// "model", "openai", "placeholder" or "disabled".
func (r *Registry) Backends() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.detectors))
	for name, d := range r.detectors {
		backend := "local"
		if mi, ok := d.(ModelInfo); ok {
			backend = mi.Backend()
		}
		out[name] = backend
	}
	return out
}
