package core

import "sync"

// ── Registry ──────────────────────────────────────────────────────────────────

type registryEntry struct {
	format  Format
	probe   FormatDecoder // only Detect is called on it
	factory DecoderFactory
}

// DefaultRegistry is a thread-safe implementation of Registry. Registration
// order is sniff order, so put strict signatures before heuristic ones.
type DefaultRegistry struct {
	mu      sync.RWMutex
	entries []registryEntry
}

// NewRegistry returns an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{}
}

// Register appends a decoder to the sniff table. Registering the same format
// twice replaces the earlier entry in place.
func (r *DefaultRegistry) Register(f DecoderFactory) {
	probe := f()
	e := registryEntry{format: probe.Format(), probe: probe, factory: f}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].format == e.format {
			r.entries[i] = e
			return
		}
	}
	r.entries = append(r.entries, e)
}

// Sniff returns a fresh decoder for the first format whose signature matches.
func (r *DefaultRegistry) Sniff(data []byte) (FormatDecoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.probe.Detect(data) {
			return e.factory(), true
		}
	}
	return nil, false
}

// Formats lists registered formats in sniff order.
func (r *DefaultRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.format
	}
	return out
}
