package analyzer

import (
	"sync"

	"go.uber.org/zap"
)

// EventType identifies an observable step in an analysis.
type EventType string

const (
	EventLookupAttempted EventType = "lookup_attempted"
	EventLookupSucceeded EventType = "lookup_succeeded"
	EventLookupFailed    EventType = "lookup_failed"
	EventCacheHit        EventType = "cache_hit"
	EventCacheMiss       EventType = "cache_miss"
	EventReconciled      EventType = "rent_reconciled"
)

// Event is one structured observation emitted during an analysis. Events
// replace ad-hoc log scraping: behavior is asserted on the event list.
type Event struct {
	Type   EventType      `json:"type"`
	Source string         `json:"source,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Recorder collects events for one analysis. Safe for concurrent use by
// the parallel lookup goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Record appends an event and mirrors it to the structured log.
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()

	zap.L().Debug("analyzer: event",
		zap.String("type", string(ev.Type)),
		zap.String("source", ev.Source),
		zap.Any("fields", ev.Fields),
	)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Has reports whether an event of the given type and source was recorded.
// Source is ignored when empty.
func (r *Recorder) Has(t EventType, source string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Type == t && (source == "" || ev.Source == source) {
			return true
		}
	}
	return false
}
