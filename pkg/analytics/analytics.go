package analytics

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultEventBound caps the global event log when no bound is configured.
const DefaultEventBound = 1000

type EventType string

const (
	EventActivation   EventType = "activation"
	EventRecognition  EventType = "recognition"
	EventNavigation   EventType = "navigation"
	EventError        EventType = "error"
	EventDeactivation EventType = "deactivation"
)

// Event is one analytics record. Data carries only string values so every
// payload stays serializable and schema-checkable.
type Event struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	SessionID  string            `json:"session_id,omitempty"`
	Language   string            `json:"language,omitempty"`
	Success    bool              `json:"success"`
	Confidence float64           `json:"confidence,omitempty"`
	DurationMs int64             `json:"duration_ms,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}

// SessionStats is the incrementally maintained view of one session's events.
// AverageConfidence follows newAvg = (oldAvg*(n-1) + value) / n over events
// that carry a confidence.
type SessionStats struct {
	EventCount        int     `json:"event_count"`
	SuccessCount      int     `json:"success_count"`
	SuccessRate       float64 `json:"success_rate"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Snapshot is the serializable state for the blob store.
type Snapshot struct {
	Events  []Event   `json:"events"`
	SavedAt time.Time `json:"saved_at"`
}

type IRecorder interface {
	Track(e Event) Event
	Events() []Event
	SessionEvents(sessionID string) []Event
	SessionStats(sessionID string) SessionStats
	Metrics(since time.Time) Metrics
	Insights() []string
	Prune(olderThan time.Time) int
	Len() int
	Snapshot() Snapshot
	Restore(s Snapshot)
}

type recorder struct {
	mu     sync.Mutex
	bound  int
	events []Event
	stats  map[string]*sessionStats
	now    func() time.Time
}

type sessionStats struct {
	count           int
	successes       int
	confidenceCount int
	avgConfidence   float64
}

type Option func(*recorder)

func WithClock(now func() time.Time) Option {
	return func(r *recorder) { r.now = now }
}

// NewRecorder builds a recorder whose global event log never exceeds bound;
// once full, tracking a new event drops the oldest one.
func NewRecorder(bound int, opts ...Option) IRecorder {
	if bound <= 0 {
		bound = DefaultEventBound
	}
	r := &recorder{
		bound: bound,
		stats: make(map[string]*sessionStats),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Track fills in missing id and timestamp, appends the event, and updates
// the owning session's running stats. The completed event is returned.
func (r *recorder) Track(e Event) Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	if e.ID == "" {
		e.ID = newEventID(e.Timestamp)
	}
	if e.Type == "" {
		e.Type = EventRecognition
	}

	r.events = append(r.events, e)
	if len(r.events) > r.bound {
		r.events = r.events[len(r.events)-r.bound:]
	}

	if e.SessionID != "" {
		st, ok := r.stats[e.SessionID]
		if !ok {
			st = &sessionStats{}
			r.stats[e.SessionID] = st
		}
		st.count++
		if e.Success {
			st.successes++
		}
		if e.Confidence > 0 {
			st.confidenceCount++
			n := float64(st.confidenceCount)
			st.avgConfidence = (st.avgConfidence*(n-1) + e.Confidence) / n
		}
	}

	return e
}

func newEventID(t time.Time) string {
	id, err := ulid.New(ulid.Timestamp(t), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) SessionEvents(sessionID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) SessionStats(sessionID string) SessionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stats[sessionID]
	if !ok {
		return SessionStats{}
	}
	out := SessionStats{
		EventCount:        st.count,
		SuccessCount:      st.successes,
		AverageConfidence: st.avgConfidence,
	}
	if st.count > 0 {
		out.SuccessRate = float64(st.successes) / float64(st.count)
	}
	return out
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Prune drops events older than the cutoff and forgets stats for sessions
// that no longer have any retained event. Returns how many were dropped.
func (r *recorder) Prune(olderThan time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	for _, e := range r.events {
		if !e.Timestamp.Before(olderThan) {
			kept = append(kept, e)
		}
	}
	dropped := len(r.events) - len(kept)
	r.events = kept

	if dropped > 0 {
		live := make(map[string]struct{}, len(r.stats))
		for _, e := range r.events {
			if e.SessionID != "" {
				live[e.SessionID] = struct{}{}
			}
		}
		for id := range r.stats {
			if _, ok := live[id]; !ok {
				delete(r.stats, id)
			}
		}
	}
	return dropped
}

func (r *recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]Event, len(r.events))
	copy(events, r.events)
	return Snapshot{Events: events, SavedAt: r.now()}
}

// Restore replaces the log with a snapshot, replaying it so the per-session
// running averages come out exactly as if the events had been tracked live.
func (r *recorder) Restore(s Snapshot) {
	r.mu.Lock()
	events := s.Events
	if len(events) > r.bound {
		events = events[len(events)-r.bound:]
	}
	r.events = nil
	r.stats = make(map[string]*sessionStats)
	r.mu.Unlock()

	for _, e := range events {
		r.Track(e)
	}
}
