package advisor

import (
	"sync"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"
)

// State of one resolution request
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateResolved  State = "resolved"
	StateFailed    State = "failed"
	StateEmpty     State = "empty"
)

// user-facing outcome messages
const (
	MessageNoResults        = "no recommendations found"
	MessageGenerationFailed = "generation failed, please retry"
)

// Terminal reports whether s ends a request
func (s State) Terminal() bool {
	return s == StateResolved || s == StateFailed || s == StateEmpty
}

// Outcome result of a free-text resolution
type Outcome struct {
	State            State                 `json:"state"`
	Message          string                `json:"message,omitempty"`
	Recommendation   common.Recommendation `json:"recommendation"`
	NewIngredientIDs []string              `json:"newIngredientIds,omitempty"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// Tracker keeps the latest outcome per session; the last write wins
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]Outcome
	ttl     time.Duration
	now     func() time.Time
}

// NewTracker creates a tracker forgetting sessions idle for longer than ttl
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Tracker{
		entries: make(map[string]Outcome),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Begin marks session as resolving
func (t *Tracker) Begin(session string) {
	t.Set(session, Outcome{State: StateResolving, Recommendation: emptyRecommendation()})
}

// Set stamps outcome and records it for session. An empty session is stamped
// but not tracked.
func (t *Tracker) Set(session string, outcome Outcome) Outcome {
	now := t.now()
	outcome.UpdatedAt = now
	if session == "" {
		return outcome
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[session] = outcome

	for key, entry := range t.entries {
		if now.Sub(entry.UpdatedAt) > t.ttl {
			delete(t.entries, key)
		}
	}
	return outcome
}

// Get returns the latest outcome; unknown sessions are Idle
func (t *Tracker) Get(session string) Outcome {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	outcome, ok := t.entries[session]
	if !ok || now.Sub(outcome.UpdatedAt) > t.ttl {
		return Outcome{State: StateIdle, Recommendation: emptyRecommendation(), UpdatedAt: now}
	}
	return outcome
}
