package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"partyquiz/models"
)

// fakeClock is a controllable time source for deterministic scoring.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recordingBroadcaster captures published events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []models.Event
}

func (b *recordingBroadcaster) Publish(_ string, event models.Event) {
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

func (b *recordingBroadcaster) last(eventType string) (models.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Type == eventType {
			return b.events[i], true
		}
	}
	return models.Event{}, false
}

// recordingRecorder captures archive calls.
type recordingRecorder struct {
	mu    sync.Mutex
	calls int
	last  *models.SessionState
}

func (r *recordingRecorder) RecordFinishedGame(_ context.Context, state *models.SessionState, _ []models.Ranking) error {
	r.mu.Lock()
	r.calls = r.calls + 1
	r.last = state
	r.mu.Unlock()
	return nil
}

func newTestService(t *testing.T) (*GameService, *recordingBroadcaster, *fakeClock) {
	t.Helper()
	svc := NewGameService(NewMemorySessionStore(), nil, 30)
	clock := newFakeClock()
	svc.SetClock(clock.Now)
	broadcast := &recordingBroadcaster{}
	svc.SetBroadcaster(broadcast)
	return svc, broadcast, clock
}

// buildQuiz fills the session with complete questions via the authoring API.
func buildQuiz(t *testing.T, svc *GameService, questions int) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	for i := 0; i < questions; i++ {
		q, err := svc.AddQuestion(ctx)
		if err != nil {
			t.Fatalf("AddQuestion: %v", err)
		}
		if err := svc.UpdateQuestion(ctx, q.ID, "text", "What is the answer?"); err != nil {
			t.Fatalf("UpdateQuestion text: %v", err)
		}
		for slot, answer := range []string{"A", "B", "C", "D"} {
			if err := svc.UpdateQuestion(ctx, q.ID, "answer-"+string(rune('0'+slot)), answer); err != nil {
				t.Fatalf("UpdateQuestion answer: %v", err)
			}
		}
		if err := svc.UpdateQuestion(ctx, q.ID, "correct", "2"); err != nil {
			t.Fatalf("UpdateQuestion correct: %v", err)
		}
	}
}
