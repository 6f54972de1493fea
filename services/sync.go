package services

import (
	"context"
	"time"

	"partyquiz/models"
)

// SyncChannel is how a participant observes session state transitions. Both
// strategies emit the same event vocabulary: the push strategy relays hub
// broadcasts, the polling strategy diffs periodic snapshot reads. Consumers
// stay ignorant of which one they hold.
type SyncChannel interface {
	Events() <-chan models.Event
	Close()
}

// DefaultPollInterval is how often the polling strategy re-reads the snapshot.
const DefaultPollInterval = 500 * time.Millisecond

// pushChannel adapts a hub subscription to SyncChannel.
type pushChannel struct {
	events <-chan models.Event
	cancel func()
}

// NewPushChannel subscribes to hub broadcasts for a session.
func NewPushChannel(hub *Hub, pin string) SyncChannel {
	events, cancel := hub.Subscribe(pin)
	return &pushChannel{events: events, cancel: cancel}
}

func (p *pushChannel) Events() <-chan models.Event { return p.events }
func (p *pushChannel) Close()                      { p.cancel() }

// SnapshotReader is the read half of a session store, enough for polling.
type SnapshotReader interface {
	Load(ctx context.Context, pin string) (*models.SessionState, error)
}

// PollWatcher re-reads the session snapshot on a fixed interval and emits at
// most one event per detected change: a new question id, a phase flip, or a
// roster change. If the store is unavailable the watcher stays silent in its
// last known state; there is no replay beyond the current snapshot.
type PollWatcher struct {
	store    SnapshotReader
	pin      string
	interval time.Duration

	events chan models.Event
	done   chan struct{}

	lastQuestionID  int64
	lastPhase       models.Phase
	lastPlayerCount int
	primed          bool
}

func NewPollWatcher(store SnapshotReader, pin string, interval time.Duration) *PollWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	w := &PollWatcher{
		store:    store,
		pin:      pin,
		interval: interval,
		events:   make(chan models.Event, 16),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *PollWatcher) Events() <-chan models.Event { return w.events }

func (w *PollWatcher) Close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *PollWatcher) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *PollWatcher) poll() {
	state, err := w.store.Load(context.Background(), w.pin)
	if err != nil {
		// Channel unavailable: hold the last known state.
		return
	}

	if !w.primed {
		// First read establishes the baseline without emitting.
		w.remember(state)
		w.primed = true
		return
	}

	if count := len(state.Players); count != w.lastPlayerCount {
		w.emit(models.Event{
			Type:    models.EventPlayerListUpdate,
			Payload: models.PlayerListPayload{PlayerCount: count},
		})
	}

	question := state.ActiveQuestion()
	if state.Phase == models.PhaseQuestion && question != nil && question.ID != w.lastQuestionID {
		w.emit(models.Event{
			Type: models.EventQuestion,
			Payload: models.QuestionPayload{
				Question:       question.PublicView(),
				QuestionNumber: state.CurrentQuestion + 1,
				TotalQuestions: len(state.Questions),
				TimeLimit:      state.TimeLimit,
			},
		})
	}

	if state.Phase != w.lastPhase {
		switch state.Phase {
		case models.PhaseReveal:
			if question != nil {
				w.emit(models.Event{
					Type: models.EventResults,
					Payload: models.ResultsPayload{
						Question:    *question,
						CorrectSlot: question.CorrectSlot,
						Rankings:    TopRankings(Rankings(state.Players)),
						TimeLimit:   state.TimeLimit,
					},
				})
			}
		case models.PhaseFinished:
			w.emit(models.Event{
				Type:    models.EventGameFinished,
				Payload: models.RankingsPayload{Rankings: TopRankings(Rankings(state.Players))},
			})
		case models.PhaseLobby:
			w.emit(models.Event{Type: models.EventGameReset})
		}
	}

	w.remember(state)
}

func (w *PollWatcher) remember(state *models.SessionState) {
	w.lastPhase = state.Phase
	w.lastPlayerCount = len(state.Players)
	if q := state.ActiveQuestion(); q != nil && state.Phase == models.PhaseQuestion {
		w.lastQuestionID = q.ID
	}
}

func (w *PollWatcher) emit(event models.Event) {
	select {
	case w.events <- event:
	default:
	}
}
