package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"partyquiz/models"
)

func sampleState(pin string) *models.SessionState {
	return &models.SessionState{
		Pin:   pin,
		Token: "tok-" + pin,
		Phase: models.PhaseLobby,
		Questions: []models.Question{{
			ID:          1,
			Text:        "q",
			Answers:     [models.AnswerSlots]string{"a", "b", "c", "d"},
			CorrectSlot: 2,
		}},
		TimeLimit:      30,
		NextQuestionID: 2,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, "123456"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("Load missing: %v, want ErrSessionNotFound", err)
	}

	state := sampleState("123456")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "123456")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != state.Token || len(loaded.Questions) != 1 {
		t.Errorf("loaded snapshot mismatch: %+v", loaded)
	}

	if err := store.Delete(ctx, "123456"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "123456"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Load after delete: %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	state := sampleState("654321")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating what Save and Load handed out must not leak into the store.
	state.Questions[0].Text = "mutated after save"
	first, _ := store.Load(ctx, "654321")
	first.Questions[0].Text = "mutated after load"
	first.Players = append(first.Players, models.Player{ID: "p1"})

	second, err := store.Load(ctx, "654321")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if second.Questions[0].Text != "q" {
		t.Errorf("stored text = %q, caller mutation leaked in", second.Questions[0].Text)
	}
	if len(second.Players) != 0 {
		t.Errorf("stored players = %d, caller append leaked in", len(second.Players))
	}
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	if _, err := store.Load(ctx, "123456"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("Load missing: %v, want ErrSessionNotFound", err)
	}

	state := sampleState("123456")
	state.Players = []models.Player{{ID: "p1", Name: "ada", Score: 2667}}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "123456")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Pin != "123456" || loaded.Phase != models.PhaseLobby {
		t.Errorf("loaded snapshot mismatch: %+v", loaded)
	}
	if len(loaded.Players) != 1 || loaded.Players[0].Score != 2667 {
		t.Errorf("players did not survive the round trip: %+v", loaded.Players)
	}
	if loaded.Questions[0].CorrectSlot != 2 {
		t.Errorf("correct slot = %d, want 2", loaded.Questions[0].CorrectSlot)
	}

	if err := store.Delete(ctx, "123456"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "123456"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Load after delete: %v, want ErrSessionNotFound", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, sampleState("222333")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Load(ctx, "222333"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Load after TTL: %v, want ErrSessionNotFound", err)
	}
}
