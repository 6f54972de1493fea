package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"partyquiz/models"

	"github.com/google/uuid"
)

// Broadcaster publishes sync-channel events for a session. The websocket hub
// implements it; tests use a recording fake.
type Broadcaster interface {
	Publish(pin string, event models.Event)
}

// GameService is the session lifecycle controller. It is the single writer of
// authoritative state: every transition goes through its mutex, loads the
// snapshot, mutates it, and saves it back wholesale.
type GameService struct {
	store     SessionStore
	recorder  Recorder
	broadcast Broadcaster
	now       func() time.Time

	timeLimit   time.Duration
	revealDelay time.Duration

	mu        sync.Mutex
	activePin string
	countdown *Countdown
}

func NewGameService(store SessionStore, recorder Recorder, timeLimitSeconds int) *GameService {
	return &GameService{
		store:       store,
		recorder:    recorder,
		now:         time.Now,
		timeLimit:   time.Duration(timeLimitSeconds) * time.Second,
		revealDelay: 2 * time.Second,
	}
}

// SetBroadcaster wires the push channel in after construction; the hub needs
// the service and the service needs the hub.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcast = b
}

// SetClock overrides the time source for deterministic tests.
func (s *GameService) SetClock(now func() time.Time) {
	s.now = now
}

// SetTimeLimit overrides the countdown length, mostly so tests don't wait.
func (s *GameService) SetTimeLimit(d time.Duration) {
	s.timeLimit = d
}

func (s *GameService) timeLimitSeconds() int {
	return int(s.timeLimit / time.Second)
}

// EnsureSession returns the single active session, creating one in the lobby
// phase if none exists yet. Only one session handle is live at a time.
func (s *GameService) EnsureSession(ctx context.Context) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePin != "" {
		state, err := s.store.Load(ctx, s.activePin)
		if err == nil {
			return state, nil
		}
		if err != models.ErrSessionNotFound {
			return nil, err
		}
		// Snapshot expired underneath us; mint a fresh session.
		s.activePin = ""
	}

	state := &models.SessionState{
		Pin:            generatePin(),
		Token:          generateToken(),
		Phase:          models.PhaseLobby,
		TimeLimit:      s.timeLimitSeconds(),
		NextQuestionID: 1,
		CreatedAt:      s.now(),
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	s.activePin = state.Pin
	log.Printf("Created session %s", state.Pin)
	return state, nil
}

// ActiveState loads the current session snapshot.
func (s *GameService) ActiveState(ctx context.Context) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadActive(ctx)
}

// FindByPin loads the session identified by a 6-digit PIN.
func (s *GameService) FindByPin(ctx context.Context, pin string) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(ctx, pin, "")
}

// FindByToken loads the session identified by an opaque join token.
func (s *GameService) FindByToken(ctx context.Context, token string) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(ctx, "", token)
}

func (s *GameService) loadActive(ctx context.Context) (*models.SessionState, error) {
	if s.activePin == "" {
		return nil, models.ErrSessionNotFound
	}
	return s.store.Load(ctx, s.activePin)
}

// resolve matches a session by PIN or token; mismatches are a NotFound, never
// a mutation.
func (s *GameService) resolve(ctx context.Context, pin, token string) (*models.SessionState, error) {
	state, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	if pin != "" && state.Pin != strings.TrimSpace(pin) {
		return nil, models.ErrSessionNotFound
	}
	if token != "" && state.Token != strings.TrimSpace(token) {
		return nil, models.ErrSessionNotFound
	}
	return state, nil
}

// StartGame moves lobby -> question: index 0, all scores cleared, first
// question broadcast with a fresh countdown.
func (s *GameService) StartGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil {
		return err
	}
	if state.Phase != models.PhaseLobby {
		return models.ErrWrongPhase
	}
	if !CanStart(state) {
		return models.ErrQuizIncomplete
	}

	state.CurrentQuestion = 0
	state.Answers = nil
	for i := range state.Players {
		state.Players[i].Score = 0
	}
	return s.beginQuestion(ctx, state)
}

// beginQuestion publishes the active question and arms its countdown. Any
// previous countdown is cancelled first, so at most one is ever live.
func (s *GameService) beginQuestion(ctx context.Context, state *models.SessionState) error {
	question := state.ActiveQuestion()
	if question == nil {
		return models.ErrWrongPhase
	}

	state.Phase = models.PhaseQuestion
	state.StartedAt = s.now()
	state.RevealedAt = time.Time{}
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}

	s.publish(state.Pin, models.Event{
		Type: models.EventQuestion,
		Payload: models.QuestionPayload{
			Question:       question.PublicView(),
			QuestionNumber: state.CurrentQuestion + 1,
			TotalQuestions: len(state.Questions),
			TimeLimit:      state.TimeLimit,
		},
	})

	s.stopCountdown()
	pin, questionID := state.Pin, question.ID
	s.countdown = StartCountdown(s.timeLimit, func() {
		s.questionExpired(pin, questionID)
	})
	log.Printf("Session %s: question %d/%d started", state.Pin, state.CurrentQuestion+1, len(state.Questions))
	return nil
}

// questionExpired runs on countdown expiry. A stale firing (phase moved on,
// countdown replaced) is a no-op.
func (s *GameService) questionExpired(pin string, questionID int64) {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil || state.Pin != pin {
		return
	}
	question := state.ActiveQuestion()
	if state.Phase != models.PhaseQuestion || question == nil || question.ID != questionID {
		return
	}
	if err := s.endQuestion(ctx, state); err != nil {
		log.Printf("Session %s: failed to end question: %v", pin, err)
	}
}

// endQuestion moves question -> reveal and publishes ranked results with the
// correct answer exposed.
func (s *GameService) endQuestion(ctx context.Context, state *models.SessionState) error {
	s.stopCountdown()

	question := state.ActiveQuestion()
	state.Phase = models.PhaseReveal
	state.RevealedAt = s.now()
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}

	s.publish(state.Pin, models.Event{
		Type: models.EventResults,
		Payload: models.ResultsPayload{
			Question:    *question,
			CorrectSlot: question.CorrectSlot,
			Rankings:    TopRankings(Rankings(state.Players)),
			TimeLimit:   state.TimeLimit,
		},
	})
	log.Printf("Session %s: question %d revealed", state.Pin, state.CurrentQuestion+1)
	return nil
}

// NextQuestion advances reveal -> question, or reveal -> finished when the
// index runs past the last question. No countdown is started on finish.
func (s *GameService) NextQuestion(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil {
		return err
	}
	if state.Phase != models.PhaseReveal {
		return models.ErrWrongPhase
	}

	state.CurrentQuestion++
	if state.Finished() {
		return s.finishGame(ctx, state)
	}
	return s.beginQuestion(ctx, state)
}

func (s *GameService) finishGame(ctx context.Context, state *models.SessionState) error {
	s.stopCountdown()

	state.Phase = models.PhaseFinished
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}

	rankings := Rankings(state.Players)
	s.publish(state.Pin, models.Event{
		Type:    models.EventGameFinished,
		Payload: models.RankingsPayload{Rankings: TopRankings(rankings)},
	})
	s.archive(ctx, state, rankings)
	log.Printf("Session %s: game finished with %d players", state.Pin, len(state.Players))
	return nil
}

// ResetGame returns the session to the lobby from any phase: countdown
// cancelled, roster and answers cleared, index back to 0. The PIN, token and
// question list survive so the host can run the quiz again.
func (s *GameService) ResetGame(ctx context.Context) error {
	return s.clearToLobby(ctx, models.EventGameReset, false)
}

// EndGame ends the session and returns to the lobby. A game ended early (still
// in question or reveal) is archived with the standings it had.
func (s *GameService) EndGame(ctx context.Context) error {
	return s.clearToLobby(ctx, models.EventGameEnded, true)
}

func (s *GameService) clearToLobby(ctx context.Context, eventType string, archiveFirst bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil {
		return err
	}

	s.stopCountdown()

	if archiveFirst && state.Phase != models.PhaseFinished && state.Phase != models.PhaseLobby && len(state.Players) > 0 {
		if state.RevealedAt.IsZero() {
			state.RevealedAt = s.now()
		}
		s.archive(ctx, state, Rankings(state.Players))
	}

	state.Phase = models.PhaseLobby
	state.CurrentQuestion = 0
	state.Players = nil
	state.Answers = nil
	state.StartedAt = time.Time{}
	state.RevealedAt = time.Time{}
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}

	s.publish(state.Pin, models.Event{Type: eventType})
	log.Printf("Session %s: %s", state.Pin, eventType)
	return nil
}

// RegisterPlayer adds a player to the session matched by PIN or token.
func (s *GameService) RegisterPlayer(ctx context.Context, pin, token, name string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.resolve(ctx, pin, token)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > 20 {
		return nil, models.ErrNameInvalid
	}
	if state.Phase == models.PhaseFinished {
		return nil, models.ErrWrongPhase
	}
	if state.PlayerByName(trimmed) != nil {
		return nil, models.ErrNameTaken
	}

	player := models.Player{
		ID:        uuid.New().String(),
		Name:      trimmed,
		JoinOrder: len(state.Players),
		JoinedAt:  s.now(),
	}
	state.Players = append(state.Players, player)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	s.publish(state.Pin, models.Event{
		Type:    models.EventPlayerListUpdate,
		Payload: models.PlayerListPayload{PlayerCount: len(state.Players)},
	})
	log.Printf("Session %s: player %q joined (%d total)", state.Pin, trimmed, len(state.Players))
	return &player, nil
}

// SubmitAnswer records one player's answer for the active question. A second
// submission for the same question is rejected without touching the score.
// When every registered player has answered, the question ends early.
func (s *GameService) SubmitAnswer(ctx context.Context, pin, playerID, answer string) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.resolve(ctx, pin, "")
	if err != nil {
		return nil, err
	}
	if state.Phase != models.PhaseQuestion {
		return nil, models.ErrWrongPhase
	}
	player := state.PlayerByID(playerID)
	if player == nil {
		return nil, models.ErrPlayerNotFound
	}
	question := state.ActiveQuestion()
	if question == nil {
		return nil, models.ErrWrongPhase
	}
	if state.HasAnswered(playerID, question.ID) {
		return nil, models.ErrAlreadyAnswered
	}

	slot, err := models.SlotIndex(answer)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	timeTaken := submittedAt.Sub(state.StartedAt)
	if timeTaken < 0 {
		timeTaken = 0
	}
	isCorrect := slot == question.CorrectSlot
	points := CalculatePoints(timeTaken, s.timeLimit, isCorrect)

	recorded := models.Answer{
		QuestionID:  question.ID,
		PlayerID:    playerID,
		Slot:        slot,
		IsCorrect:   isCorrect,
		Points:      points,
		TimeTakenMs: timeTaken.Milliseconds(),
		SubmittedAt: submittedAt,
	}
	state.Answers = append(state.Answers, recorded)
	player.Score += points
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	s.publish(state.Pin, models.Event{
		To:   playerID,
		Type: models.EventAnswerResult,
		Payload: models.AnswerResultPayload{
			Success:      true,
			IsCorrect:    isCorrect,
			PointsEarned: points,
			TimeTakenMs:  recorded.TimeTakenMs,
		},
	})

	if state.AnswerCount(question.ID) == len(state.Players) {
		return &recorded, s.endQuestion(ctx, state)
	}
	return &recorded, nil
}

// HandleHostDisconnect ends the game for remaining players when the host
// connection drops mid-game.
func (s *GameService) HandleHostDisconnect(pin string) {
	ctx := context.Background()

	s.mu.Lock()
	state, err := s.loadActive(ctx)
	inGame := err == nil && state.Pin == pin &&
		(state.Phase == models.PhaseQuestion || state.Phase == models.PhaseReveal)
	s.mu.Unlock()

	if !inGame {
		return
	}
	log.Printf("Session %s: host disconnected mid-game, ending", pin)
	if err := s.EndGame(ctx); err != nil {
		log.Printf("Session %s: failed to end after host disconnect: %v", pin, err)
	}
}

// GameStateView builds the sanitized snapshot for players and the polling
// read. Correct slots only appear once the live question is over; the host
// control flags are derived, never stored.
func (s *GameService) GameStateView(state *models.SessionState) models.GameStatePayload {
	payload := models.GameStatePayload{
		Pin:             state.Pin,
		Phase:           state.Phase,
		CurrentQuestion: state.CurrentQuestion,
		TotalQuestions:  len(state.Questions),
		Rankings:        TopRankings(Rankings(state.Players)),
		PlayerCount:     len(state.Players),
		TimeLimit:       state.TimeLimit,
	}

	if question := state.ActiveQuestion(); question != nil {
		view := question.PublicView()
		payload.Question = &view
		if state.Phase == models.PhaseReveal {
			slot := question.CorrectSlot
			payload.CorrectSlot = &slot
		}
	}

	if state.Phase == models.PhaseReveal && s.now().Sub(state.RevealedAt) >= s.revealDelay {
		payload.CanAdvance = true
		payload.CanEnd = state.CurrentQuestion == len(state.Questions)-1
	}
	if state.Phase == models.PhaseFinished {
		payload.CanEnd = true
	}
	return payload
}

func (s *GameService) publish(pin string, event models.Event) {
	if s.broadcast != nil {
		s.broadcast.Publish(pin, event)
	}
}

func (s *GameService) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}

func (s *GameService) archive(ctx context.Context, state *models.SessionState, rankings []models.Ranking) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordFinishedGame(ctx, state, rankings); err != nil {
		log.Printf("Session %s: failed to archive game: %v", state.Pin, err)
	}
}

// generatePin mints a 6 decimal digit PIN.
func generatePin() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing is unrecoverable for PIN minting
		panic(err)
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String()
}

// generateToken mints the opaque join token used in share links.
func generateToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
