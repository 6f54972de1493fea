package services

import (
	"context"
	"strconv"
	"strings"

	"partyquiz/models"
)

// Authoring operations mutate the question list while the session sits in
// the lobby. Questions are immutable once a game has started; every mutation
// persists the full snapshot.

// AddQuestion appends a blank question with a freshly minted monotonic id.
func (s *GameService) AddQuestion(ctx context.Context) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	if state.Phase != models.PhaseLobby {
		return nil, models.ErrWrongPhase
	}

	question := models.Question{ID: state.NextQuestionID}
	state.NextQuestionID++
	state.Questions = append(state.Questions, question)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return &question, nil
}

// DeleteQuestion removes a question by id. An unknown id is not an error.
func (s *GameService) DeleteQuestion(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil {
		return err
	}
	if state.Phase != models.PhaseLobby {
		return models.ErrWrongPhase
	}

	kept := state.Questions[:0]
	for _, q := range state.Questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	state.Questions = kept
	return s.store.Save(ctx, state)
}

// UpdateQuestion mutates one field of a question: "text", "answer-0" through
// "answer-3", or "correct". Unknown ids and unknown fields are no-ops.
func (s *GameService) UpdateQuestion(ctx context.Context, id int64, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadActive(ctx)
	if err != nil {
		return err
	}
	if state.Phase != models.PhaseLobby {
		return models.ErrWrongPhase
	}

	question := state.QuestionByID(id)
	if question == nil {
		return nil
	}

	switch {
	case field == "text":
		question.Text = value
	case strings.HasPrefix(field, "answer-"):
		slot, err := strconv.Atoi(strings.TrimPrefix(field, "answer-"))
		if err != nil || slot < 0 || slot >= models.AnswerSlots {
			return nil
		}
		question.Answers[slot] = value
	case field == "correct":
		slot, err := strconv.Atoi(value)
		if err != nil || slot < 0 || slot >= models.AnswerSlots {
			return nil
		}
		question.CorrectSlot = slot
	default:
		return nil
	}
	return s.store.Save(ctx, state)
}

// CanStart reports whether the quiz passes authoring validation: at least one
// question, and every question complete.
func CanStart(state *models.SessionState) bool {
	if len(state.Questions) == 0 {
		return false
	}
	for i := range state.Questions {
		if !state.Questions[i].Complete() {
			return false
		}
	}
	return true
}
