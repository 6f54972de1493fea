package models

import "time"

// Phase is the single lifecycle stage of a session. UI flags like "show next
// button" are derived from it, never stored separately.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseQuestion Phase = "question"
	PhaseReveal   Phase = "reveal"
	PhaseFinished Phase = "finished"
)

// Player is one registered participant of a session.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	JoinOrder int       `json:"join_order"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Answer records one player's submission for one question. Answers are
// append-only: a player gets at most one per question.
type Answer struct {
	QuestionID  int64     `json:"question_id"`
	PlayerID    string    `json:"player_id"`
	Slot        int       `json:"slot"`
	IsCorrect   bool      `json:"is_correct"`
	Points      int       `json:"points"`
	TimeTakenMs int64     `json:"time_taken_ms"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SessionState is the canonical snapshot of one game session. It is written
// wholesale to the session store on every mutation; the lifecycle controller
// is its only writer.
type SessionState struct {
	Pin             string     `json:"pin"`
	Token           string     `json:"token"`
	Phase           Phase      `json:"phase"`
	Questions       []Question `json:"questions"`
	CurrentQuestion int        `json:"current_question"`
	Players         []Player   `json:"players"`
	Answers         []Answer   `json:"answers"`
	TimeLimit       int        `json:"time_limit_seconds"`
	NextQuestionID  int64      `json:"next_question_id"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       time.Time  `json:"question_started_at"`
	RevealedAt      time.Time  `json:"revealed_at"`
}

// ActiveQuestion returns the question at CurrentQuestion, or nil when the
// index has run past the end of the list.
func (s *SessionState) ActiveQuestion() *Question {
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentQuestion]
}

// QuestionByID returns the question with the given id, or nil.
func (s *SessionState) QuestionByID(id int64) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// PlayerByID returns the player with the given id, or nil.
func (s *SessionState) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// PlayerByName returns the player with the given display name, or nil.
func (s *SessionState) PlayerByName(name string) *Player {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i]
		}
	}
	return nil
}

// HasAnswered reports whether the player already submitted for the question.
func (s *SessionState) HasAnswered(playerID string, questionID int64) bool {
	for i := range s.Answers {
		if s.Answers[i].PlayerID == playerID && s.Answers[i].QuestionID == questionID {
			return true
		}
	}
	return false
}

// AnswerCount counts submissions recorded for the question.
func (s *SessionState) AnswerCount(questionID int64) int {
	n := 0
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			n++
		}
	}
	return n
}

// Finished reports whether the question index has run past the last question.
func (s *SessionState) Finished() bool {
	return s.CurrentQuestion >= len(s.Questions)
}
