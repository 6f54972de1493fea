package models

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for a PIN or token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuizIncomplete is returned when StartGame is called before every
	// question passes validation.
	ErrQuizIncomplete = errors.New("quiz has missing or incomplete questions")
	// ErrWrongPhase is returned when an operation is invalid for the
	// session's current phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
	// ErrPlayerNotFound is returned when a player id is unknown to the session.
	ErrPlayerNotFound = errors.New("player not found in session")
	// ErrNameTaken is returned when a joining player's name is already in use.
	ErrNameTaken = errors.New("player name already taken")
	// ErrNameInvalid is returned when a joining player's name is blank or too long.
	ErrNameInvalid = errors.New("player name must be 1-20 characters")
	// ErrAlreadyAnswered is returned on a second submission for the same question.
	ErrAlreadyAnswered = errors.New("answer already submitted for this question")
	// ErrBadPassword is returned when the host password does not match.
	ErrBadPassword = errors.New("incorrect host password")
)
