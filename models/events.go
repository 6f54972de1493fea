package models

// Event types carried over the sync channel. Both transport strategies
// (websocket push and snapshot polling) emit the same vocabulary.
const (
	EventGameState          = "game-state"
	EventPlayerListUpdate   = "player-list-update"
	EventQuestion           = "question"
	EventResults            = "results"
	EventGameFinished       = "game-finished"
	EventGameReset          = "game-reset"
	EventGameEnded          = "game-ended"
	EventRegistrationResult = "registration-result"
	EventAnswerResult       = "answer-result"
)

// Event is the envelope published for one session. To, when non-empty,
// addresses a single player; otherwise the event is for every participant.
type Event struct {
	Type    string      `json:"type"`
	To      string      `json:"-"`
	Payload interface{} `json:"payload,omitempty"`
}

// QuestionView is a question as players see it while it is live: the correct
// slot is withheld.
type QuestionView struct {
	ID      int64               `json:"id"`
	Text    string              `json:"text"`
	Answers [AnswerSlots]string `json:"answers"`
}

// PublicView strips the correct slot for broadcast during an active question.
func (q *Question) PublicView() QuestionView {
	return QuestionView{ID: q.ID, Text: q.Text, Answers: q.Answers}
}

// Ranking is one leaderboard row.
type Ranking struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type QuestionPayload struct {
	Question       QuestionView `json:"question"`
	QuestionNumber int          `json:"question_number"`
	TotalQuestions int          `json:"total_questions"`
	TimeLimit      int          `json:"time_limit_seconds"`
}

type ResultsPayload struct {
	Question    Question  `json:"question"` // correct slot revealed
	CorrectSlot int       `json:"correct_slot"`
	Rankings    []Ranking `json:"rankings"`
	TimeLimit   int       `json:"time_limit_seconds"`
}

type RankingsPayload struct {
	Rankings []Ranking `json:"rankings"`
}

type PlayerListPayload struct {
	PlayerCount int `json:"player_count"`
}

type RegistrationResultPayload struct {
	Success    bool   `json:"success"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Error      string `json:"error,omitempty"`
}

type AnswerResultPayload struct {
	Success      bool   `json:"success"`
	IsCorrect    bool   `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`
	TimeTakenMs  int64  `json:"time_taken_ms"`
	Error        string `json:"error,omitempty"`
}

// GameStatePayload is the sanitized snapshot served to players, both as the
// initial websocket sync and as the polling variant's read. Correct slots are
// only present once the phase has moved past the live question.
type GameStatePayload struct {
	Pin             string         `json:"pin"`
	Phase           Phase          `json:"phase"`
	CurrentQuestion int            `json:"current_question"`
	TotalQuestions  int            `json:"total_questions"`
	Question        *QuestionView  `json:"question,omitempty"`
	CorrectSlot     *int           `json:"correct_slot,omitempty"`
	Rankings        []Ranking      `json:"rankings"`
	PlayerCount     int            `json:"player_count"`
	TimeLimit       int            `json:"time_limit_seconds"`
	CanAdvance      bool           `json:"can_advance"`
	CanEnd          bool           `json:"can_end"`
}
