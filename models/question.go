package models

import (
	"errors"
	"strings"
)

// AnswerSlots is the fixed number of answer options per question.
const AnswerSlots = 4

// Question is one entry in a session's question list. Answers always has
// exactly AnswerSlots entries; blank slots are legal until the game starts.
type Question struct {
	ID          int64               `json:"id"`
	Text        string              `json:"text"`
	Answers     [AnswerSlots]string `json:"answers"`
	CorrectSlot int                 `json:"correct_slot"`
}

// Complete reports whether the question can be played: non-blank text, all
// answer slots filled, and a correct slot in range.
func (q *Question) Complete() bool {
	if strings.TrimSpace(q.Text) == "" {
		return false
	}
	for _, a := range q.Answers {
		if strings.TrimSpace(a) == "" {
			return false
		}
	}
	return q.CorrectSlot >= 0 && q.CorrectSlot < AnswerSlots
}

var slotLetters = [AnswerSlots]string{"A", "B", "C", "D"}

// SlotIndex maps an answer letter ("A".."D", case-insensitive) to its slot.
func SlotIndex(letter string) (int, error) {
	upper := strings.ToUpper(strings.TrimSpace(letter))
	for i, l := range slotLetters {
		if l == upper {
			return i, nil
		}
	}
	return 0, errors.New("answer must be one of A, B, C or D")
}

// SlotLetter is the inverse of SlotIndex. Out-of-range slots yield "".
func SlotLetter(slot int) string {
	if slot < 0 || slot >= AnswerSlots {
		return ""
	}
	return slotLetters[slot]
}
