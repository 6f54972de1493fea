package models

import (
	"time"

	"gorm.io/gorm"
)

// GameRecord is the durable row written when a session finishes. The live
// snapshot never reads these back; they exist for after-the-fact reporting.
type GameRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Pin           string         `json:"pin" gorm:"index;not null"`
	QuestionCount int            `json:"question_count" gorm:"not null"`
	PlayerCount   int            `json:"player_count" gorm:"not null"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Players []PlayerRecord `json:"players,omitempty" gorm:"foreignKey:GameRecordID"`
	Answers []AnswerRecord `json:"answers,omitempty" gorm:"foreignKey:GameRecordID"`
}

type PlayerRecord struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	GameRecordID uint           `json:"game_record_id" gorm:"not null;index"`
	PlayerID     string         `json:"player_id" gorm:"not null"`
	Name         string         `json:"name" gorm:"not null"`
	Score        int            `json:"score" gorm:"not null;default:0"`
	Rank         int            `json:"rank" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type AnswerRecord struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	GameRecordID uint           `json:"game_record_id" gorm:"not null;index"`
	PlayerID     string         `json:"player_id" gorm:"not null"`
	QuestionID   int64          `json:"question_id" gorm:"not null"`
	Slot         int            `json:"slot" gorm:"not null"`
	IsCorrect    bool           `json:"is_correct" gorm:"not null"`
	Points       int            `json:"points" gorm:"not null"`
	TimeTakenMs  int64          `json:"time_taken_ms" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
