package services

import (
	"context"
	"fmt"
	"log"

	"partyquiz/models"

	"gorm.io/gorm"
)

// Recorder archives a finished game. The live game never depends on it;
// failures are logged and swallowed by the caller.
type Recorder interface {
	RecordFinishedGame(ctx context.Context, state *models.SessionState, rankings []models.Ranking) error
}

// GormRecorder writes finished games to postgres.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) RecordFinishedGame(ctx context.Context, state *models.SessionState, rankings []models.Ranking) error {
	record := models.GameRecord{
		Pin:           state.Pin,
		QuestionCount: len(state.Questions),
		PlayerCount:   len(state.Players),
		StartedAt:     state.CreatedAt,
		FinishedAt:    state.RevealedAt,
	}

	tx := r.db.WithContext(ctx).Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create game record: %w", err)
	}

	for _, rank := range rankings {
		playerRecord := models.PlayerRecord{
			GameRecordID: record.ID,
			PlayerID:     rank.PlayerID,
			Name:         rank.Name,
			Score:        rank.Score,
			Rank:         rank.Rank,
		}
		if err := tx.Create(&playerRecord).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create player record: %w", err)
		}
	}

	for _, answer := range state.Answers {
		answerRecord := models.AnswerRecord{
			GameRecordID: record.ID,
			PlayerID:     answer.PlayerID,
			QuestionID:   answer.QuestionID,
			Slot:         answer.Slot,
			IsCorrect:    answer.IsCorrect,
			Points:       answer.Points,
			TimeTakenMs:  answer.TimeTakenMs,
		}
		if err := tx.Create(&answerRecord).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create answer record: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	log.Printf("Archived game %s: %d players, %d answers", state.Pin, len(state.Players), len(state.Answers))
	return nil
}
