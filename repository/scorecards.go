package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/google/uuid"
)

// SaveInterviewAndScorecard inserts an interview and its scorecard in a
// single transaction. Either both rows land or neither does, so a scorecard
// can never exist without its interview (and vice versa). The interview id
// is assigned up front so the scorecard row can reference it within the
// same transaction.
func (r *GORMRepository) SaveInterviewAndScorecard(ctx context.Context, interview *models.Interview, scorecard *models.Scorecard) error {
	if interview.ID == "" {
		interview.ID = uuid.NewString()
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Create(interview).Error; err != nil {
		tx.Rollback()
		slog.Error("Failed to save interview", "error", err, "user_id", interview.UserID)
		return fmt.Errorf("failed to save interview: %w", err)
	}

	scorecard.InterviewID = interview.ID
	scorecard.UserID = interview.UserID
	if err := tx.Create(scorecard).Error; err != nil {
		tx.Rollback()
		slog.Error("Failed to save scorecard", "error", err, "interview_id", interview.ID)
		return fmt.Errorf("failed to save scorecard: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("Interview and scorecard saved", "interview_id", interview.ID, "scorecard_id", scorecard.ID, "user_id", interview.UserID)
	return nil
}

// GetScorecards retrieves a user's scorecards, newest first, with the owning
// interview preloaded. limit <= 0 means no limit (pro tier full history).
func (r *GORMRepository) GetScorecards(ctx context.Context, userID string, limit int) ([]models.Scorecard, error) {
	var scorecards []models.Scorecard

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Interview").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&scorecards).Error; err != nil {
		slog.Error("Failed to get scorecards", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get scorecards: %w", err)
	}

	slog.Info("Scorecards retrieved", "user_id", userID, "count", len(scorecards))
	return scorecards, nil
}

// CountScorecards returns how many scorecards a user has saved in total,
// regardless of any history-depth limit applied to listings.
func (r *GORMRepository) CountScorecards(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Scorecard{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		slog.Error("Failed to count scorecards", "error", err, "user_id", userID)
		return 0, fmt.Errorf("failed to count scorecards: %w", err)
	}
	return count, nil
}
