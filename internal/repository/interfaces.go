package repository

import (
	"context"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
)

// SummaryRepository defines storage operations for chat summaries.
// Summaries are append-only; there is no update.
type SummaryRepository interface {
	Save(ctx context.Context, summary *models.ChatSummary) (string, error)
	Get(ctx context.Context, id string) (*models.ChatSummary, error)
	List(ctx context.Context, limit, offset int) ([]*models.ChatSummary, error)
	// CountPriorVisits returns how many summaries already exist for a
	// contact email, used to populate userInfo.previousVisits.
	CountPriorVisits(ctx context.Context, email string) (int, error)
}
