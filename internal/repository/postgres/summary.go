package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
	"github.com/daveenci-ai/leadchat-backend/internal/repository"
)

// SummaryRepository implements repository.SummaryRepository using PostgreSQL
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new PostgreSQL summary repository
func NewSummaryRepository(db *sqlx.DB) repository.SummaryRepository {
	return &SummaryRepository{db: db}
}

// Save inserts a summary and returns its storage-assigned id.
func (r *SummaryRepository) Save(ctx context.Context, summary *models.ChatSummary) (string, error) {
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	summary.CreatedAt = time.Now()

	query := `
		INSERT INTO chat_summaries
			(id, interaction_date, contact_info, contact_name, contact_email, contact_phone,
			 contact_company, chat_summary, services_discussed, key_pain_points,
			 call_to_action_offered, next_step, lead_score, lead_qualification, created_at)
		VALUES
			(:id, :interaction_date, :contact_info, :contact_name, :contact_email, :contact_phone,
			 :contact_company, :chat_summary, :services_discussed, :key_pain_points,
			 :call_to_action_offered, :next_step, :lead_score, :lead_qualification, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return "", fmt.Errorf("failed to save summary: %w", err)
	}

	return summary.ID, nil
}

// Get retrieves a summary by ID
func (r *SummaryRepository) Get(ctx context.Context, id string) (*models.ChatSummary, error) {
	var summary models.ChatSummary
	query := `
		SELECT id, interaction_date, contact_info, contact_name, contact_email, contact_phone,
		       contact_company, chat_summary, services_discussed, key_pain_points,
		       call_to_action_offered, next_step, lead_score, lead_qualification, created_at
		FROM chat_summaries
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &summary, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &summary, nil
}

// List retrieves summaries newest-first
func (r *SummaryRepository) List(ctx context.Context, limit, offset int) ([]*models.ChatSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	var summaries []*models.ChatSummary
	query := `
		SELECT id, interaction_date, contact_info, contact_name, contact_email, contact_phone,
		       contact_company, chat_summary, services_discussed, key_pain_points,
		       call_to_action_offered, next_step, lead_score, lead_qualification, created_at
		FROM chat_summaries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &summaries, query, limit, offset); err != nil {
		return nil, err
	}

	return summaries, nil
}

// CountPriorVisits counts existing summaries for a contact email.
func (r *SummaryRepository) CountPriorVisits(ctx context.Context, email string) (int, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, nil
	}

	var count int
	query := `SELECT COUNT(*) FROM chat_summaries WHERE contact_email = $1`
	if err := r.db.GetContext(ctx, &count, query, email); err != nil {
		return 0, err
	}

	return count, nil
}
