package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/teebox-golf/teebox-api/internal/models"
)

// ApplicationRepository persists waitlist applications and their scores.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, email, display_name, role, share_channels, learn_channels, uses,
spend_bracket, buy_frequency, share_frequency, city_region, invite_code, terms_accepted,
status, score, score_breakdown, created_at, updated_at`

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	const query = `INSERT INTO waitlist_applications (id, email, display_name, role, share_channels, learn_channels, uses,
spend_bracket, buy_frequency, share_frequency, city_region, invite_code, terms_accepted,
status, score, score_breakdown, created_at, updated_at)
VALUES (:id, :email, :display_name, :role, :share_channels, :learn_channels, :uses,
:spend_bracket, :buy_frequency, :share_frequency, :city_region, :invite_code, :terms_accepted,
:status, :score, :score_breakdown, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByEmail returns the application submitted with the given email.
func (r *ApplicationRepository) FindByEmail(ctx context.Context, email string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM waitlist_applications WHERE email = $1 LIMIT 1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by email: %w", err)
	}
	return &app, nil
}

// UpdateStatus transitions an application's lifecycle status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE waitlist_applications SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// UpdateScore rewrites the stored score and breakdown, used by rescoring.
func (r *ApplicationRepository) UpdateScore(ctx context.Context, id string, score int, breakdown models.ScoreBreakdown) error {
	const query = `UPDATE waitlist_applications SET score = $2, score_breakdown = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score, breakdown, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application score: %w", err)
	}
	return nil
}

// PendingCount returns the size of the pending pool.
func (r *ApplicationRepository) PendingCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM waitlist_applications WHERE status = 'pending'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending applications: %w", err)
	}
	return count, nil
}

// CountByStatus counts applications in the given status.
func (r *ApplicationRepository) CountByStatus(ctx context.Context, status models.ApplicationStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM waitlist_applications WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("count applications by status: %w", err)
	}
	return count, nil
}

// ApprovedSince counts approvals whose last transition happened at or after
// the given instant, used for today's wave fill.
func (r *ApplicationRepository) ApprovedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM waitlist_applications WHERE status = 'approved' AND updated_at >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("count approvals since: %w", err)
	}
	return count, nil
}

// PendingRank returns the 1-based rank of a pending application ordered by
// admission priority: score descending, then submission time ascending.
func (r *ApplicationRepository) PendingRank(ctx context.Context, email string) (int, error) {
	const query = `SELECT rank FROM (
SELECT email, RANK() OVER (ORDER BY score DESC, created_at ASC) AS rank
FROM waitlist_applications WHERE status = 'pending') ranked WHERE email = $1`
	var rank int
	if err := r.db.GetContext(ctx, &rank, query, email); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("pending rank: %w", err)
	}
	return rank, nil
}

// ListPending pages through pending applications in admission order.
func (r *ApplicationRepository) ListPending(ctx context.Context, limit, offset int) ([]models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM waitlist_applications WHERE status = 'pending'
ORDER BY score DESC, created_at ASC LIMIT %d OFFSET %d`, applicationColumns, limit, offset)
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query); err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	return apps, nil
}

// PendingScores returns all pending scores for distribution statistics.
func (r *ApplicationRepository) PendingScores(ctx context.Context) ([]int, error) {
	const query = `SELECT score FROM waitlist_applications WHERE status = 'pending'`
	var scores []int
	if err := r.db.SelectContext(ctx, &scores, query); err != nil {
		return nil, fmt.Errorf("pending scores: %w", err)
	}
	return scores, nil
}
