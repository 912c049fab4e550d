package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	"github.com/vitrine-labs/vitrine-mod-api/internal/resolver"
)

// TestimonialSubmissionRepository persists candidate testimonial images. The
// underlying store supports transactions, so approval is offered as a single
// atomic operation instead of the two-step product path.
type TestimonialSubmissionRepository struct {
	db *sqlx.DB
}

// NewTestimonialSubmissionRepository constructs the repository.
func NewTestimonialSubmissionRepository(db *sqlx.DB) *TestimonialSubmissionRepository {
	return &TestimonialSubmissionRepository{db: db}
}

// ListByStatus returns submissions matching the canonical status, newest
// first, tolerating legacy column naming and a missing status column.
func (r *TestimonialSubmissionRepository) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.TestimonialSubmission, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM testimonial_submissions`)
	if err != nil {
		return nil, fmt.Errorf("list testimonial submissions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	result := make([]models.TestimonialSubmission, 0)
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan testimonial submission: %w", err)
		}
		sub := resolver.DecodeTestimonialSubmission(resolver.Resolve(raw))
		if sub.Status == status {
			result = append(result, *sub)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate testimonial submissions: %w", err)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result, nil
}

// Create inserts a new submission with the status forced to pending.
func (r *TestimonialSubmissionRepository) Create(ctx context.Context, sub *models.TestimonialSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.Status = models.SubmissionStatusPending
	sub.ReviewerID = nil
	sub.ReviewerNotes = nil
	sub.ReviewedAt = nil
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO testimonial_submissions
	(id, submitter_id, image_url, caption, status, submitted_at)
	VALUES (:id, :submitter_id, :image_url, :caption, :status, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create testimonial submission: %w", err)
	}
	return nil
}

// GetByID fetches one submission through the field resolver.
func (r *TestimonialSubmissionRepository) GetByID(ctx context.Context, id string) (*models.TestimonialSubmission, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM testimonial_submissions WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("get testimonial submission: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get testimonial submission: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	raw := map[string]interface{}{}
	if err := rows.MapScan(raw); err != nil {
		return nil, fmt.Errorf("scan testimonial submission: %w", err)
	}
	return resolver.DecodeTestimonialSubmission(resolver.Resolve(raw)), nil
}

// TransitionStatus performs the compare-and-set review transition; used for
// rejection, which needs no catalog side effect. Returns sql.ErrNoRows when
// the status guard fails.
func (r *TestimonialSubmissionRepository) TransitionStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewerID string, comments *string, reviewedAt time.Time) error {
	const query = `UPDATE testimonial_submissions
	SET status = $2, reviewer_id = $3, reviewer_comments = $4, reviewed_at = $5
	WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query, id, status, reviewerID, comments, reviewedAt, models.SubmissionStatusPending)
	if err != nil {
		return fmt.Errorf("transition testimonial submission: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check transition rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ApproveAndPublish runs the whole approval inside one transaction: the
// compare-and-set status transition, the catalog insert, and the submission
// cleanup either all commit or none do. There is no partial-failure window.
func (r *TestimonialSubmissionRepository) ApproveAndPublish(ctx context.Context, id, reviewerID string, comments *string, entry *models.CatalogTestimonial) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const transition = `UPDATE testimonial_submissions
	SET status = $2, reviewer_id = $3, reviewer_comments = $4, reviewed_at = $5
	WHERE id = $1 AND status = $6`
	result, err := tx.ExecContext(ctx, transition, id, models.SubmissionStatusApproved, reviewerID, comments, time.Now().UTC(), models.SubmissionStatusPending)
	if err != nil {
		return fmt.Errorf("approve testimonial submission: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check approval rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO catalog_testimonials (id, image_url, caption, active, order_index, created_at)
	VALUES (:id, :image_url, :caption, :active, :order_index, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("publish testimonial: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM testimonial_submissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("retire testimonial submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval tx: %w", err)
	}
	return nil
}
