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

// ProductSubmissionRepository persists candidate affiliate products in the
// pending/approved/rejected store.
type ProductSubmissionRepository struct {
	db *sqlx.DB
}

// NewProductSubmissionRepository constructs the repository.
func NewProductSubmissionRepository(db *sqlx.DB) *ProductSubmissionRepository {
	return &ProductSubmissionRepository{db: db}
}

// ListByStatus returns submissions whose canonical status matches, newest
// first. Rows are read raw and canonicalised through the field resolver, so a
// store generation that still uses legacy column names, or one whose status
// column is missing entirely (every row counts as pending), lists correctly
// instead of erroring.
func (r *ProductSubmissionRepository) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.ProductSubmission, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM product_submissions`)
	if err != nil {
		return nil, fmt.Errorf("list product submissions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	result := make([]models.ProductSubmission, 0)
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan product submission: %w", err)
		}
		sub := resolver.DecodeProductSubmission(resolver.Resolve(raw))
		if sub.Status == status {
			result = append(result, *sub)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product submissions: %w", err)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result, nil
}

// Create inserts a new submission. The stored status is always pending
// regardless of what the caller put in the payload.
func (r *ProductSubmissionRepository) Create(ctx context.Context, sub *models.ProductSubmission) error {
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
	const query = `INSERT INTO product_submissions
	(id, submitter_id, name, description, price, category, platform, image_url, image_url_alt, benefits, commission_rate, sales_page_url, status, submitted_at)
	VALUES (:id, :submitter_id, :name, :description, :price, :category, :platform, :image_url, :image_url_alt, :benefits, :commission_rate, :sales_page_url, :status, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create product submission: %w", err)
	}
	return nil
}

// GetByID fetches one submission through the field resolver.
func (r *ProductSubmissionRepository) GetByID(ctx context.Context, id string) (*models.ProductSubmission, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM product_submissions WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("get product submission: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get product submission: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	raw := map[string]interface{}{}
	if err := rows.MapScan(raw); err != nil {
		return nil, fmt.Errorf("scan product submission: %w", err)
	}
	return resolver.DecodeProductSubmission(resolver.Resolve(raw)), nil
}

// TransitionStatus performs the pending→terminal review transition as a
// compare-and-set conditioned on the stored status, so two concurrent
// reviewers cannot both win. Returns sql.ErrNoRows when the guard fails
// (row gone or already reviewed); callers disambiguate via GetByID.
func (r *ProductSubmissionRepository) TransitionStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewerID string, comments *string, reviewedAt time.Time) error {
	const query = `UPDATE product_submissions
	SET status = $2, reviewer_id = $3, reviewer_comments = $4, reviewed_at = $5
	WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query, id, status, reviewerID, comments, reviewedAt, models.SubmissionStatusPending)
	if err != nil {
		return fmt.Errorf("transition product submission: %w", err)
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

// Delete removes a submission row. A row that is already gone is not an
// error; the two-step promotion treats redundant cleanup as success.
func (r *ProductSubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_submissions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product submission: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check delete rows: %w", err)
	}
	return rows > 0, nil
}

// ListApprovedUnpromoted returns submissions stranded in the
// approved-but-not-in-catalog state left behind when the catalog insert of a
// two-step promotion failed. These are the rows a moderator may promote again.
func (r *ProductSubmissionRepository) ListApprovedUnpromoted(ctx context.Context) ([]models.ProductSubmission, error) {
	const query = `SELECT * FROM product_submissions ps
	WHERE ps.status = $1
	  AND NOT EXISTS (
		SELECT 1 FROM catalog_products cp
		WHERE cp.name = ps.name AND cp.sales_page_url = ps.sales_page_url
	  )`
	rows, err := r.db.QueryxContext(ctx, query, models.SubmissionStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list unpromoted submissions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	result := make([]models.ProductSubmission, 0)
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan unpromoted submission: %w", err)
		}
		result = append(result, *resolver.DecodeProductSubmission(resolver.Resolve(raw)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unpromoted submissions: %w", err)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result, nil
}
