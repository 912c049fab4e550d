package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

const catalogProductColumns = `id, name, description, price, category, platform, image_url, image_url_alt, benefits, commission_rate, sales_page_url, active, featured, order_index, created_at, updated_at`

// CatalogRepository provides typed CRUD over the published catalog that
// public-facing pages read.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Insert stores a new catalog product under a fresh identifier. Promotion
// never reuses the source submission id.
func (r *CatalogRepository) Insert(ctx context.Context, entry *models.CatalogProduct) error {
	entry.ID = uuid.NewString()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	const query = `INSERT INTO catalog_products
	(id, name, description, price, category, platform, image_url, image_url_alt, benefits, commission_rate, sales_page_url, active, featured, order_index, created_at, updated_at)
	VALUES (:id, :name, :description, :price, :category, :platform, :image_url, :image_url_alt, :benefits, :commission_rate, :sales_page_url, :active, :featured, :order_index, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert catalog product: %w", err)
	}
	return nil
}

// GetByID fetches one catalog product.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*models.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_products WHERE id = $1 LIMIT 1`, catalogProductColumns)
	var entry models.CatalogProduct
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get catalog product: %w", err)
	}
	return &entry, nil
}

// Update applies a curation patch (active/featured/order_index). Returns
// sql.ErrNoRows when the product does not exist.
func (r *CatalogRepository) Update(ctx context.Context, id string, patch models.CatalogProductPatch) error {
	setParts := []string{"updated_at = :updated_at"}
	args := map[string]interface{}{
		"id":         id,
		"updated_at": time.Now().UTC(),
	}
	if patch.Active != nil {
		setParts = append(setParts, "active = :active")
		args["active"] = *patch.Active
	}
	if patch.Featured != nil {
		setParts = append(setParts, "featured = :featured")
		args["featured"] = *patch.Featured
	}
	if patch.OrderIndex != nil {
		setParts = append(setParts, "order_index = :order_index")
		args["order_index"] = *patch.OrderIndex
	}
	query := fmt.Sprintf("UPDATE catalog_products SET %s WHERE id = :id", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update catalog product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check catalog update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a catalog product.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM catalog_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete catalog product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check catalog delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActive returns only publicly-visible products in curated order.
func (r *CatalogRepository) ListActive(ctx context.Context) ([]models.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_products WHERE active = TRUE ORDER BY order_index ASC, created_at DESC`, catalogProductColumns)
	var entries []models.CatalogProduct
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list active catalog products: %w", err)
	}
	return entries, nil
}

// ListAll returns every catalog product regardless of visibility.
func (r *CatalogRepository) ListAll(ctx context.Context) ([]models.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_products ORDER BY order_index ASC, created_at DESC`, catalogProductColumns)
	var entries []models.CatalogProduct
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	return entries, nil
}

// ListActiveTestimonials returns published testimonial images in curated order.
func (r *CatalogRepository) ListActiveTestimonials(ctx context.Context) ([]models.CatalogTestimonial, error) {
	const query = `SELECT id, image_url, caption, active, order_index, created_at
	FROM catalog_testimonials WHERE active = TRUE ORDER BY order_index ASC, created_at DESC`
	var entries []models.CatalogTestimonial
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list catalog testimonials: %w", err)
	}
	return entries, nil
}
