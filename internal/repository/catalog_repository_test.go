package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

func TestCatalogInsertAssignsFreshID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("INSERT INTO catalog_products").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.CatalogProduct{
		ID:     "submission-id-should-not-survive",
		Name:   "Widget",
		Active: true,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))
	assert.NotEqual(t, "submission-id-should-not-survive", entry.ID)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogUpdatePatchBuildsOnlyProvidedFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	// Only featured in the patch: the SET clause must not touch active or
	// order_index.
	mock.ExpectExec(`UPDATE catalog_products SET updated_at = \?, featured = \? WHERE id = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	featured := true
	err := repo.Update(context.Background(), "p1", models.CatalogProductPatch{Featured: &featured})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("UPDATE catalog_products").WillReturnResult(sqlmock.NewResult(0, 0))

	active := false
	err := repo.Update(context.Background(), "missing", models.CatalogProductPatch{Active: &active})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("DELETE FROM catalog_products").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogListActiveFiltersVisibility(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "category", "platform", "image_url", "image_url_alt", "benefits", "commission_rate", "sales_page_url", "active", "featured", "order_index", "created_at", "updated_at"}).
		AddRow("p1", "Widget", "", 99.90, "", "", "", "", []byte(`[]`), 50.0, "", true, false, 0, now, now)
	mock.ExpectQuery("SELECT (.+) FROM catalog_products WHERE active = TRUE").WillReturnRows(rows)

	products, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogListActiveTestimonials(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "image_url", "caption", "active", "order_index", "created_at"}).
		AddRow("t1", "https://cdn.example.com/t.jpg", "great", true, 0, time.Now().UTC())
	mock.ExpectQuery("SELECT (.+) FROM catalog_testimonials WHERE active = TRUE").WillReturnRows(rows)

	testimonials, err := repo.ListActiveTestimonials(context.Background())
	require.NoError(t, err)
	require.Len(t, testimonials, 1)
	assert.Equal(t, "great", testimonials[0].Caption)
	assert.NoError(t, mock.ExpectationsWereMet())
}
