package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SchemaRepository introspects store shape and executes the additive DDL used
// by the self-repair fixes. It never drops columns or data.
type SchemaRepository struct {
	db *sqlx.DB
}

// NewSchemaRepository constructs the repository.
func NewSchemaRepository(db *sqlx.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// TableExists reports whether the table is present in the public schema.
func (r *SchemaRepository) TableExists(ctx context.Context, table string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, table); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}

// Columns returns the discovered column names of a table in ordinal order.
func (r *SchemaRepository) Columns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT column_name FROM information_schema.columns
	WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position`
	var columns []string
	if err := r.db.SelectContext(ctx, &columns, query, table); err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	return columns, nil
}

// ColumnExists reports whether a single column is present.
func (r *SchemaRepository) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2
	)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, table, column); err != nil {
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	return exists, nil
}

// RowCount counts rows in a table.
func (r *SchemaRepository) RowCount(ctx context.Context, table string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pq.QuoteIdentifier(table))
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return count, nil
}

// CreateTable runs a CREATE TABLE IF NOT EXISTS statement.
func (r *SchemaRepository) CreateTable(ctx context.Context, ddl string) error {
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// AddColumn adds a column when absent. Additive only.
func (r *SchemaRepository) AddColumn(ctx context.Context, table, column, columnType string) error {
	query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`,
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(column), columnType)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// BackfillColumn copies values from a source column into a destination column
// for rows where the destination is still unset. Running it again is a no-op.
// Returns the number of rows touched.
func (r *SchemaRepository) BackfillColumn(ctx context.Context, table, dst, src string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s WHERE %s IS NULL AND %s IS NOT NULL`,
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(dst), pq.QuoteIdentifier(src),
		pq.QuoteIdentifier(dst), pq.QuoteIdentifier(src))
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("backfill %s.%s from %s: %w", table, dst, src, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check backfill rows: %w", err)
	}
	return rows, nil
}

// Grant reasserts an access rule. GRANT statements are idempotent by nature.
func (r *SchemaRepository) Grant(ctx context.Context, privilege, table, role string) error {
	query := fmt.Sprintf(`GRANT %s ON %s TO %s`, privilege, pq.QuoteIdentifier(table), pq.QuoteIdentifier(role))
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("grant %s on %s to %s: %w", privilege, table, role, err)
	}
	return nil
}
