package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
)

type schemaStore interface {
	TableExists(ctx context.Context, table string) (bool, error)
	Columns(ctx context.Context, table string) ([]string, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	RowCount(ctx context.Context, table string) (int, error)
	CreateTable(ctx context.Context, ddl string) error
	AddColumn(ctx context.Context, table, column, columnType string) error
	BackfillColumn(ctx context.Context, table, dst, src string) (int64, error)
	Grant(ctx context.Context, privilege, table, role string) error
}

// repairFix is one idempotent, additive repair step. Apply must be safe to
// re-run: it either changes nothing or converges the store toward the
// expected shape. Fixes never drop tables, columns or rows.
type repairFix struct {
	Name        string
	Description string
	Apply       func(ctx context.Context, store schemaStore) (applied bool, err error)
}

const (
	productSubmissionsDDL = `CREATE TABLE IF NOT EXISTS product_submissions (
	id UUID PRIMARY KEY,
	submitter_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price NUMERIC(12,2) NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	platform TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	image_url_alt TEXT NOT NULL DEFAULT '',
	benefits JSONB NOT NULL DEFAULT '[]',
	commission_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
	sales_page_url TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	reviewer_id TEXT,
	reviewer_comments TEXT,
	reviewed_at TIMESTAMPTZ
)`

	testimonialSubmissionsDDL = `CREATE TABLE IF NOT EXISTS testimonial_submissions (
	id UUID PRIMARY KEY,
	submitter_id TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	caption TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	reviewer_id TEXT,
	reviewer_comments TEXT,
	reviewed_at TIMESTAMPTZ
)`

	catalogProductsDDL = `CREATE TABLE IF NOT EXISTS catalog_products (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price NUMERIC(12,2) NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	platform TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	image_url_alt TEXT NOT NULL DEFAULT '',
	benefits JSONB NOT NULL DEFAULT '[]',
	commission_rate NUMERIC(5,2) NOT NULL DEFAULT 50,
	sales_page_url TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	order_index INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

	catalogTestimonialsDDL = `CREATE TABLE IF NOT EXISTS catalog_testimonials (
	id UUID PRIMARY KEY,
	image_url TEXT NOT NULL DEFAULT '',
	caption TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	order_index INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

// managedTables lists every table the pipeline owns, with its DDL and the
// columns whose absence the repair pass fills in additively.
var managedTables = []struct {
	Name    string
	DDL     string
	Columns map[string]string
}{
	{
		Name: "product_submissions",
		DDL:  productSubmissionsDDL,
		Columns: map[string]string{
			"status":            "TEXT NOT NULL DEFAULT 'pending'",
			"submitter_id":      "TEXT",
			"submitted_at":      "TIMESTAMPTZ",
			"image_url":         "TEXT",
			"image_url_alt":     "TEXT",
			"commission_rate":   "NUMERIC(5,2)",
			"sales_page_url":    "TEXT",
			"reviewer_id":       "TEXT",
			"reviewer_comments": "TEXT",
			"reviewed_at":       "TIMESTAMPTZ",
		},
	},
	{
		Name: "testimonial_submissions",
		DDL:  testimonialSubmissionsDDL,
		Columns: map[string]string{
			"status":            "TEXT NOT NULL DEFAULT 'pending'",
			"submitter_id":      "TEXT",
			"submitted_at":      "TIMESTAMPTZ",
			"image_url":         "TEXT",
			"reviewer_id":       "TEXT",
			"reviewer_comments": "TEXT",
			"reviewed_at":       "TIMESTAMPTZ",
		},
	},
	{
		Name: "catalog_products",
		DDL:  catalogProductsDDL,
		Columns: map[string]string{
			"active":      "BOOLEAN NOT NULL DEFAULT TRUE",
			"featured":    "BOOLEAN NOT NULL DEFAULT FALSE",
			"order_index": "INTEGER NOT NULL DEFAULT 0",
			"image_url":   "TEXT",
			"created_at":  "TIMESTAMPTZ",
		},
	},
	{
		Name:    "catalog_testimonials",
		DDL:     catalogTestimonialsDDL,
		Columns: map[string]string{},
	},
}

// legacyColumnMirrors maps camelCase columns left behind by earlier schema
// revisions to their canonical snake_case names. Repair backfills the
// canonical column from the legacy one where the canonical value is NULL; the
// legacy column itself is left untouched.
var legacyColumnMirrors = []struct {
	Table  string
	Legacy string
	Canon  string
}{
	{"product_submissions", "submittedAt", "submitted_at"},
	{"product_submissions", "submitterId", "submitter_id"},
	{"product_submissions", "imageUrl", "image_url"},
	{"product_submissions", "imageUrlAlt", "image_url_alt"},
	{"product_submissions", "commissionRate", "commission_rate"},
	{"product_submissions", "salesPageUrl", "sales_page_url"},
	{"testimonial_submissions", "submittedAt", "submitted_at"},
	{"testimonial_submissions", "submitterId", "submitter_id"},
	{"testimonial_submissions", "imageUrl", "image_url"},
	{"catalog_products", "imageUrl", "image_url"},
	{"catalog_products", "orderIndex", "order_index"},
	{"catalog_products", "createdAt", "created_at"},
}

// DiagnosticService inspects the moderation store and applies idempotent,
// additive repairs. Repair runs are serialized through a mutex so concurrent
// triggers cannot interleave DDL.
type DiagnosticService struct {
	store     schemaStore
	grantRole string
	logger    *zap.Logger

	repairMu sync.Mutex
}

// NewDiagnosticService constructs the service. grantRole, when non-empty, is
// the database role re-granted table privileges during repair.
func NewDiagnosticService(store schemaStore, grantRole string, logger *zap.Logger) *DiagnosticService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticService{store: store, grantRole: grantRole, logger: logger}
}

// Snapshot reports the current shape of every managed table. Probe failures
// are recorded per-table rather than aborting the whole report, so a single
// broken table cannot hide the state of the others.
func (s *DiagnosticService) Snapshot(ctx context.Context) (*models.DiagnosticReport, error) {
	report := &models.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		Healthy:     true,
	}
	for _, table := range managedTables {
		diag := models.TableDiagnostic{Table: table.Name}
		exists, err := s.store.TableExists(ctx, table.Name)
		if err != nil {
			diag.LastError = err.Error()
			report.Healthy = false
			report.Tables = append(report.Tables, diag)
			continue
		}
		diag.Exists = exists
		if !exists {
			report.Healthy = false
			report.Tables = append(report.Tables, diag)
			continue
		}
		if diag.Columns, err = s.store.Columns(ctx, table.Name); err != nil {
			diag.LastError = err.Error()
			report.Healthy = false
		}
		if diag.RowCount, err = s.store.RowCount(ctx, table.Name); err != nil {
			diag.LastError = err.Error()
			report.Healthy = false
		}
		for column := range table.Columns {
			if !containsColumn(diag.Columns, column) {
				report.Healthy = false
			}
		}
		report.Tables = append(report.Tables, diag)
	}
	return report, nil
}

// Repair applies every missing fix in order and reports what it did. A fully
// healthy store yields a report where every step is skipped. Individual step
// failures are recorded and do not stop later steps.
func (s *DiagnosticService) Repair(ctx context.Context) (*models.RepairReport, error) {
	s.repairMu.Lock()
	defer s.repairMu.Unlock()

	report := &models.RepairReport{StartedAt: time.Now().UTC()}
	for _, fix := range s.fixes() {
		step := models.RepairStep{Name: fix.Name, Detail: fix.Description}
		applied, err := fix.Apply(ctx, s.store)
		switch {
		case err != nil:
			step.Outcome = models.RepairFailed
			step.Detail = err.Error()
			report.Failed++
			s.logger.Error("repair step failed", zap.String("step", fix.Name), zap.Error(err))
		case applied:
			step.Outcome = models.RepairApplied
			report.Applied++
			s.logger.Info("repair step applied", zap.String("step", fix.Name))
		default:
			step.Outcome = models.RepairSkipped
			report.Skipped++
		}
		report.Steps = append(report.Steps, step)
	}
	report.FinishedAt = time.Now().UTC()
	if report.Failed > 0 {
		return report, appErrors.Clone(appErrors.ErrStoreUnavailable, "one or more repair steps failed")
	}
	return report, nil
}

// fixes builds the ordered repair plan: tables first, then columns, then
// legacy mirrors, then grants.
func (s *DiagnosticService) fixes() []repairFix {
	var plan []repairFix
	for _, table := range managedTables {
		table := table
		plan = append(plan, repairFix{
			Name:        "create_table_" + table.Name,
			Description: "create " + table.Name + " if missing",
			Apply: func(ctx context.Context, store schemaStore) (bool, error) {
				exists, err := store.TableExists(ctx, table.Name)
				if err != nil {
					return false, err
				}
				if exists {
					return false, nil
				}
				return true, store.CreateTable(ctx, table.DDL)
			},
		})
		columns := make([]string, 0, len(table.Columns))
		for column := range table.Columns {
			columns = append(columns, column)
		}
		sort.Strings(columns)
		for _, column := range columns {
			column, columnType := column, table.Columns[column]
			plan = append(plan, repairFix{
				Name:        "add_column_" + table.Name + "_" + column,
				Description: "add " + table.Name + "." + column + " if missing",
				Apply: func(ctx context.Context, store schemaStore) (bool, error) {
					exists, err := store.ColumnExists(ctx, table.Name, column)
					if err != nil || exists {
						return false, err
					}
					return true, store.AddColumn(ctx, table.Name, column, columnType)
				},
			})
		}
	}
	for _, mirror := range legacyColumnMirrors {
		mirror := mirror
		plan = append(plan, repairFix{
			Name:        "backfill_" + mirror.Table + "_" + mirror.Canon,
			Description: "backfill " + mirror.Table + "." + mirror.Canon + " from legacy column",
			Apply: func(ctx context.Context, store schemaStore) (bool, error) {
				exists, err := store.ColumnExists(ctx, mirror.Table, mirror.Legacy)
				if err != nil || !exists {
					return false, err
				}
				rows, err := store.BackfillColumn(ctx, mirror.Table, mirror.Canon, mirror.Legacy)
				if err != nil {
					return false, err
				}
				return rows > 0, nil
			},
		})
	}
	if s.grantRole != "" {
		for _, table := range managedTables {
			table := table
			plan = append(plan, repairFix{
				Name:        "grant_" + table.Name,
				Description: "re-grant read/write on " + table.Name,
				Apply: func(ctx context.Context, store schemaStore) (bool, error) {
					if err := store.Grant(ctx, "SELECT, INSERT, UPDATE, DELETE", table.Name, s.grantRole); err != nil {
						return false, err
					}
					// Grants are not observable cheaply, so a successful
					// re-grant always counts as applied.
					return true, nil
				},
			})
		}
	}
	return plan
}

func containsColumn(columns []string, name string) bool {
	for _, column := range columns {
		if column == name {
			return true
		}
	}
	return false
}
