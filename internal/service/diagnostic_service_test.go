package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
)

// mockSchemaStore simulates an information-schema view of the store. Tables
// map names to their column sets.
type mockSchemaStore struct {
	tables map[string]map[string]bool
	rows   map[string]int

	createErr   error
	addErr      error
	backfillErr error
	backfilled  map[string]int64
	grants      []string
	ddl         []string
}

func newMockSchemaStore() *mockSchemaStore {
	return &mockSchemaStore{
		tables:     make(map[string]map[string]bool),
		rows:       make(map[string]int),
		backfilled: make(map[string]int64),
	}
}

// seedHealthy creates every managed table with its full column set.
func (m *mockSchemaStore) seedHealthy() {
	for _, table := range managedTables {
		columns := make(map[string]bool)
		for column := range table.Columns {
			columns[column] = true
		}
		columns["id"] = true
		m.tables[table.Name] = columns
	}
}

func (m *mockSchemaStore) TableExists(ctx context.Context, table string) (bool, error) {
	_, ok := m.tables[table]
	return ok, nil
}

func (m *mockSchemaStore) Columns(ctx context.Context, table string) ([]string, error) {
	columns, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", table)
	}
	out := make([]string, 0, len(columns))
	for column := range columns {
		out = append(out, column)
	}
	return out, nil
}

func (m *mockSchemaStore) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	columns, ok := m.tables[table]
	if !ok {
		return false, nil
	}
	return columns[column], nil
}

func (m *mockSchemaStore) RowCount(ctx context.Context, table string) (int, error) {
	return m.rows[table], nil
}

func (m *mockSchemaStore) CreateTable(ctx context.Context, ddl string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.ddl = append(m.ddl, ddl)
	for _, table := range managedTables {
		if table.DDL == ddl {
			columns := make(map[string]bool)
			for column := range table.Columns {
				columns[column] = true
			}
			columns["id"] = true
			m.tables[table.Name] = columns
		}
	}
	return nil
}

func (m *mockSchemaStore) AddColumn(ctx context.Context, table, column, columnType string) error {
	if m.addErr != nil {
		return m.addErr
	}
	if columns, ok := m.tables[table]; ok {
		columns[column] = true
	}
	return nil
}

func (m *mockSchemaStore) BackfillColumn(ctx context.Context, table, dst, src string) (int64, error) {
	if m.backfillErr != nil {
		return 0, m.backfillErr
	}
	key := table + "." + dst
	n := m.backfilled[key]
	m.backfilled[key] = 0 // a second backfill finds nothing left to copy
	return n, nil
}

func (m *mockSchemaStore) Grant(ctx context.Context, privilege, table, role string) error {
	m.grants = append(m.grants, table+":"+role)
	return nil
}

func TestSnapshotHealthyStore(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()
	store.rows["product_submissions"] = 3

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Healthy)
	require.Len(t, report.Tables, len(managedTables))
	for _, diag := range report.Tables {
		assert.True(t, diag.Exists, diag.Table)
		assert.Empty(t, diag.LastError)
	}
}

func TestSnapshotMissingTable(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()
	delete(store.tables, "catalog_products")

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Healthy)

	var missing *models.TableDiagnostic
	for i := range report.Tables {
		if report.Tables[i].Table == "catalog_products" {
			missing = &report.Tables[i]
		}
	}
	require.NotNil(t, missing)
	assert.False(t, missing.Exists)
}

func TestSnapshotMissingColumn(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()
	delete(store.tables["product_submissions"], "status")

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Healthy)
}

func TestRepairCreatesMissingTables(t *testing.T) {
	store := newMockSchemaStore()

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(managedTables), report.Applied)
	assert.Zero(t, report.Failed)

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.Healthy)
}

func TestRepairAddsMissingColumn(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()
	delete(store.tables["product_submissions"], "reviewer_comments")

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.True(t, store.tables["product_submissions"]["reviewer_comments"])
}

func TestRepairIdempotent(t *testing.T) {
	store := newMockSchemaStore()

	svc := NewDiagnosticService(store, "", zap.NewNop())
	first, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, first.Applied)

	second, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Applied, "a second run must find nothing to do")
	assert.Zero(t, second.Failed)
	assert.Equal(t, len(second.Steps), second.Skipped)
}

func TestRepairBackfillsLegacyColumns(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()
	store.tables["product_submissions"]["submittedAt"] = true
	store.backfilled["product_submissions.submitted_at"] = 7

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	// The legacy column is left in place; repair is additive only.
	assert.True(t, store.tables["product_submissions"]["submittedAt"])
}

func TestRepairSkipsBackfillWithoutLegacyColumn(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	for _, step := range report.Steps {
		if strings.HasPrefix(step.Name, "backfill_") {
			assert.Equal(t, models.RepairSkipped, step.Outcome, step.Name)
		}
	}
}

func TestRepairStepFailureDoesNotStopLaterSteps(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()
	delete(store.tables["product_submissions"], "status")
	delete(store.tables["testimonial_submissions"], "status")
	store.addErr = errors.New("permission denied")

	svc := NewDiagnosticService(store, "", zap.NewNop())
	report, err := svc.Repair(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Failed)
	// Steps after the failures still ran.
	assert.Equal(t, len(report.Steps), report.Applied+report.Skipped+report.Failed)
}

func TestRepairGrantsWhenRoleConfigured(t *testing.T) {
	store := newMockSchemaStore()
	store.seedHealthy()

	svc := NewDiagnosticService(store, "app_rw", zap.NewNop())
	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.grants, len(managedTables))
	assert.Equal(t, len(managedTables), report.Applied)
}
