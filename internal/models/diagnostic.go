package models

import "time"

// TableDiagnostic describes the observed state of one expected store table.
type TableDiagnostic struct {
	Table     string   `json:"table"`
	Exists    bool     `json:"exists"`
	RowCount  int      `json:"row_count"`
	Columns   []string `json:"columns"`
	LastError string   `json:"last_error,omitempty"`
}

// DiagnosticReport is an ephemeral, read-only snapshot of store health. It is
// produced on demand and never persisted.
type DiagnosticReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Tables      []TableDiagnostic `json:"tables"`
	Healthy     bool              `json:"healthy"`
}

// RepairOutcome enumerates the result of a single corrective fix.
type RepairOutcome string

const (
	RepairApplied RepairOutcome = "applied"
	RepairSkipped RepairOutcome = "skipped"
	RepairFailed  RepairOutcome = "failed"
)

// RepairStep reports one corrective fix from a repair run.
type RepairStep struct {
	Name    string        `json:"name"`
	Outcome RepairOutcome `json:"outcome"`
	Detail  string        `json:"detail,omitempty"`
}

// RepairReport summarises an operator-requested self-repair run. Fixes are
// idempotent: a second run over a healthy store reports every step skipped.
type RepairReport struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []RepairStep `json:"steps"`
	Applied    int          `json:"applied"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
}

// SystemMetrics is an aggregated runtime snapshot exposed alongside the store
// diagnostics for quick operator triage.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	DecisionsTotal           uint64    `json:"decisions_total"`
	PromotionsTotal          uint64    `json:"promotions_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
