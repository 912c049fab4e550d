package dto

import (
	"time"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

// ExportRequest asks for an asynchronous export of moderation data.
type ExportRequest struct {
	Type   models.ExportType      `json:"type"`
	Format models.ExportFormat    `json:"format"`
	Kind   *models.SubmissionKind `json:"kind,omitempty"`
	From   *time.Time             `json:"from,omitempty"`
	To     *time.Time             `json:"to,omitempty"`
}

// ExportJobResponse acknowledges a queued export job.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports job progress and, once finished, the signed
// download URL.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
