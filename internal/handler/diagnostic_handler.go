package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/response"
)

type diagnosticService interface {
	Snapshot(ctx context.Context) (*models.DiagnosticReport, error)
	Repair(ctx context.Context) (*models.RepairReport, error)
}

// DiagnosticHandler exposes store health inspection and self-repair.
type DiagnosticHandler struct {
	service diagnosticService
}

// NewDiagnosticHandler constructs the handler.
func NewDiagnosticHandler(service diagnosticService) *DiagnosticHandler {
	return &DiagnosticHandler{service: service}
}

// Snapshot godoc
// @Summary Inspect the moderation store schema and row counts
// @Tags Diagnostics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /diagnostics/store [get]
func (h *DiagnosticHandler) Snapshot(c *gin.Context) {
	report, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Repair godoc
// @Summary Apply idempotent additive repairs to the moderation store
// @Tags Diagnostics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /diagnostics/store/repair [post]
func (h *DiagnosticHandler) Repair(c *gin.Context) {
	report, err := h.service.Repair(c.Request.Context())
	if err != nil {
		// The partial report still matters to the operator.
		response.JSON(c, http.StatusServiceUnavailable, report, nil)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
