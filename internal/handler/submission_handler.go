package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vitrine-labs/vitrine-mod-api/internal/dto"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/response"
)

type moderationService interface {
	SubmitProduct(ctx context.Context, req dto.CreateProductSubmissionRequest, submitterID string) (*models.ProductSubmission, error)
	SubmitTestimonial(ctx context.Context, req dto.CreateTestimonialSubmissionRequest, submitterID string) (*models.TestimonialSubmission, error)
	ListProducts(ctx context.Context, status models.SubmissionStatus) ([]models.ProductSubmission, error)
	ListTestimonials(ctx context.Context, status models.SubmissionStatus) ([]models.TestimonialSubmission, error)
	ApproveProduct(ctx context.Context, id, reviewerID, comments string) (*models.PromotionResult, error)
	RejectProduct(ctx context.Context, id, reviewerID, reason string) error
	ApproveTestimonial(ctx context.Context, id, reviewerID, comments string) (*models.PromotionResult, error)
	RejectTestimonial(ctx context.Context, id, reviewerID, reason string) error
	ListUnpromoted(ctx context.Context) ([]models.ProductSubmission, error)
	RetryPromotion(ctx context.Context, id, reviewerID string) (*models.PromotionResult, error)
}

// SubmissionHandler exposes REST endpoints for the moderation workflow.
type SubmissionHandler struct {
	service moderationService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service moderationService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// CreateProduct godoc
// @Summary Submit a product for review
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateProductSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Router /submissions/products [post]
func (h *SubmissionHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	sub, err := h.service.SubmitProduct(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// CreateTestimonial godoc
// @Summary Submit a testimonial for review
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateTestimonialSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Router /submissions/testimonials [post]
func (h *SubmissionHandler) CreateTestimonial(c *gin.Context) {
	var req dto.CreateTestimonialSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	sub, err := h.service.SubmitTestimonial(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// ListProducts godoc
// @Summary List product submissions by review state
// @Tags Submissions
// @Produce json
// @Param status query string false "pending|approved|rejected (default pending)"
// @Success 200 {object} response.Envelope
// @Router /submissions/products [get]
func (h *SubmissionHandler) ListProducts(c *gin.Context) {
	subs, err := h.service.ListProducts(c.Request.Context(), statusQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// ListTestimonials godoc
// @Summary List testimonial submissions by review state
// @Tags Submissions
// @Produce json
// @Param status query string false "pending|approved|rejected (default pending)"
// @Success 200 {object} response.Envelope
// @Router /submissions/testimonials [get]
func (h *SubmissionHandler) ListTestimonials(c *gin.Context) {
	subs, err := h.service.ListTestimonials(c.Request.Context(), statusQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// ApproveProduct godoc
// @Summary Approve a product submission and publish it to the catalog
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ReviewRequest false "Optional reviewer comments"
// @Success 200 {object} response.Envelope
// @Router /submissions/products/{id}/approve [post]
func (h *SubmissionHandler) ApproveProduct(c *gin.Context) {
	req := reviewRequest(c)
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	result, err := h.service.ApproveProduct(c.Request.Context(), c.Param("id"), claims.UserID, req.Comments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RejectProduct godoc
// @Summary Reject a product submission with a mandatory reason
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ReviewRequest true "Rejection reason in comments"
// @Success 204
// @Router /submissions/products/{id}/reject [post]
func (h *SubmissionHandler) RejectProduct(c *gin.Context) {
	req := reviewRequest(c)
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	if err := h.service.RejectProduct(c.Request.Context(), c.Param("id"), claims.UserID, req.Comments); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApproveTestimonial godoc
// @Summary Approve a testimonial submission and publish it atomically
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ReviewRequest false "Optional reviewer comments"
// @Success 200 {object} response.Envelope
// @Router /submissions/testimonials/{id}/approve [post]
func (h *SubmissionHandler) ApproveTestimonial(c *gin.Context) {
	req := reviewRequest(c)
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	result, err := h.service.ApproveTestimonial(c.Request.Context(), c.Param("id"), claims.UserID, req.Comments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RejectTestimonial godoc
// @Summary Reject a testimonial submission with a mandatory reason
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ReviewRequest true "Rejection reason in comments"
// @Success 204
// @Router /submissions/testimonials/{id}/reject [post]
func (h *SubmissionHandler) RejectTestimonial(c *gin.Context) {
	req := reviewRequest(c)
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	if err := h.service.RejectTestimonial(c.Request.Context(), c.Param("id"), claims.UserID, req.Comments); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListUnpromoted godoc
// @Summary List approved submissions whose catalog publication failed
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions/products/unpromoted [get]
func (h *SubmissionHandler) ListUnpromoted(c *gin.Context) {
	subs, err := h.service.ListUnpromoted(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// RetryPromotion godoc
// @Summary Retry catalog publication for an approved submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/products/{id}/promote [post]
func (h *SubmissionHandler) RetryPromotion(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	result, err := h.service.RetryPromotion(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// statusQuery reads the status filter, defaulting to pending and accepting
// the legacy Portuguese aliases still emitted by older admin clients.
func statusQuery(c *gin.Context) models.SubmissionStatus {
	raw := strings.ToLower(strings.TrimSpace(c.Query("status")))
	switch raw {
	case "", "pendente":
		return models.SubmissionStatusPending
	case "aprovado":
		return models.SubmissionStatusApproved
	case "rejeitado":
		return models.SubmissionStatusRejected
	default:
		return models.SubmissionStatus(raw)
	}
}

// reviewRequest tolerates an absent body: approval comments are optional.
func reviewRequest(c *gin.Context) dto.ReviewRequest {
	var req dto.ReviewRequest
	_ = c.ShouldBindJSON(&req)
	return req
}
