package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/dto"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
)

type productSubmissionStore interface {
	ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.ProductSubmission, error)
	Create(ctx context.Context, sub *models.ProductSubmission) error
	GetByID(ctx context.Context, id string) (*models.ProductSubmission, error)
	TransitionStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewerID string, comments *string, reviewedAt time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
	ListApprovedUnpromoted(ctx context.Context) ([]models.ProductSubmission, error)
}

type testimonialSubmissionStore interface {
	ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.TestimonialSubmission, error)
	Create(ctx context.Context, sub *models.TestimonialSubmission) error
	GetByID(ctx context.Context, id string) (*models.TestimonialSubmission, error)
	TransitionStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewerID string, comments *string, reviewedAt time.Time) error
	ApproveAndPublish(ctx context.Context, id, reviewerID string, comments *string, entry *models.CatalogTestimonial) error
}

type catalogInserter interface {
	Insert(ctx context.Context, entry *models.CatalogProduct) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type moderationMetrics interface {
	RecordModerationDecision(kind models.SubmissionKind, status models.SubmissionStatus)
	RecordPromotion(kind models.SubmissionKind, atomic, complete bool)
}

type listingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// ModerationService enforces the review state machine over submitted catalog
// items and orchestrates promotion of approved items into the public catalog.
//
// Products use the two-step promotion path (status transition, catalog
// insert, submission cleanup as separate store calls); testimonials use the
// atomic path because their store exposes a transactional operation. Both are
// reached through the same Approve entry points so callers never depend on
// which atomicity guarantee is in play.
type ModerationService struct {
	products     productSubmissionStore
	testimonials testimonialSubmissionStore
	catalog      catalogInserter
	audit        auditLogger
	metrics      moderationMetrics
	listings     listingInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(products productSubmissionStore, testimonials testimonialSubmissionStore, catalog catalogInserter, audit auditLogger, metrics moderationMetrics, validate *validator.Validate, logger *zap.Logger) *ModerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		products:     products,
		testimonials: testimonials,
		catalog:      catalog,
		audit:        audit,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// SetListingInvalidator wires catalog cache invalidation into the promotion
// flow so freshly published entries appear without waiting for the cache TTL.
func (s *ModerationService) SetListingInvalidator(inv listingInvalidator) {
	s.listings = inv
}

// SubmitProduct stores a new product submission. The stored status is always
// pending; callers cannot self-approve.
func (s *ModerationService) SubmitProduct(ctx context.Context, req dto.CreateProductSubmissionRequest, submitterID string) (*models.ProductSubmission, error) {
	if strings.TrimSpace(submitterID) == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	sub := &models.ProductSubmission{
		SubmitterID:    submitterID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		Category:       req.Category,
		Platform:       req.Platform,
		ImageURL:       req.ImageURL,
		ImageURLAlt:    req.ImageURLAlt,
		Benefits:       models.StringList(req.Benefits),
		CommissionRate: req.CommissionRate,
		SalesPageURL:   req.SalesPageURL,
	}
	if err := s.products.Create(ctx, sub); err != nil {
		return nil, storeError(err, "failed to create product submission")
	}
	s.emitAudit(ctx, submitterID, models.AuditActionSubmissionCreate, "product_submission", sub.ID, sub)
	return sub, nil
}

// SubmitTestimonial stores a new testimonial submission, status forced to
// pending.
func (s *ModerationService) SubmitTestimonial(ctx context.Context, req dto.CreateTestimonialSubmissionRequest, submitterID string) (*models.TestimonialSubmission, error) {
	if strings.TrimSpace(submitterID) == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	sub := &models.TestimonialSubmission{
		SubmitterID: submitterID,
		ImageURL:    req.ImageURL,
		Caption:     req.Caption,
	}
	if err := s.testimonials.Create(ctx, sub); err != nil {
		return nil, storeError(err, "failed to create testimonial submission")
	}
	s.emitAudit(ctx, submitterID, models.AuditActionSubmissionCreate, "testimonial_submission", sub.ID, sub)
	return sub, nil
}

// ListProducts returns product submissions in the given review state.
func (s *ModerationService) ListProducts(ctx context.Context, status models.SubmissionStatus) ([]models.ProductSubmission, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}
	subs, err := s.products.ListByStatus(ctx, status)
	if err != nil {
		return nil, storeError(err, "failed to list product submissions")
	}
	return subs, nil
}

// ListTestimonials returns testimonial submissions in the given review state.
func (s *ModerationService) ListTestimonials(ctx context.Context, status models.SubmissionStatus) ([]models.TestimonialSubmission, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}
	subs, err := s.testimonials.ListByStatus(ctx, status)
	if err != nil {
		return nil, storeError(err, "failed to list testimonial submissions")
	}
	return subs, nil
}

// ApproveProduct runs the two-step promotion: compare-and-set approval on the
// submission store, then catalog publication, then cleanup. A publication
// failure leaves the submission approved-but-unpromoted, which stays visible
// through ListUnpromoted and can be retried; it is never silently lost.
func (s *ModerationService) ApproveProduct(ctx context.Context, id, reviewerID, comments string) (*models.PromotionResult, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	sub, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, storeError(err, "failed to load product submission")
	}
	if sub.Status != models.SubmissionStatusPending {
		return nil, appErrors.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := s.products.TransitionStatus(ctx, id, models.SubmissionStatusApproved, reviewerID, optionalComments(comments), now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Another reviewer won the compare-and-set.
			return nil, appErrors.ErrInvalidTransition
		}
		return nil, storeError(err, "failed to approve product submission")
	}
	if s.metrics != nil {
		s.metrics.RecordModerationDecision(models.SubmissionKindProduct, models.SubmissionStatusApproved)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionSubmissionReview, "product_submission", id, map[string]string{"status": string(models.SubmissionStatusApproved), "comments": comments})

	sub.Status = models.SubmissionStatusApproved
	result := s.publishProduct(ctx, sub, reviewerID)
	return result, nil
}

// publishProduct performs steps two and three of the two-step promotion.
func (s *ModerationService) publishProduct(ctx context.Context, sub *models.ProductSubmission, reviewerID string) *models.PromotionResult {
	entry := ToCatalogEntry(sub)
	if err := s.catalog.Insert(ctx, &entry); err != nil {
		s.logger.Error("catalog publication failed, submission left approved for retry",
			zap.String("submission_id", sub.ID), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordPromotion(models.SubmissionKindProduct, false, false)
		}
		return &models.PromotionResult{
			Success:      true,
			Promoted:     false,
			SubmissionID: sub.ID,
			Message:      "submission approved; catalog publication failed and can be retried",
		}
	}

	if removed, err := s.products.Delete(ctx, sub.ID); err != nil || !removed {
		// Tolerated: the row lingers as approved in the submission list but
		// can never be promoted again, so this is duplicate display, not
		// duplicate publication.
		s.logger.Warn("approved submission cleanup failed after publication",
			zap.String("submission_id", sub.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordPromotion(models.SubmissionKindProduct, false, true)
	}
	if s.listings != nil {
		s.listings.InvalidateListings(ctx)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionSubmissionPromote, "catalog_product", entry.ID, entry)
	return &models.PromotionResult{
		Success:        true,
		Promoted:       true,
		SubmissionID:   sub.ID,
		CatalogEntryID: entry.ID,
		Message:        "submission approved and published",
	}
}

// RejectProduct marks a submission rejected. A non-empty reason is mandatory;
// an empty one fails locally without touching the store. Rejected rows are
// retained for audit and never promoted.
func (s *ModerationService) RejectProduct(ctx context.Context, id, reviewerID, reason string) error {
	if strings.TrimSpace(reviewerID) == "" {
		return appErrors.ErrUnauthenticated
	}
	if strings.TrimSpace(reason) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	sub, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return storeError(err, "failed to load product submission")
	}
	if sub.Status != models.SubmissionStatusPending {
		return appErrors.ErrInvalidTransition
	}
	if err := s.products.TransitionStatus(ctx, id, models.SubmissionStatusRejected, reviewerID, optionalComments(reason), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrInvalidTransition
		}
		return storeError(err, "failed to reject product submission")
	}
	if s.metrics != nil {
		s.metrics.RecordModerationDecision(models.SubmissionKindProduct, models.SubmissionStatusRejected)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionSubmissionReview, "product_submission", id, map[string]string{"status": string(models.SubmissionStatusRejected), "comments": reason})
	return nil
}

// ApproveTestimonial runs the atomic promotion: status transition, catalog
// insert and submission cleanup commit in one transaction.
func (s *ModerationService) ApproveTestimonial(ctx context.Context, id, reviewerID, comments string) (*models.PromotionResult, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	sub, err := s.testimonials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, storeError(err, "failed to load testimonial submission")
	}
	if sub.Status != models.SubmissionStatusPending {
		return nil, appErrors.ErrInvalidTransition
	}

	entry := ToCatalogTestimonial(sub)
	if err := s.testimonials.ApproveAndPublish(ctx, id, reviewerID, optionalComments(comments), &entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidTransition
		}
		return nil, storeError(err, "failed to approve testimonial submission")
	}
	if s.metrics != nil {
		s.metrics.RecordModerationDecision(models.SubmissionKindTestimonial, models.SubmissionStatusApproved)
		s.metrics.RecordPromotion(models.SubmissionKindTestimonial, true, true)
	}
	if s.listings != nil {
		s.listings.InvalidateListings(ctx)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionSubmissionPromote, "catalog_testimonial", entry.ID, entry)
	return &models.PromotionResult{
		Success:        true,
		Promoted:       true,
		SubmissionID:   id,
		CatalogEntryID: entry.ID,
		Message:        "testimonial approved and published",
	}, nil
}

// RejectTestimonial rejects a testimonial submission; the reason is mandatory.
func (s *ModerationService) RejectTestimonial(ctx context.Context, id, reviewerID, reason string) error {
	if strings.TrimSpace(reviewerID) == "" {
		return appErrors.ErrUnauthenticated
	}
	if strings.TrimSpace(reason) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	sub, err := s.testimonials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return storeError(err, "failed to load testimonial submission")
	}
	if sub.Status != models.SubmissionStatusPending {
		return appErrors.ErrInvalidTransition
	}
	if err := s.testimonials.TransitionStatus(ctx, id, models.SubmissionStatusRejected, reviewerID, optionalComments(reason), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrInvalidTransition
		}
		return storeError(err, "failed to reject testimonial submission")
	}
	if s.metrics != nil {
		s.metrics.RecordModerationDecision(models.SubmissionKindTestimonial, models.SubmissionStatusRejected)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionSubmissionReview, "testimonial_submission", id, map[string]string{"status": string(models.SubmissionStatusRejected), "comments": reason})
	return nil
}

// ListUnpromoted exposes submissions stuck in the approved-but-unpromoted
// state so moderators can detect and retry failed publications.
func (s *ModerationService) ListUnpromoted(ctx context.Context) ([]models.ProductSubmission, error) {
	subs, err := s.products.ListApprovedUnpromoted(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list unpromoted submissions")
	}
	return subs, nil
}

// RetryPromotion re-runs catalog publication for an approved submission whose
// earlier publication failed. Already-published submissions are refused, so a
// retry can never create a duplicate catalog entry.
func (s *ModerationService) RetryPromotion(ctx context.Context, id, reviewerID string) (*models.PromotionResult, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	sub, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, storeError(err, "failed to load product submission")
	}
	if sub.Status != models.SubmissionStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only approved submissions can be promoted")
	}
	unpromoted, err := s.products.ListApprovedUnpromoted(ctx)
	if err != nil {
		return nil, storeError(err, "failed to verify promotion state")
	}
	pending := false
	for _, candidate := range unpromoted {
		if candidate.ID == id {
			pending = true
			break
		}
	}
	if !pending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "submission is already published")
	}
	return s.publishProduct(ctx, sub, reviewerID), nil
}

func (s *ModerationService) emitAudit(ctx context.Context, userID, action, resource, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	values, err := json.Marshal(payload)
	if err != nil {
		values = []byte("{}")
	}
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		NewValues:  values,
		IPAddress:  "system",
		UserAgent:  "moderation-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func optionalComments(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// storeError classifies a raw store failure as transient so handlers surface
// the retry-vs-diagnose distinction to moderators.
func storeError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}
