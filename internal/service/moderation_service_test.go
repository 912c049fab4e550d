package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/dto"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
)

type mockProductStore struct {
	submissions   map[string]*models.ProductSubmission
	unpromoted    []models.ProductSubmission
	createErr     error
	getErr        error
	transitionErr error
	deleteErr     error
	listErr       error

	transitions []string
	deleted     []string
}

func (m *mockProductStore) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.ProductSubmission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.ProductSubmission
	for _, sub := range m.submissions {
		if sub.Status == status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *mockProductStore) Create(ctx context.Context, sub *models.ProductSubmission) error {
	if m.createErr != nil {
		return m.createErr
	}
	sub.ID = "generated"
	sub.Status = models.SubmissionStatusPending
	sub.SubmittedAt = time.Now().UTC()
	if m.submissions == nil {
		m.submissions = make(map[string]*models.ProductSubmission)
	}
	m.submissions[sub.ID] = sub
	return nil
}

func (m *mockProductStore) GetByID(ctx context.Context, id string) (*models.ProductSubmission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	sub, ok := m.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *sub
	return &copy, nil
}

func (m *mockProductStore) TransitionStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewerID string, comments *string, reviewedAt time.Time) error {
	if m.transitionErr != nil {
		return m.transitionErr
	}
	sub, ok := m.submissions[id]
	if !ok || sub.Status != models.SubmissionStatusPending {
		return sql.ErrNoRows
	}
	sub.Status = status
	sub.ReviewerID = &reviewerID
	sub.ReviewerNotes = comments
	sub.ReviewedAt = &reviewedAt
	m.transitions = append(m.transitions, id)
	return nil
}

func (m *mockProductStore) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.submissions[id]; !ok {
		return false, nil
	}
	delete(m.submissions, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

func (m *mockProductStore) ListApprovedUnpromoted(ctx context.Context) ([]models.ProductSubmission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.unpromoted, nil
}

type mockTestimonialStore struct {
	submissions map[string]*models.TestimonialSubmission
	publishErr  error

	published []string
}

func (m *mockTestimonialStore) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.TestimonialSubmission, error) {
	var out []models.TestimonialSubmission
	for _, sub := range m.submissions {
		if sub.Status == status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *mockTestimonialStore) Create(ctx context.Context, sub *models.TestimonialSubmission) error {
	sub.ID = "generated"
	sub.Status = models.SubmissionStatusPending
	if m.submissions == nil {
		m.submissions = make(map[string]*models.TestimonialSubmission)
	}
	m.submissions[sub.ID] = sub
	return nil
}

func (m *mockTestimonialStore) GetByID(ctx context.Context, id string) (*models.TestimonialSubmission, error) {
	sub, ok := m.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *sub
	return &copy, nil
}

func (m *mockTestimonialStore) TransitionStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewerID string, comments *string, reviewedAt time.Time) error {
	sub, ok := m.submissions[id]
	if !ok || sub.Status != models.SubmissionStatusPending {
		return sql.ErrNoRows
	}
	sub.Status = status
	sub.ReviewerID = &reviewerID
	sub.ReviewerNotes = comments
	sub.ReviewedAt = &reviewedAt
	return nil
}

func (m *mockTestimonialStore) ApproveAndPublish(ctx context.Context, id, reviewerID string, comments *string, entry *models.CatalogTestimonial) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	sub, ok := m.submissions[id]
	if !ok || sub.Status != models.SubmissionStatusPending {
		return sql.ErrNoRows
	}
	entry.ID = "cat-" + id
	delete(m.submissions, id)
	m.published = append(m.published, id)
	return nil
}

type mockCatalogInserter struct {
	insertErr error
	inserted  []models.CatalogProduct
}

func (m *mockCatalogInserter) Insert(ctx context.Context, entry *models.CatalogProduct) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	entry.ID = "cat-1"
	m.inserted = append(m.inserted, *entry)
	return nil
}

type mockAuditSink struct {
	logs []*models.AuditLog
}

func (m *mockAuditSink) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func pendingProduct(id string) *models.ProductSubmission {
	return &models.ProductSubmission{
		ID:             id,
		SubmitterID:    "aff-1",
		Name:           "Widget",
		Description:    "A widget",
		Price:          99.90,
		Category:       "gadgets",
		Platform:       "hotmart",
		ImageURL:       "https://cdn.example.com/a.jpg",
		CommissionRate: 35,
		SalesPageURL:   "https://example.com/buy",
		Status:         models.SubmissionStatusPending,
		SubmittedAt:    time.Now().UTC(),
	}
}

func newModerationFixture(products *mockProductStore, testimonials *mockTestimonialStore, catalog *mockCatalogInserter) (*ModerationService, *mockAuditSink) {
	audit := &mockAuditSink{}
	svc := NewModerationService(products, testimonials, catalog, audit, nil, validator.New(), zap.NewNop())
	return svc, audit
}

func TestSubmitProductForcesPending(t *testing.T) {
	products := &mockProductStore{}
	svc, audit := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	sub, err := svc.SubmitProduct(context.Background(), dto.CreateProductSubmissionRequest{
		Name:         "Widget",
		Description:  "A widget",
		Price:        99.90,
		Category:     "gadgets",
		Platform:     "hotmart",
		SalesPageURL: "https://example.com/buy",
	}, "aff-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, sub.Status)
	assert.Equal(t, "aff-1", sub.SubmitterID)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSubmissionCreate, audit.logs[0].Action)
}

func TestSubmitProductRequiresSubmitter(t *testing.T) {
	svc, _ := newModerationFixture(&mockProductStore{}, &mockTestimonialStore{}, &mockCatalogInserter{})
	_, err := svc.SubmitProduct(context.Background(), dto.CreateProductSubmissionRequest{}, "  ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Code, appErrors.FromError(err).Code)
}

func TestSubmitProductValidation(t *testing.T) {
	svc, _ := newModerationFixture(&mockProductStore{}, &mockTestimonialStore{}, &mockCatalogInserter{})
	_, err := svc.SubmitProduct(context.Background(), dto.CreateProductSubmissionRequest{Name: "Widget"}, "aff-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListProductsRejectsUnknownStatus(t *testing.T) {
	svc, _ := newModerationFixture(&mockProductStore{}, &mockTestimonialStore{}, &mockCatalogInserter{})
	_, err := svc.ListProducts(context.Background(), models.SubmissionStatus("bogus"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApproveProductPublishesAndCleansUp(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	catalog := &mockCatalogInserter{}
	svc, audit := newModerationFixture(products, &mockTestimonialStore{}, catalog)

	result, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "looks good")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Promoted)
	assert.Equal(t, "cat-1", result.CatalogEntryID)

	require.Len(t, catalog.inserted, 1)
	entry := catalog.inserted[0]
	assert.True(t, entry.Active)
	assert.False(t, entry.Featured)
	assert.Equal(t, 0, entry.OrderIndex)

	assert.Contains(t, products.deleted, "s1")
	// SUBMISSION_REVIEW then SUBMISSION_PROMOTE.
	require.Len(t, audit.logs, 2)
	assert.Equal(t, models.AuditActionSubmissionReview, audit.logs[0].Action)
	assert.Equal(t, models.AuditActionSubmissionPromote, audit.logs[1].Action)
}

func TestApproveProductNotFound(t *testing.T) {
	svc, _ := newModerationFixture(&mockProductStore{}, &mockTestimonialStore{}, &mockCatalogInserter{})
	_, err := svc.ApproveProduct(context.Background(), "missing", "rev-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApproveProductAlreadyReviewed(t *testing.T) {
	sub := pendingProduct("s1")
	sub.Status = models.SubmissionStatusRejected
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": sub}}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	_, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestApproveProductLostRace(t *testing.T) {
	products := &mockProductStore{
		submissions:   map[string]*models.ProductSubmission{"s1": pendingProduct("s1")},
		transitionErr: sql.ErrNoRows,
	}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	_, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestApproveProductPublicationFailureLeavesRetryableState(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	catalog := &mockCatalogInserter{insertErr: errors.New("catalog down")}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, catalog)

	result, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Promoted)
	assert.Empty(t, result.CatalogEntryID)

	// The approval itself must have stuck so the submission can be retried.
	sub := products.submissions["s1"]
	require.NotNil(t, sub)
	assert.Equal(t, models.SubmissionStatusApproved, sub.Status)
	assert.Empty(t, products.deleted)
}

func TestApproveProductCleanupFailureTolerated(t *testing.T) {
	products := &mockProductStore{
		submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")},
		deleteErr:   errors.New("delete failed"),
	}
	catalog := &mockCatalogInserter{}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, catalog)

	result, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.NoError(t, err)
	assert.True(t, result.Promoted)
	require.Len(t, catalog.inserted, 1)
}

func TestRejectProductRequiresReason(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	svc, audit := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	err := svc.RejectProduct(context.Background(), "s1", "rev-1", "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// The store must be untouched when the reason is missing.
	assert.Equal(t, models.SubmissionStatusPending, products.submissions["s1"].Status)
	assert.Empty(t, products.transitions)
	assert.Empty(t, audit.logs)
}

func TestRejectProductRetainsRow(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	svc, audit := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	err := svc.RejectProduct(context.Background(), "s1", "rev-1", "blurry images")
	require.NoError(t, err)

	sub := products.submissions["s1"]
	require.NotNil(t, sub)
	assert.Equal(t, models.SubmissionStatusRejected, sub.Status)
	require.NotNil(t, sub.ReviewerNotes)
	assert.Equal(t, "blurry images", *sub.ReviewerNotes)
	assert.Empty(t, products.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSubmissionReview, audit.logs[0].Action)
}

func TestApproveTestimonialAtomic(t *testing.T) {
	testimonials := &mockTestimonialStore{submissions: map[string]*models.TestimonialSubmission{
		"t1": {ID: "t1", SubmitterID: "aff-1", ImageURL: "https://cdn.example.com/t.jpg", Status: models.SubmissionStatusPending},
	}}
	svc, _ := newModerationFixture(&mockProductStore{}, testimonials, &mockCatalogInserter{})

	result, err := svc.ApproveTestimonial(context.Background(), "t1", "rev-1", "")
	require.NoError(t, err)
	assert.True(t, result.Promoted)
	assert.Equal(t, "cat-t1", result.CatalogEntryID)
	assert.Contains(t, testimonials.published, "t1")
	assert.NotContains(t, testimonials.submissions, "t1")
}

func TestApproveTestimonialPublishFailureLeavesPending(t *testing.T) {
	testimonials := &mockTestimonialStore{
		submissions: map[string]*models.TestimonialSubmission{
			"t1": {ID: "t1", Status: models.SubmissionStatusPending},
		},
		publishErr: errors.New("tx rolled back"),
	}
	svc, _ := newModerationFixture(&mockProductStore{}, testimonials, &mockCatalogInserter{})

	_, err := svc.ApproveTestimonial(context.Background(), "t1", "rev-1", "")
	require.Error(t, err)
	assert.True(t, appErrors.IsRetryable(err))
	// Atomic path: nothing committed, the submission is still pending.
	assert.Equal(t, models.SubmissionStatusPending, testimonials.submissions["t1"].Status)
}

func TestRejectTestimonialRequiresReason(t *testing.T) {
	testimonials := &mockTestimonialStore{submissions: map[string]*models.TestimonialSubmission{
		"t1": {ID: "t1", Status: models.SubmissionStatusPending},
	}}
	svc, _ := newModerationFixture(&mockProductStore{}, testimonials, &mockCatalogInserter{})

	err := svc.RejectTestimonial(context.Background(), "t1", "rev-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.SubmissionStatusPending, testimonials.submissions["t1"].Status)
}

func TestRetryPromotionRepublishes(t *testing.T) {
	sub := pendingProduct("s1")
	sub.Status = models.SubmissionStatusApproved
	products := &mockProductStore{
		submissions: map[string]*models.ProductSubmission{"s1": sub},
		unpromoted:  []models.ProductSubmission{*sub},
	}
	catalog := &mockCatalogInserter{}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, catalog)

	result, err := svc.RetryPromotion(context.Background(), "s1", "rev-1")
	require.NoError(t, err)
	assert.True(t, result.Promoted)
	require.Len(t, catalog.inserted, 1)
	assert.Contains(t, products.deleted, "s1")
}

func TestRetryPromotionRefusesPending(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	_, err := svc.RetryPromotion(context.Background(), "s1", "rev-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestRetryPromotionRefusesAlreadyPublished(t *testing.T) {
	sub := pendingProduct("s1")
	sub.Status = models.SubmissionStatusApproved
	products := &mockProductStore{
		submissions: map[string]*models.ProductSubmission{"s1": sub},
		// Not in the unpromoted listing: the catalog entry already exists.
		unpromoted: nil,
	}
	catalog := &mockCatalogInserter{}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, catalog)

	_, err := svc.RetryPromotion(context.Background(), "s1", "rev-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	assert.Empty(t, catalog.inserted)
}

type mockListingInvalidator struct {
	calls int
}

func (m *mockListingInvalidator) InvalidateListings(ctx context.Context) {
	m.calls++
}

func TestApproveProductInvalidatesListings(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})
	listings := &mockListingInvalidator{}
	svc.SetListingInvalidator(listings)

	result, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.NoError(t, err)
	require.True(t, result.Promoted)
	assert.Equal(t, 1, listings.calls)
}

func TestFailedPublicationDoesNotInvalidateListings(t *testing.T) {
	products := &mockProductStore{submissions: map[string]*models.ProductSubmission{"s1": pendingProduct("s1")}}
	catalog := &mockCatalogInserter{insertErr: errors.New("catalog down")}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, catalog)
	listings := &mockListingInvalidator{}
	svc.SetListingInvalidator(listings)

	result, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.NoError(t, err)
	require.False(t, result.Promoted)
	assert.Zero(t, listings.calls)
}

func TestStoreFailuresAreRetryable(t *testing.T) {
	products := &mockProductStore{getErr: errors.New("connection refused")}
	svc, _ := newModerationFixture(products, &mockTestimonialStore{}, &mockCatalogInserter{})

	_, err := svc.ApproveProduct(context.Background(), "s1", "rev-1", "")
	require.Error(t, err)
	assert.True(t, appErrors.IsRetryable(err))
}
