package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-labs/vitrine-mod-api/internal/dto"
	"github.com/vitrine-labs/vitrine-mod-api/internal/middleware"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
)

type moderationServiceMock struct {
	product       *models.ProductSubmission
	testimonial   *models.TestimonialSubmission
	products      []models.ProductSubmission
	testimonials  []models.TestimonialSubmission
	result        *models.PromotionResult
	err           error
	listStatus    models.SubmissionStatus
	rejectedID    string
	rejectReason  string
	submitterSeen string
}

func (m *moderationServiceMock) SubmitProduct(ctx context.Context, req dto.CreateProductSubmissionRequest, submitterID string) (*models.ProductSubmission, error) {
	m.submitterSeen = submitterID
	return m.product, m.err
}

func (m *moderationServiceMock) SubmitTestimonial(ctx context.Context, req dto.CreateTestimonialSubmissionRequest, submitterID string) (*models.TestimonialSubmission, error) {
	m.submitterSeen = submitterID
	return m.testimonial, m.err
}

func (m *moderationServiceMock) ListProducts(ctx context.Context, status models.SubmissionStatus) ([]models.ProductSubmission, error) {
	m.listStatus = status
	return m.products, m.err
}

func (m *moderationServiceMock) ListTestimonials(ctx context.Context, status models.SubmissionStatus) ([]models.TestimonialSubmission, error) {
	m.listStatus = status
	return m.testimonials, m.err
}

func (m *moderationServiceMock) ApproveProduct(ctx context.Context, id, reviewerID, comments string) (*models.PromotionResult, error) {
	return m.result, m.err
}

func (m *moderationServiceMock) RejectProduct(ctx context.Context, id, reviewerID, reason string) error {
	m.rejectedID = id
	m.rejectReason = reason
	return m.err
}

func (m *moderationServiceMock) ApproveTestimonial(ctx context.Context, id, reviewerID, comments string) (*models.PromotionResult, error) {
	return m.result, m.err
}

func (m *moderationServiceMock) RejectTestimonial(ctx context.Context, id, reviewerID, reason string) error {
	m.rejectedID = id
	m.rejectReason = reason
	return m.err
}

func (m *moderationServiceMock) ListUnpromoted(ctx context.Context) ([]models.ProductSubmission, error) {
	return m.products, m.err
}

func (m *moderationServiceMock) RetryPromotion(ctx context.Context, id, reviewerID string) (*models.PromotionResult, error) {
	return m.result, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asModerator(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "rev-1", Role: models.RoleModerator})
}

func validProductPayload() []byte {
	payload, _ := json.Marshal(dto.CreateProductSubmissionRequest{
		Name:         "Curso de Violão",
		Description:  "Aprenda do zero",
		Price:        197,
		Category:     "education",
		Platform:     "hotmart",
		SalesPageURL: "https://pay.example.com/violao",
	})
	return payload
}

func TestSubmissionHandlerCreateProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{
		product: &models.ProductSubmission{ID: "sub-1", Status: models.SubmissionStatusPending},
	}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/submissions/products", validProductPayload())
	asModerator(c)

	handler.CreateProduct(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "rev-1", mockSvc.submitterSeen)
}

func TestSubmissionHandlerCreateProductMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(&moderationServiceMock{})

	c, w := newGinContext(http.MethodPost, "/submissions/products", []byte("{not json"))
	asModerator(c)

	handler.CreateProduct(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerCreateProductRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(&moderationServiceMock{})

	c, w := newGinContext(http.MethodPost, "/submissions/products", validProductPayload())

	handler.CreateProduct(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmissionHandlerListProductsDefaultsToPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{products: []models.ProductSubmission{}}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/submissions/products", nil)
	asModerator(c)

	handler.ListProducts(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.SubmissionStatusPending, mockSvc.listStatus)
}

func TestSubmissionHandlerListProductsLegacyStatusAlias(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{products: []models.ProductSubmission{}}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/submissions/products?status=aprovado", nil)
	asModerator(c)

	handler.ListProducts(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.SubmissionStatusApproved, mockSvc.listStatus)
}

func TestSubmissionHandlerApproveProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{
		result: &models.PromotionResult{Success: true, Promoted: true, SubmissionID: "sub-1", CatalogEntryID: "cat-1"},
	}
	handler := NewSubmissionHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReviewRequest{Comments: "looks good"})
	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-1/approve", payload)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}
	asModerator(c)

	handler.ApproveProduct(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data models.PromotionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Data.Promoted)
	require.Equal(t, "cat-1", env.Data.CatalogEntryID)
}

func TestSubmissionHandlerApproveProductToleratesEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{
		result: &models.PromotionResult{Success: true, Promoted: true, SubmissionID: "sub-1"},
	}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}
	asModerator(c)

	handler.ApproveProduct(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSubmissionHandlerApproveProductAlreadyReviewed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{err: appErrors.ErrInvalidTransition}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}
	asModerator(c)

	handler.ApproveProduct(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmissionHandlerRejectProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{}
	handler := NewSubmissionHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReviewRequest{Comments: "image quality too low"})
	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-1/reject", payload)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}
	asModerator(c)

	handler.RejectProduct(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "sub-1", mockSvc.rejectedID)
	require.Equal(t, "image quality too low", mockSvc.rejectReason)
}

func TestSubmissionHandlerRejectProductMissingReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "rejection requires a reason")}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-1/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}
	asModerator(c)

	handler.RejectProduct(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerApproveTestimonial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{
		result: &models.PromotionResult{Success: true, Promoted: true, SubmissionID: "depo-1", CatalogEntryID: "cat-9"},
	}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/submissions/testimonials/depo-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "depo-1"}}
	asModerator(c)

	handler.ApproveTestimonial(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSubmissionHandlerListUnpromoted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{
		products: []models.ProductSubmission{{ID: "sub-7", Status: models.SubmissionStatusApproved}},
	}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/submissions/products/unpromoted", nil)
	asModerator(c)

	handler.ListUnpromoted(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []models.ProductSubmission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	require.Equal(t, "sub-7", env.Data[0].ID)
}

func TestSubmissionHandlerRetryPromotion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &moderationServiceMock{
		result: &models.PromotionResult{Success: true, Promoted: true, SubmissionID: "sub-7", CatalogEntryID: "cat-3"},
	}
	handler := NewSubmissionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-7/promote", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-7"}}
	asModerator(c)

	handler.RetryPromotion(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSubmissionHandlerRetryPromotionRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(&moderationServiceMock{})

	c, w := newGinContext(http.MethodPost, "/submissions/products/sub-7/promote", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-7"}}

	handler.RetryPromotion(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
