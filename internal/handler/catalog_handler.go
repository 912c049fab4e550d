package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitrine-labs/vitrine-mod-api/internal/dto"
	"github.com/vitrine-labs/vitrine-mod-api/internal/middleware"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/response"
)

type catalogService interface {
	ListActive(ctx context.Context) ([]models.CatalogProduct, bool, error)
	ListAll(ctx context.Context) ([]models.CatalogProduct, error)
	ListActiveTestimonials(ctx context.Context) ([]models.CatalogTestimonial, bool, error)
	Get(ctx context.Context, id string) (*models.CatalogProduct, error)
	Curate(ctx context.Context, id, curatorID string, req dto.UpdateCatalogProductRequest) (*models.CatalogProduct, error)
	Remove(ctx context.Context, id, curatorID string) error
}

// CatalogHandler exposes the published catalog and its curation controls.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListActive godoc
// @Summary List publicly visible catalog products
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/products [get]
func (h *CatalogHandler) ListActive(c *gin.Context) {
	start := time.Now()
	products, cacheHit, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, products, nil, middleware.TimedMeta(c, start))
}

// ListAll godoc
// @Summary List all catalog products including hidden ones
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/products/all [get]
func (h *CatalogHandler) ListAll(c *gin.Context) {
	products, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, nil)
}

// ListTestimonials godoc
// @Summary List publicly visible testimonials
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/testimonials [get]
func (h *CatalogHandler) ListTestimonials(c *gin.Context) {
	start := time.Now()
	testimonials, cacheHit, err := h.service.ListActiveTestimonials(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, testimonials, nil, middleware.TimedMeta(c, start))
}

// Get godoc
// @Summary Fetch a catalog product
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Router /catalog/products/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// Update godoc
// @Summary Update display controls of a published product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param payload body dto.UpdateCatalogProductRequest true "Curation patch"
// @Success 200 {object} response.Envelope
// @Router /catalog/products/{id} [patch]
func (h *CatalogHandler) Update(c *gin.Context) {
	var req dto.UpdateCatalogProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid curation payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	product, err := h.service.Curate(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// Delete godoc
// @Summary Remove a product from the catalog
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 204
// @Router /catalog/products/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	if err := h.service.Remove(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
