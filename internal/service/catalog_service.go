package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/dto"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	appErrors "github.com/vitrine-labs/vitrine-mod-api/pkg/errors"
)

const (
	cacheKeyActiveProducts     = "catalog:products:active"
	cacheKeyActiveTestimonials = "catalog:testimonials:active"
	cachePatternCatalog        = "catalog:*"
)

type catalogRepository interface {
	GetByID(ctx context.Context, id string) (*models.CatalogProduct, error)
	Update(ctx context.Context, id string, patch models.CatalogProductPatch) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]models.CatalogProduct, error)
	ListAll(ctx context.Context) ([]models.CatalogProduct, error)
	ListActiveTestimonials(ctx context.Context) ([]models.CatalogTestimonial, error)
}

// CatalogService serves the published catalog and the curation controls that
// remain writable after promotion. Active listings are cached; every write
// invalidates the catalog cache keyspace.
type CatalogService struct {
	repo   catalogRepository
	cache  *CacheService
	audit  auditLogger
	logger *zap.Logger
	ttl    time.Duration
}

// NewCatalogService constructs the service.
func NewCatalogService(repo catalogRepository, cache *CacheService, audit auditLogger, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, audit: audit, logger: logger, ttl: ttl}
}

// ListActive returns the publicly visible products, cache-first. The second
// return value reports whether the listing came from cache.
func (s *CatalogService) ListActive(ctx context.Context) ([]models.CatalogProduct, bool, error) {
	var cached []models.CatalogProduct
	if hit, err := s.cache.Get(ctx, cacheKeyActiveProducts, &cached); err == nil && hit {
		return cached, true, nil
	}
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, false, storeError(err, "failed to list active catalog products")
	}
	if err := s.cache.Set(ctx, cacheKeyActiveProducts, products, s.ttl); err != nil {
		s.logger.Warn("failed to cache active catalog products", zap.Error(err))
	}
	return products, false, nil
}

// ListAll returns every catalog product including hidden ones, for the admin
// curation surface. Not cached: curators need to see their writes immediately.
func (s *CatalogService) ListAll(ctx context.Context) ([]models.CatalogProduct, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list catalog products")
	}
	return products, nil
}

// ListActiveTestimonials returns the publicly visible testimonials, cache-first.
func (s *CatalogService) ListActiveTestimonials(ctx context.Context) ([]models.CatalogTestimonial, bool, error) {
	var cached []models.CatalogTestimonial
	if hit, err := s.cache.Get(ctx, cacheKeyActiveTestimonials, &cached); err == nil && hit {
		return cached, true, nil
	}
	testimonials, err := s.repo.ListActiveTestimonials(ctx)
	if err != nil {
		return nil, false, storeError(err, "failed to list active catalog testimonials")
	}
	if err := s.cache.Set(ctx, cacheKeyActiveTestimonials, testimonials, s.ttl); err != nil {
		s.logger.Warn("failed to cache active catalog testimonials", zap.Error(err))
	}
	return testimonials, false, nil
}

// Get returns a single catalog product.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.CatalogProduct, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, storeError(err, "failed to load catalog product")
	}
	return product, nil
}

// Curate applies the post-publication display controls: visibility, featured
// flag and ordering. Content fields are immutable here.
func (s *CatalogService) Curate(ctx context.Context, id, curatorID string, req dto.UpdateCatalogProductRequest) (*models.CatalogProduct, error) {
	if strings.TrimSpace(curatorID) == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	patch := models.CatalogProductPatch{
		Active:     req.Active,
		Featured:   req.Featured,
		OrderIndex: req.OrderIndex,
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one of active, featured or order_index is required")
	}
	if patch.OrderIndex != nil && *patch.OrderIndex < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "order_index must not be negative")
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, storeError(err, "failed to update catalog product")
	}
	s.invalidate(ctx)
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to reload catalog product")
	}
	s.emitAudit(ctx, curatorID, id, patch)
	return product, nil
}

// Remove unpublishes a catalog product permanently.
func (s *CatalogService) Remove(ctx context.Context, id, curatorID string) error {
	if strings.TrimSpace(curatorID) == "" {
		return appErrors.ErrUnauthenticated
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return storeError(err, "failed to delete catalog product")
	}
	s.invalidate(ctx)
	s.emitAudit(ctx, curatorID, id, map[string]string{"removed": "true"})
	return nil
}

// InvalidateListings drops the cached catalog listings. The moderation flow
// calls this after a successful promotion so new entries appear immediately.
func (s *CatalogService) InvalidateListings(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cachePatternCatalog); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) emitAudit(ctx context.Context, curatorID, productID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	values, err := json.Marshal(payload)
	if err != nil {
		values = []byte("{}")
	}
	log := &models.AuditLog{
		UserID:     &curatorID,
		Action:     models.AuditActionCatalogCurate,
		Resource:   "catalog_product",
		ResourceID: &productID,
		NewValues:  values,
		IPAddress:  "system",
		UserAgent:  "catalog-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
