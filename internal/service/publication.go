package service

import (
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

// ToCatalogEntry maps an approved product submission into a catalog draft.
// Pure and total: it copies the public payload verbatim, applies the catalog
// defaults, and drops every moderation-only field. Promotion never inherits
// display prominence; featured placement and ordering are curation steps that
// happen after publication.
func ToCatalogEntry(sub *models.ProductSubmission) models.CatalogProduct {
	entry := models.CatalogProduct{
		Name:         sub.Name,
		Description:  sub.Description,
		Price:        sub.Price,
		Category:     sub.Category,
		Platform:     sub.Platform,
		ImageURL:     sub.ImageURL,
		ImageURLAlt:  sub.ImageURLAlt,
		Benefits:     append(models.StringList(nil), sub.Benefits...),
		SalesPageURL: sub.SalesPageURL,
		Active:       true,
		Featured:     false,
		OrderIndex:   0,
	}

	entry.CommissionRate = sub.CommissionRate
	if entry.CommissionRate <= 0 {
		entry.CommissionRate = models.DefaultCommissionRate
	}

	// Legacy submissions populated only one of the two image fields; the
	// catalog always serves both.
	if entry.ImageURL == "" {
		entry.ImageURL = entry.ImageURLAlt
	}
	if entry.ImageURLAlt == "" {
		entry.ImageURLAlt = entry.ImageURL
	}

	return entry
}

// ToCatalogTestimonial maps an approved testimonial submission into its
// published form.
func ToCatalogTestimonial(sub *models.TestimonialSubmission) models.CatalogTestimonial {
	return models.CatalogTestimonial{
		ImageURL:   sub.ImageURL,
		Caption:    sub.Caption,
		Active:     true,
		OrderIndex: 0,
	}
}
