package dto

import (
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

// CreateProductSubmissionRequest is the payload for submitting a product for
// review. Status, reviewer fields and timestamps are assigned server-side.
type CreateProductSubmissionRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	Category       string   `json:"category" validate:"required"`
	Platform       string   `json:"platform" validate:"required"`
	ImageURL       string   `json:"image_url" validate:"omitempty,url"`
	ImageURLAlt    string   `json:"image_url_alt" validate:"omitempty,url"`
	Benefits       []string `json:"benefits"`
	CommissionRate float64  `json:"commission_rate" validate:"gte=0,lte=100"`
	SalesPageURL   string   `json:"sales_page_url" validate:"required,url"`
}

// CreateTestimonialSubmissionRequest is the payload for submitting a
// testimonial image for review.
type CreateTestimonialSubmissionRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption"`
}

// ReviewRequest carries the moderator decision input for approve and reject
// endpoints. Comments are optional on approval and mandatory on rejection;
// the service enforces the latter.
type ReviewRequest struct {
	Comments string `json:"comments"`
}

// SubmissionListQuery mirrors the supported listing filter.
type SubmissionListQuery struct {
	Status models.SubmissionStatus `form:"status"`
}
