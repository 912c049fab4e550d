package models

import "time"

// DefaultCommissionRate is applied when an approved submission carries no
// usable rate.
const DefaultCommissionRate = 50.0

// CatalogProduct is a published, publicly-served affiliate product. It has no
// back-reference to the submission it was promoted from.
type CatalogProduct struct {
	ID             string     `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	Price          float64    `db:"price" json:"price"`
	Category       string     `db:"category" json:"category"`
	Platform       string     `db:"platform" json:"platform"`
	ImageURL       string     `db:"image_url" json:"image_url"`
	ImageURLAlt    string     `db:"image_url_alt" json:"image_url_alt"`
	Benefits       StringList `db:"benefits" json:"benefits"`
	CommissionRate float64    `db:"commission_rate" json:"commission_rate"`
	SalesPageURL   string     `db:"sales_page_url" json:"sales_page_url"`
	Active         bool       `db:"active" json:"active"`
	Featured       bool       `db:"featured" json:"featured"`
	OrderIndex     int        `db:"order_index" json:"order_index"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// CatalogTestimonial is a published testimonial image.
type CatalogTestimonial struct {
	ID         string    `db:"id" json:"id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	Caption    string    `db:"caption" json:"caption"`
	Active     bool      `db:"active" json:"active"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CatalogProductPatch groups the curation fields that catalog management may
// change after publication. Nil fields are left untouched.
type CatalogProductPatch struct {
	Active     *bool `json:"active,omitempty"`
	Featured   *bool `json:"featured,omitempty"`
	OrderIndex *int  `json:"order_index,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p CatalogProductPatch) Empty() bool {
	return p.Active == nil && p.Featured == nil && p.OrderIndex == nil
}
