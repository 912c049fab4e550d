package dto

// UpdateCatalogProductRequest is the curation patch for a published product.
// Only the display controls are writable after publication; content edits go
// through a fresh submission.
type UpdateCatalogProductRequest struct {
	Active     *bool `json:"active"`
	Featured   *bool `json:"featured"`
	OrderIndex *int  `json:"order_index" validate:"omitempty,gte=0"`
}
