package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SubmissionStatus captures the review state of a submitted item.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Valid reports whether the status is one of the known states.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status can no longer change.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// SubmissionKind distinguishes the submittable item families.
type SubmissionKind string

const (
	SubmissionKindProduct     SubmissionKind = "product"
	SubmissionKindTestimonial SubmissionKind = "testimonial"
)

// StringList stores a JSON array of strings in a JSONB column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported string list source type %T", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// ProductSubmission is a candidate affiliate product awaiting review.
type ProductSubmission struct {
	ID             string           `db:"id" json:"id"`
	SubmitterID    string           `db:"submitter_id" json:"submitter_id"`
	Name           string           `db:"name" json:"name"`
	Description    string           `db:"description" json:"description"`
	Price          float64          `db:"price" json:"price"`
	Category       string           `db:"category" json:"category"`
	Platform       string           `db:"platform" json:"platform"`
	ImageURL       string           `db:"image_url" json:"image_url"`
	ImageURLAlt    string           `db:"image_url_alt" json:"image_url_alt"`
	Benefits       StringList       `db:"benefits" json:"benefits"`
	CommissionRate float64          `db:"commission_rate" json:"commission_rate"`
	SalesPageURL   string           `db:"sales_page_url" json:"sales_page_url"`
	Status         SubmissionStatus `db:"status" json:"status"`
	SubmittedAt    time.Time        `db:"submitted_at" json:"submitted_at"`
	ReviewerID     *string          `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewerNotes  *string          `db:"reviewer_comments" json:"reviewer_comments,omitempty"`
	ReviewedAt     *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// TestimonialSubmission is a candidate testimonial image awaiting review.
type TestimonialSubmission struct {
	ID            string           `db:"id" json:"id"`
	SubmitterID   string           `db:"submitter_id" json:"submitter_id"`
	ImageURL      string           `db:"image_url" json:"image_url"`
	Caption       string           `db:"caption" json:"caption"`
	Status        SubmissionStatus `db:"status" json:"status"`
	SubmittedAt   time.Time        `db:"submitted_at" json:"submitted_at"`
	ReviewerID    *string          `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewerNotes *string          `db:"reviewer_comments" json:"reviewer_comments,omitempty"`
	ReviewedAt    *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// ReviewDecision records the outcome of a pending→terminal transition,
// reported back to the moderation surface.
type ReviewDecision struct {
	Kind       SubmissionKind   `json:"kind"`
	ID         string           `json:"id"`
	Status     SubmissionStatus `json:"status"`
	ReviewerID string           `json:"reviewer_id"`
	Comments   string           `json:"comments,omitempty"`
	ReviewedAt time.Time        `json:"reviewed_at"`
}

// PromotionResult is the structured outcome of an approval, covering both the
// atomic and the two-step promotion paths.
type PromotionResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	SubmissionID   string `json:"submission_id"`
	CatalogEntryID string `json:"catalog_entry_id,omitempty"`
	// Promoted is false when the status transition succeeded but the
	// catalog insert did not; the submission is retryable via the
	// unpromoted listing.
	Promoted bool `json:"promoted"`
}
