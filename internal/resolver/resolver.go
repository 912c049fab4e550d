// Package resolver normalises field-name drift in records read from the
// submission and catalog stores. Two historical naming conventions coexist in
// the wild (documented snake_case and a legacy camelCase generation); the
// resolver maps every logical field onto its canonical name exactly once so
// the rest of the system never performs alias fallbacks itself.
package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

// aliases maps legacy column names onto their canonical counterparts. The
// canonical (documented) name always wins when both are populated.
var aliases = map[string]string{
	"submittedAt":      "submitted_at",
	"reviewedAt":       "reviewed_at",
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"userId":           "user_id",
	"submitterId":      "submitter_id",
	"reviewerId":       "reviewer_id",
	"reviewerComments": "reviewer_comments",
	"imageUrl":         "image_url",
	"imageUrlAlt":      "image_url_alt",
	"commissionRate":   "commission_rate",
	"salesPageUrl":     "sales_page_url",
	"orderIndex":       "order_index",
}

// statusAliases normalises legacy status spellings. The first store
// generation persisted Portuguese labels.
var statusAliases = map[string]models.SubmissionStatus{
	"pendente":  models.SubmissionStatusPending,
	"aprovado":  models.SubmissionStatusApproved,
	"rejeitado": models.SubmissionStatusRejected,
	"pending":   models.SubmissionStatusPending,
	"approved":  models.SubmissionStatusApproved,
	"rejected":  models.SubmissionStatusRejected,
}

// defaulted lists fields that must be present on every canonical record even
// when neither alias carries a value.
var defaulted = []string{"id", "submitter_id", "submitted_at", "reviewer_id", "reviewer_comments", "reviewed_at"}

// Resolve returns a canonical copy of raw: every logical field appears exactly
// once under its documented name, legacy aliases are folded in as fallbacks,
// status is normalised (absent status means pending), and review-tracking
// fields missing under both names are present with a nil value.
//
// Resolve never fails and is idempotent: Resolve(Resolve(x)) == Resolve(x).
func Resolve(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw)+len(defaulted))
	for k, v := range raw {
		if canonical, ok := aliases[k]; ok {
			if existing, present := out[canonical]; !present || existing == nil {
				out[canonical] = v
			}
			continue
		}
		if k == "status" {
			continue // handled below
		}
		if existing, present := out[k]; !present || existing == nil {
			out[k] = v
		}
	}
	// A second pass so a canonical value read after its alias still wins.
	for k, v := range raw {
		if _, isAlias := aliases[k]; isAlias || k == "status" {
			continue
		}
		if v != nil {
			out[k] = v
		}
	}

	out["status"] = string(resolveStatus(raw["status"]))

	for _, field := range defaulted {
		if _, ok := out[field]; !ok {
			out[field] = nil
		}
	}
	return out
}

func resolveStatus(v interface{}) models.SubmissionStatus {
	s := AsString(v)
	if s == "" {
		return models.SubmissionStatusPending
	}
	if status, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return status
	}
	return models.SubmissionStatusPending
}

// AsString converts a raw store value into a string, tolerating the driver
// returning []byte.
func AsString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// AsOptionalString returns nil for absent values instead of the empty string.
func AsOptionalString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := AsString(v)
	if s == "" {
		return nil
	}
	return &s
}

// AsFloat converts numeric store values, tolerating numeric text columns.
func AsFloat(v interface{}) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case []byte:
		var f float64
		if _, err := fmt.Sscanf(string(t), "%g", &f); err == nil {
			return f
		}
		return 0
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%g", &f); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

// AsInt converts integral store values.
func AsInt(v interface{}) int {
	switch t := v.(type) {
	case nil:
		return 0
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case []byte:
		var n int
		if _, err := fmt.Sscanf(string(t), "%d", &n); err == nil {
			return n
		}
		return 0
	default:
		return 0
	}
}

// AsTime converts timestamp store values; the zero time marks absence.
func AsTime(v interface{}) time.Time {
	switch t := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return t
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	default:
		return time.Time{}
	}
}

// AsOptionalTime returns nil for absent timestamps.
func AsOptionalTime(v interface{}) *time.Time {
	ts := AsTime(v)
	if ts.IsZero() {
		return nil
	}
	return &ts
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// DecodeProductSubmission builds a typed submission from a canonicalised raw
// record. Call Resolve first; DecodeProductSubmission assumes canonical names.
func DecodeProductSubmission(rec map[string]interface{}) *models.ProductSubmission {
	sub := &models.ProductSubmission{
		ID:             str(rec, "id"),
		SubmitterID:    str(rec, "submitter_id"),
		Name:           str(rec, "name"),
		Description:    str(rec, "description"),
		Price:          AsFloat(rec["price"]),
		Category:       str(rec, "category"),
		Platform:       str(rec, "platform"),
		ImageURL:       str(rec, "image_url"),
		ImageURLAlt:    str(rec, "image_url_alt"),
		CommissionRate: AsFloat(rec["commission_rate"]),
		SalesPageURL:   str(rec, "sales_page_url"),
		Status:         models.SubmissionStatus(str(rec, "status")),
		SubmittedAt:    AsTime(rec["submitted_at"]),
		ReviewerID:     AsOptionalString(rec["reviewer_id"]),
		ReviewerNotes:  AsOptionalString(rec["reviewer_comments"]),
		ReviewedAt:     AsOptionalTime(rec["reviewed_at"]),
	}
	if raw, ok := rec["benefits"]; ok && raw != nil {
		var list models.StringList
		if err := list.Scan(raw); err == nil {
			sub.Benefits = list
		}
	}
	if !sub.Status.Valid() {
		sub.Status = models.SubmissionStatusPending
	}
	return sub
}

// DecodeTestimonialSubmission builds a typed testimonial submission from a
// canonicalised raw record.
func DecodeTestimonialSubmission(rec map[string]interface{}) *models.TestimonialSubmission {
	sub := &models.TestimonialSubmission{
		ID:            str(rec, "id"),
		SubmitterID:   str(rec, "submitter_id"),
		ImageURL:      str(rec, "image_url"),
		Caption:       str(rec, "caption"),
		Status:        models.SubmissionStatus(str(rec, "status")),
		SubmittedAt:   AsTime(rec["submitted_at"]),
		ReviewerID:    AsOptionalString(rec["reviewer_id"]),
		ReviewerNotes: AsOptionalString(rec["reviewer_comments"]),
		ReviewedAt:    AsOptionalTime(rec["reviewed_at"]),
	}
	if !sub.Status.Valid() {
		sub.Status = models.SubmissionStatusPending
	}
	return sub
}

func str(rec map[string]interface{}, key string) string {
	return AsString(rec[key])
}
