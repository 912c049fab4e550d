package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

func TestResolveFoldsLegacyAliases(t *testing.T) {
	raw := map[string]interface{}{
		"id":             "s1",
		"submitterId":    "u1",
		"imageUrl":       "https://cdn.example.com/a.jpg",
		"commissionRate": 40.0,
		"salesPageUrl":   "https://example.com/buy",
	}

	out := Resolve(raw)

	assert.Equal(t, "u1", out["submitter_id"])
	assert.Equal(t, "https://cdn.example.com/a.jpg", out["image_url"])
	assert.Equal(t, 40.0, out["commission_rate"])
	assert.Equal(t, "https://example.com/buy", out["sales_page_url"])
	assert.NotContains(t, out, "submitterId")
	assert.NotContains(t, out, "imageUrl")
	assert.NotContains(t, out, "commissionRate")
	assert.NotContains(t, out, "salesPageUrl")
}

func TestResolveCanonicalWinsOverAlias(t *testing.T) {
	out := Resolve(map[string]interface{}{
		"image_url": "https://cdn.example.com/canonical.jpg",
		"imageUrl":  "https://cdn.example.com/legacy.jpg",
	})
	assert.Equal(t, "https://cdn.example.com/canonical.jpg", out["image_url"])
}

func TestResolveAliasFillsNilCanonical(t *testing.T) {
	out := Resolve(map[string]interface{}{
		"image_url": nil,
		"imageUrl":  "https://cdn.example.com/legacy.jpg",
	})
	assert.Equal(t, "https://cdn.example.com/legacy.jpg", out["image_url"])
}

func TestResolveStatusSpellings(t *testing.T) {
	cases := map[string]models.SubmissionStatus{
		"pending":    models.SubmissionStatusPending,
		"approved":   models.SubmissionStatusApproved,
		"rejected":   models.SubmissionStatusRejected,
		"pendente":   models.SubmissionStatusPending,
		"aprovado":   models.SubmissionStatusApproved,
		"rejeitado":  models.SubmissionStatusRejected,
		"APROVADO":   models.SubmissionStatusApproved,
		" rejected ": models.SubmissionStatusRejected,
		"garbage":    models.SubmissionStatusPending,
	}
	for in, want := range cases {
		out := Resolve(map[string]interface{}{"id": "s1", "status": in})
		assert.Equal(t, string(want), out["status"], "status %q", in)
	}
}

func TestResolveAbsentStatusIsPending(t *testing.T) {
	out := Resolve(map[string]interface{}{"id": "s1"})
	assert.Equal(t, string(models.SubmissionStatusPending), out["status"])
}

func TestResolveDefaultsReviewFields(t *testing.T) {
	out := Resolve(map[string]interface{}{"name": "Widget"})
	for _, field := range []string{"id", "submitter_id", "submitted_at", "reviewer_id", "reviewer_comments", "reviewed_at"} {
		v, ok := out[field]
		require.True(t, ok, "missing defaulted field %s", field)
		assert.Nil(t, v, "field %s should default to nil", field)
	}
}

func TestResolveIdempotent(t *testing.T) {
	raw := map[string]interface{}{
		"id":          "s1",
		"submitterId": "u1",
		"status":      "aprovado",
		"imageUrl":    "https://cdn.example.com/a.jpg",
		"name":        "Widget",
	}
	once := Resolve(raw)
	twice := Resolve(once)
	assert.Equal(t, once, twice)
}

func TestAsStringByteSlices(t *testing.T) {
	assert.Equal(t, "hello", AsString([]byte("hello")))
	assert.Equal(t, "", AsString(nil))
	assert.Equal(t, "42", AsString(42))
}

func TestAsFloatNumericText(t *testing.T) {
	assert.Equal(t, 49.9, AsFloat([]byte("49.9")))
	assert.Equal(t, 50.0, AsFloat("50"))
	assert.Equal(t, 12.0, AsFloat(int64(12)))
	assert.Equal(t, 0.0, AsFloat(nil))
	assert.Equal(t, 0.0, AsFloat("not a number"))
}

func TestAsTimeLayouts(t *testing.T) {
	want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	got := AsTime("2024-03-15T10:30:00Z")
	assert.True(t, want.Equal(got))
	assert.True(t, AsTime(nil).IsZero())
	assert.True(t, AsTime("garbage").IsZero())
}

func TestDecodeProductSubmission(t *testing.T) {
	raw := Resolve(map[string]interface{}{
		"id":             "s1",
		"submitterId":    "u1",
		"name":           "Widget",
		"description":    "A widget",
		"price":          []byte("99.90"),
		"category":       "gadgets",
		"platform":       "hotmart",
		"imageUrl":       "https://cdn.example.com/a.jpg",
		"commissionRate": []byte("35.5"),
		"salesPageUrl":   "https://example.com/buy",
		"status":         "pendente",
		"submittedAt":    "2024-03-15T10:30:00Z",
		"benefits":       []byte(`["fast","cheap"]`),
	})

	sub := DecodeProductSubmission(raw)
	require.NotNil(t, sub)
	assert.Equal(t, "s1", sub.ID)
	assert.Equal(t, "u1", sub.SubmitterID)
	assert.Equal(t, 99.90, sub.Price)
	assert.Equal(t, 35.5, sub.CommissionRate)
	assert.Equal(t, models.SubmissionStatusPending, sub.Status)
	assert.Equal(t, models.StringList{"fast", "cheap"}, sub.Benefits)
	assert.False(t, sub.SubmittedAt.IsZero())
	assert.Nil(t, sub.ReviewerID)
	assert.Nil(t, sub.ReviewedAt)
}

func TestDecodeTestimonialSubmissionInvalidStatusFallsBack(t *testing.T) {
	sub := DecodeTestimonialSubmission(map[string]interface{}{
		"id":        "t1",
		"image_url": "https://cdn.example.com/t.jpg",
		"status":    "bogus",
	})
	assert.Equal(t, models.SubmissionStatusPending, sub.Status)
}
