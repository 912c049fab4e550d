package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
)

func TestTestimonialListByStatusPortugueseLabels(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTestimonialSubmissionRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "submitterId", "imageUrl", "caption", "status", "submittedAt"}).
		AddRow("t1", "aff-1", "https://cdn.example.com/t.jpg", "great", "aprovado", now).
		AddRow("t2", "aff-2", "https://cdn.example.com/u.jpg", "nice", "pendente", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM testimonial_submissions")).WillReturnRows(rows)

	subs, err := repo.ListByStatus(context.Background(), models.SubmissionStatusApproved)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "t1", subs[0].ID)
	assert.Equal(t, "https://cdn.example.com/t.jpg", subs[0].ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialCreateForcesPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTestimonialSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO testimonial_submissions").WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &models.TestimonialSubmission{
		SubmitterID: "aff-1",
		ImageURL:    "https://cdn.example.com/t.jpg",
		Status:      models.SubmissionStatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), sub))
	assert.Equal(t, models.SubmissionStatusPending, sub.Status)
	assert.NotEmpty(t, sub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialApproveAndPublishCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTestimonialSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE testimonial_submissions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO catalog_testimonials").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM testimonial_submissions").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry := models.CatalogTestimonial{ImageURL: "https://cdn.example.com/t.jpg", Active: true}
	err := repo.ApproveAndPublish(context.Background(), "t1", "rev-1", nil, &entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialApproveAndPublishLostRaceRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTestimonialSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE testimonial_submissions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	entry := models.CatalogTestimonial{}
	err := repo.ApproveAndPublish(context.Background(), "t1", "rev-1", nil, &entry)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialApproveAndPublishInsertFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTestimonialSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE testimonial_submissions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO catalog_testimonials").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	entry := models.CatalogTestimonial{}
	err := repo.ApproveAndPublish(context.Background(), "t1", "rev-1", nil, &entry)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
