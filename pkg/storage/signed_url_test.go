package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("moderation-secret", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "exports/decisions-2025.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "exports/decisions-2025.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("moderation-secret", time.Millisecond*10)
	token, _, err := signer.Generate("job-1", "exports/catalog.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "exports/catalog.pdf", path)
}

func TestSignedURLSignerRejectsTamperedPath(t *testing.T) {
	signer := NewSignedURLSigner("moderation-secret", time.Hour)
	token, _, err := signer.Generate("job-1", "exports/decisions.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 4)
	parts[2] = "Li4vLi4vZXRjL3Bhc3N3ZA"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.ErrorContains(t, err, "signature")
}

func TestSignedURLSignerRejectsForeignSecret(t *testing.T) {
	signer := NewSignedURLSigner("moderation-secret", time.Hour)
	other := NewSignedURLSigner("different-secret", time.Hour)
	token, _, err := signer.Generate("job-1", "exports/decisions.csv")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsDottedJobID(t *testing.T) {
	signer := NewSignedURLSigner("moderation-secret", time.Hour)
	_, _, err := signer.Generate("job.1", "exports/decisions.csv")
	require.Error(t, err)
}
