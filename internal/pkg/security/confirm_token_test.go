package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmSigner_RoundTrip(t *testing.T) {
	signer, err := NewConfirmSigner("test-secret", time.Minute)
	require.NoError(t, err)

	token, expires, err := signer.Issue(12, 3, "permanent_ban")
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))
	assert.NoError(t, signer.Verify(token, 12, 3, "permanent_ban"))
}

func TestConfirmSigner_Mismatch(t *testing.T) {
	signer, err := NewConfirmSigner("test-secret", time.Minute)
	require.NoError(t, err)
	token, _, err := signer.Issue(12, 3, "permanent_ban")
	require.NoError(t, err)

	assert.ErrorIs(t, signer.Verify(token, 13, 3, "permanent_ban"), ErrConfirmTokenMismatch)
	assert.ErrorIs(t, signer.Verify(token, 12, 4, "permanent_ban"), ErrConfirmTokenMismatch)
	assert.ErrorIs(t, signer.Verify(token, 12, 3, "suspension"), ErrConfirmTokenMismatch)
}

func TestConfirmSigner_Tampered(t *testing.T) {
	signer, err := NewConfirmSigner("test-secret", time.Minute)
	require.NoError(t, err)
	token, _, err := signer.Issue(1, 1, "permanent_ban")
	require.NoError(t, err)

	other, err := NewConfirmSigner("other-secret", time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(token, 1, 1, "permanent_ban"), ErrConfirmTokenInvalid)

	parts := strings.SplitN(token, ".", 2)
	assert.ErrorIs(t, signer.Verify(parts[0]+".AAAA", 1, 1, "permanent_ban"), ErrConfirmTokenInvalid)
	assert.ErrorIs(t, signer.Verify("garbage", 1, 1, "permanent_ban"), ErrConfirmTokenInvalid)
	assert.ErrorIs(t, signer.Verify("", 1, 1, "permanent_ban"), ErrConfirmTokenInvalid)
}

func TestConfirmSigner_Expired(t *testing.T) {
	signer, err := NewConfirmSigner("test-secret", time.Minute)
	require.NoError(t, err)
	issued := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }
	token, _, err := signer.Issue(1, 1, "permanent_ban")
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.ErrorIs(t, signer.Verify(token, 1, 1, "permanent_ban"), ErrConfirmTokenExpired)
}

func TestNewConfirmSigner_RequiresSecret(t *testing.T) {
	_, err := NewConfirmSigner("", time.Minute)
	assert.Error(t, err)

	signer, err := NewConfirmSigner("s", 0)
	require.NoError(t, err)
	assert.Equal(t, ConfirmTokenTTL, signer.ttl)
}
