package security

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_Session(t *testing.T) {
	tm := NewTokenManager(testSecret)
	id := uuid.New()

	token, err := tm.GenerateSessionToken(id, time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token, TokenTypeSession)
	require.NoError(t, err)
	got, err := claims.ProfileID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = tm.ValidateToken(token, TokenTypeFlash)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = NewTokenManager("another-secret-another-secret-xx").ValidateToken(token, TokenTypeSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := &tokenManager{secret: []byte(testSecret), now: time.Now}
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tm.GenerateSessionToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ValidateToken(token, TokenTypeSession)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_Flash(t *testing.T) {
	tm := NewTokenManager(testSecret)
	token, err := tm.GenerateFlashToken(`{"message":"ok"}`)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token, TokenTypeFlash)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"ok"}`, claims.Flash)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
