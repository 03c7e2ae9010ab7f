package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour, time.Hour)
	id := uuid.New()

	tok, err := m.GenerateToken(id, "andi", "Andi", "cashier", "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestCustomerTokenIsNotAStaffToken(t *testing.T) {
	m := NewManager("secret", time.Hour, time.Hour)

	tok, err := m.GenerateCustomerToken("sess-1", "Budi", "0812", true)
	require.NoError(t, err)

	claims, err := m.ValidateCustomerToken(tok)
	require.NoError(t, err)
	assert.True(t, claims.Verified)
	assert.Equal(t, "0812", claims.Phone)

	_, err = m.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsWrongSecretAndExpiry(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Minute)
	tok, err := m.GenerateCustomerToken("sess-1", "Budi", "0812", false)
	require.NoError(t, err)

	other := NewManager("other", time.Minute, time.Minute)
	_, err = other.ValidateCustomerToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.ValidateCustomerToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateCustomerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
