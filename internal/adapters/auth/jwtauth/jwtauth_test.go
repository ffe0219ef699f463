package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, issuer string) *Service {
	t.Helper()
	s, err := New(Config{SigningKey: "test-key", Issuer: issuer, TTL: time.Hour})
	require.NoError(t, err)
	return s
}

func TestIssueAndVerify(t *testing.T) {
	s := newService(t, "pet-adoption")

	tok, exp, err := s.Issue("user-1", " Ana@Example.com ", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := s.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_Expired(t *testing.T) {
	s := newService(t, "")
	tok, _, err := s.Issue("user-1", "ana@example.com", "user")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_RejectsOtherKeyOrIssuer(t *testing.T) {
	a := newService(t, "pet-adoption")
	tok, _, err := a.Issue("user-1", "ana@example.com", "user")
	require.NoError(t, err)

	other, err := New(Config{SigningKey: "other-key", Issuer: "pet-adoption"})
	require.NoError(t, err)
	_, err = other.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := newService(t, "someone-else")
	_, err = wrongIssuer.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
