package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	byEmail map[string]User
}

func (r *testRepo) Create(_ context.Context, u User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrAlreadyExists
	}
	r.byEmail[u.Email] = u
	return nil
}

func (r *testRepo) GetByEmail(_ context.Context, email string) (User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

type stubIssuer struct {
	gotSub, gotEmail, gotRole string
	err                       error
}

func (s *stubIssuer) Issue(userID, email, role string) (string, time.Time, error) {
	s.gotSub, s.gotEmail, s.gotRole = userID, email, role
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "signed", time.Unix(1700000000, 0), nil
}

func TestRegister_IdempotentByEmail(t *testing.T) {
	svc := NewService(&testRepo{byEmail: map[string]User{}})
	ctx := context.Background()

	u, created, err := svc.Register(ctx, RegisterInput{Email: " Ana@Example.com ", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)

	again, created, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Name: "Otra"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Ana", again.Name)
}

func TestRegister_AdminsAndValidation(t *testing.T) {
	svc := NewService(&testRepo{byEmail: map[string]User{}}, "ADMIN@example.com")
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterInput{Email: "admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)

	for _, bad := range []string{"", "nope", "Ana <ana@example.com>"} {
		_, _, err := svc.Register(ctx, RegisterInput{Email: bad})
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestIssueToken(t *testing.T) {
	svc := NewService(&testRepo{byEmail: map[string]User{}})
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com"})
	require.NoError(t, err)

	iss := &stubIssuer{}
	tok, err := svc.IssueToken(ctx, iss, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "signed", tok.AccessToken)
	assert.Equal(t, u.ID, iss.gotSub)
	assert.Equal(t, "user", iss.gotRole)

	_, err = svc.IssueToken(ctx, iss, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.IssueToken(ctx, &stubIssuer{err: errors.New("boom")}, "ana@example.com")
	assert.Error(t, err)
}
