package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// TokenIssuer lo implementa jwtauth.Service.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, time.Time, error)
}

type Service struct {
	repo   Repository
	admins map[string]struct{}
	now    func() time.Time
}

func NewService(repo Repository, adminEmails ...string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{
		repo:   repo,
		admins: admins,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	PhotoURL string
}

// Register es idempotente: si el email ya existe devuelve el usuario guardado y created=false.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, bool, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return User{}, false, ErrInvalidInput
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return User{}, false, ErrInvalidInput
	}

	if u, err := s.repo.GetByEmail(ctx, email); err == nil {
		return u, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	role := RoleUser
	if _, ok := s.admins[email]; ok {
		role = RoleAdmin
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		PhotoURL:  strings.TrimSpace(in.PhotoURL),
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// carrera entre dos registros del mismo email: gana el primero
		if errors.Is(err, ErrAlreadyExists) {
			existing, gerr := s.repo.GetByEmail(ctx, email)
			if gerr != nil {
				return User{}, false, gerr
			}
			return existing, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByEmail(ctx, email)
}

type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	User        User
}

// IssueToken emite un token para un usuario ya registrado.
func (s *Service) IssueToken(ctx context.Context, issuer TokenIssuer, email string) (Token, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return Token{}, err
	}
	tok, exp, err := issuer.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: tok, ExpiresAt: exp, User: u}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
