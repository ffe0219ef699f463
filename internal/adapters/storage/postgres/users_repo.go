package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-adoption/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, photo_url, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, u.ID, strings.ToLower(u.Email), u.Name, u.PhotoURL, string(u.Role), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	var (
		u    users.User
		role string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, photo_url, role, created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Email, &u.Name, &u.PhotoURL, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	u.Role = users.Role(role)
	return u, nil
}
