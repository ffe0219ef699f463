package users

import "context"

type Repository interface {
	// Create devuelve ErrAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, u User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}
