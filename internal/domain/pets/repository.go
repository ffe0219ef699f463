package pets

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	List(ctx context.Context, filter ListFilter) ([]Pet, error)
	Delete(ctx context.Context, id string) error

	// SetAdopted escribe isAdopted=adopted e isAvailable=!adopted en una sola operación.
	SetAdopted(ctx context.Context, id string, adopted bool, at time.Time) (Pet, error)
}
