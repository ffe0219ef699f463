package adoptions

import (
	"context"
	"time"
)

// Repository es el almacenamiento del ledger. Los listados van del más reciente al más antiguo.
type Repository interface {
	// Create devuelve ErrDuplicatePending si ya existe una pendiente para (requesterEmail, petID).
	// La unicidad la garantiza el storage, no un chequeo previo.
	Create(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)

	ListByRequester(ctx context.Context, email string) ([]Request, error)
	ListPendingByOwner(ctx context.Context, email string) ([]Request, error)
	ListHealthPending(ctx context.Context) ([]Request, error)
	ListAccepted(ctx context.Context) ([]Request, error)

	// SetStatus es un update incondicional (sin compare-and-swap).
	SetStatus(ctx context.Context, id string, status Status) (Request, error)
	// SetVerification marca el kind, guarda la prueba y siempre pisa vetVerified/verifiedAt.
	SetVerification(ctx context.Context, id string, kind VerificationKind, proof string, at time.Time) (Request, error)
}
