package adoptions

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ledger valida y persiste solicitudes. No dispara efectos secundarios: eso es del Coordinator.
type Ledger struct {
	repo Repository
	now  func() time.Time
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	RequesterEmail   string
	RequesterName    string
	RequesterAddress string
	Phone            string
	OwnerEmail       string

	PetID            string
	PetName          string
	Category         string
	Image            string
	ShortDescription string
	LongDescription  string

	AgreementAccepted bool
}

func (l *Ledger) Create(ctx context.Context, in CreateInput) (Request, error) {
	requester := normalizeEmail(in.RequesterEmail)
	owner := normalizeEmail(in.OwnerEmail)

	// Auto-adopción primero: es conflicto aunque falten otros campos.
	if requester != "" && requester == owner {
		return Request{}, ErrSelfAdoption
	}

	required := []struct{ field, value string }{
		{"userEmail", requester},
		{"userName", in.RequesterName},
		{"userAddress", in.RequesterAddress},
		{"phone", in.Phone},
		{"ownerEmail", owner},
		{"petId", in.PetID},
		{"name", in.PetName},
		{"category", in.Category},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Request{}, validationError(f.field + " is required")
		}
	}
	if !validEmail(requester) {
		return Request{}, validationError("userEmail is not a valid email")
	}
	if !validEmail(owner) {
		return Request{}, validationError("ownerEmail is not a valid email")
	}

	r := Request{
		ID:                uuid.NewString(),
		RequesterEmail:    requester,
		RequesterName:     strings.TrimSpace(in.RequesterName),
		RequesterAddress:  strings.TrimSpace(in.RequesterAddress),
		Phone:             strings.TrimSpace(in.Phone),
		OwnerEmail:        owner,
		PetID:             strings.TrimSpace(in.PetID),
		PetName:           strings.TrimSpace(in.PetName),
		Category:          strings.TrimSpace(in.Category),
		Image:             strings.TrimSpace(in.Image),
		ShortDescription:  strings.TrimSpace(in.ShortDescription),
		LongDescription:   strings.TrimSpace(in.LongDescription),
		Status:            StatusPending,
		AgreementAccepted: in.AgreementAccepted,
		CreatedAt:         l.now(),
	}

	if err := l.repo.Create(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (l *Ledger) Get(ctx context.Context, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrNotFound
	}
	return l.repo.GetByID(ctx, id)
}

func (l *Ledger) FindByRequester(ctx context.Context, email string) ([]Request, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, validationError("userEmail is required")
	}
	return l.repo.ListByRequester(ctx, email)
}

func (l *Ledger) FindPendingByOwner(ctx context.Context, email string) ([]Request, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, validationError("owner email is required")
	}
	return l.repo.ListPendingByOwner(ctx, email)
}

func (l *Ledger) FindHealthPending(ctx context.Context) ([]Request, error) {
	return l.repo.ListHealthPending(ctx)
}

func (l *Ledger) FindAccepted(ctx context.Context) ([]Request, error) {
	return l.repo.ListAccepted(ctx)
}

// SetStatus solo acepta los estados terminales; no hay camino de vuelta a pending.
func (l *Ledger) SetStatus(ctx context.Context, id string, status Status) (Request, error) {
	if status != StatusAccepted && status != StatusRejected {
		return Request{}, validationError("status must be accepted or rejected")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrNotFound
	}
	return l.repo.SetStatus(ctx, id, status)
}

// SetVerification no mira el estado de la solicitud: es metadata aditiva.
func (l *Ledger) SetVerification(ctx context.Context, id string, kind VerificationKind, proof string) (Request, error) {
	if kind != VerificationVaccination && kind != VerificationNeutering {
		return Request{}, validationError("unknown verification kind")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrNotFound
	}
	return l.repo.SetVerification(ctx, id, kind, strings.TrimSpace(proof), l.now())
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validEmail exige una dirección sola, sin display name ("Ana <a@b.co>" no vale).
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
