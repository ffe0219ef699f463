package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption/internal/domain/adoptions"
)

type adoptionRepo struct {
	mu   sync.RWMutex
	byID map[string]adoptions.Request

	// pending indexa (requester, pet) -> id. Equivale al índice único parcial de postgres.
	pending map[pendingKey]string
}

type pendingKey struct {
	requester string
	petID     string
}

func keyOf(r adoptions.Request) pendingKey {
	return pendingKey{requester: strings.ToLower(r.RequesterEmail), petID: r.PetID}
}

func NewAdoptionRepo() adoptions.Repository {
	return &adoptionRepo{
		byID:    make(map[string]adoptions.Request),
		pending: make(map[pendingKey]string),
	}
}

// Create chequea e inserta bajo el mismo lock: dos creates concurrentes no pueden pasar ambos.
func (r *adoptionRepo) Create(ctx context.Context, req adoptions.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("adoption request id required")
	}
	if _, exists := r.byID[req.ID]; exists {
		return errors.New("adoption request already exists")
	}
	if req.Status == adoptions.StatusPending {
		k := keyOf(req)
		if _, dup := r.pending[k]; dup {
			return adoptions.ErrDuplicatePending
		}
		r.pending[k] = req.ID
	}
	r.byID[req.ID] = req
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return req, nil
}

func (r *adoptionRepo) ListByRequester(ctx context.Context, email string) ([]adoptions.Request, error) {
	email = strings.ToLower(email)
	return r.filter(func(x adoptions.Request) bool { return strings.ToLower(x.RequesterEmail) == email }), nil
}

func (r *adoptionRepo) ListPendingByOwner(ctx context.Context, email string) ([]adoptions.Request, error) {
	email = strings.ToLower(email)
	return r.filter(func(x adoptions.Request) bool {
		return x.Status == adoptions.StatusPending && strings.ToLower(x.OwnerEmail) == email
	}), nil
}

func (r *adoptionRepo) ListHealthPending(ctx context.Context) ([]adoptions.Request, error) {
	return r.filter(adoptions.Request.HealthPending), nil
}

func (r *adoptionRepo) ListAccepted(ctx context.Context) ([]adoptions.Request, error) {
	return r.filter(func(x adoptions.Request) bool { return x.Status == adoptions.StatusAccepted }), nil
}

func (r *adoptionRepo) SetStatus(ctx context.Context, id string, status adoptions.Status) (adoptions.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	if req.Status == adoptions.StatusPending && status != adoptions.StatusPending {
		delete(r.pending, keyOf(req))
	}
	req.Status = status
	r.byID[id] = req
	return req, nil
}

func (r *adoptionRepo) SetVerification(ctx context.Context, id string, kind adoptions.VerificationKind, proof string, at time.Time) (adoptions.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	switch kind {
	case adoptions.VerificationVaccination:
		req.VaccinationVerified = true
		req.VaccinationProof = proof
	case adoptions.VerificationNeutering:
		req.NeuteringVerified = true
		req.NeuteringProof = proof
	default:
		return adoptions.Request{}, errors.New("unknown verification kind")
	}
	req.VetVerified = true
	req.VerifiedAt = &at
	r.byID[id] = req
	return req, nil
}

// filter devuelve por created_at desc (más reciente primero, ID desc ante empate).
func (r *adoptionRepo) filter(keep func(adoptions.Request) bool) []adoptions.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Request, 0)
	for _, x := range r.byID {
		if keep(x) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
