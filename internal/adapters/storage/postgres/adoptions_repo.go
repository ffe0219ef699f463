package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/adoptions"
)

// AdoptionsRepo es el ledger en postgres. La unicidad de la pendiente la da
// adoption_requests_one_pending_idx; acá solo se traduce el 23505.
type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const adoptionColumns = `
	id,
	requester_email, requester_name, requester_address, phone,
	owner_email,
	pet_id, pet_name, category, image, short_description, long_description,
	status, agreement_accepted,
	vaccination_verified, vaccination_proof,
	neutering_verified, neutering_proof,
	vet_verified, verified_at,
	created_at`

func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (`+adoptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		req.ID,
		req.RequesterEmail,
		req.RequesterName,
		req.RequesterAddress,
		req.Phone,
		req.OwnerEmail,
		req.PetID,
		req.PetName,
		req.Category,
		req.Image,
		req.ShortDescription,
		req.LongDescription,
		string(req.Status),
		req.AgreementAccepted,
		req.VaccinationVerified,
		req.VaccinationProof,
		req.NeuteringVerified,
		req.NeuteringProof,
		req.VetVerified,
		toNullTime(req.VerifiedAt),
		req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return adoptions.ErrDuplicatePending
		}
		return fmt.Errorf("postgres: create adoption request: %w", err)
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE id = $1`, id)
	return scanOne(row)
}

func (r *AdoptionsRepo) ListByRequester(ctx context.Context, email string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+adoptionColumns+`
		FROM adoption_requests
		WHERE lower(requester_email) = $1
		ORDER BY created_at DESC, id DESC
	`, strings.ToLower(email))
}

func (r *AdoptionsRepo) ListPendingByOwner(ctx context.Context, email string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+adoptionColumns+`
		FROM adoption_requests
		WHERE lower(owner_email) = $1 AND status = 'pending'
		ORDER BY created_at DESC, id DESC
	`, strings.ToLower(email))
}

func (r *AdoptionsRepo) ListHealthPending(ctx context.Context) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+adoptionColumns+`
		FROM adoption_requests
		WHERE status = 'accepted' AND (NOT vaccination_verified OR NOT neutering_verified)
		ORDER BY created_at DESC, id DESC
	`)
}

func (r *AdoptionsRepo) ListAccepted(ctx context.Context) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+adoptionColumns+`
		FROM adoption_requests
		WHERE status = 'accepted'
		ORDER BY created_at DESC, id DESC
	`)
}

// SetStatus: UPDATE incondicional de una fila, sin guard sobre el estado previo.
func (r *AdoptionsRepo) SetStatus(ctx context.Context, id string, status adoptions.Status) (adoptions.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE adoption_requests
		SET status = $2
		WHERE id = $1
		RETURNING `+adoptionColumns,
		id, string(status),
	)
	return scanOne(row)
}

func (r *AdoptionsRepo) SetVerification(ctx context.Context, id string, kind adoptions.VerificationKind, proof string, at time.Time) (adoptions.Request, error) {
	var set string
	switch kind {
	case adoptions.VerificationVaccination:
		set = "vaccination_verified = TRUE, vaccination_proof = $2"
	case adoptions.VerificationNeutering:
		set = "neutering_verified = TRUE, neutering_proof = $2"
	default:
		return adoptions.Request{}, fmt.Errorf("postgres: unknown verification kind %q", kind)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE adoption_requests
		SET `+set+`, vet_verified = TRUE, verified_at = $3
		WHERE id = $1
		RETURNING `+adoptionColumns,
		id, proof, at,
	)
	return scanOne(row)
}

func (r *AdoptionsRepo) query(ctx context.Context, q string, args ...any) ([]adoptions.Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		req, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanOne(row *sql.Row) (adoptions.Request, error) {
	req, err := scanAdoption(row)
	if errors.Is(err, sql.ErrNoRows) {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return req, err
}

func scanAdoption(s rowScanner) (adoptions.Request, error) {
	var (
		req        adoptions.Request
		status     string
		verifiedAt sql.NullTime
	)
	err := s.Scan(
		&req.ID,
		&req.RequesterEmail,
		&req.RequesterName,
		&req.RequesterAddress,
		&req.Phone,
		&req.OwnerEmail,
		&req.PetID,
		&req.PetName,
		&req.Category,
		&req.Image,
		&req.ShortDescription,
		&req.LongDescription,
		&status,
		&req.AgreementAccepted,
		&req.VaccinationVerified,
		&req.VaccinationProof,
		&req.NeuteringVerified,
		&req.NeuteringProof,
		&req.VetVerified,
		&verifiedAt,
		&req.CreatedAt,
	)
	req.Status = adoptions.Status(status)
	req.VerifiedAt = fromNullTime(verifiedAt)
	return req, err
}
