package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_user_id, owner_email,
	name, category, image,
	short_description, long_description,
	age, location,
	is_adopted, is_available,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		p.ID,
		p.OwnerUserID,
		p.OwnerEmail,
		p.Name,
		string(p.Category),
		p.Image,
		p.ShortDescription,
		p.LongDescription,
		p.Age,
		p.Location,
		p.IsAdopted,
		p.IsAvailable,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update no toca is_adopted / is_available.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			category = $3,
			image = $4,
			short_description = $5,
			long_description = $6,
			age = $7,
			location = $8,
			updated_at = $9
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Category),
		p.Image,
		p.ShortDescription,
		p.LongDescription,
		p.Age,
		p.Location,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerUserID)
}

func (r *PetsRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + petColumns + ` FROM pets WHERE TRUE`)

	args := []any{}
	argN := 1

	if filter.Category != "" {
		sb.WriteString(fmt.Sprintf(" AND category = $%d", argN))
		args = append(args, string(filter.Category))
		argN++
	}
	if filter.AvailableOnly {
		sb.WriteString(" AND is_available")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf(" AND name ILIKE $%d", argN))
		args = append(args, "%"+q+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argN))
	args = append(args, limit)

	return r.query(ctx, sb.String(), args...)
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// SetAdopted escribe los dos flags en un solo UPDATE.
func (r *PetsRepo) SetAdopted(ctx context.Context, id string, adopted bool, at time.Time) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE pets
		SET is_adopted = $2, is_available = NOT $2, updated_at = $3
		WHERE id = $1
		RETURNING `+petColumns,
		id, adopted, at,
	)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) query(ctx context.Context, q string, args ...any) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(s rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var category string
	err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.OwnerEmail,
		&p.Name,
		&category,
		&p.Image,
		&p.ShortDescription,
		&p.LongDescription,
		&p.Age,
		&p.Location,
		&p.IsAdopted,
		&p.IsAvailable,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Category = pets.Category(category)
	return p, err
}
