package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption/internal/domain/timeline"
)

type TimelineRepo struct {
	db *sql.DB
}

func NewTimelineRepo(db *sql.DB) *TimelineRepo {
	return &TimelineRepo{db: db}
}

func (r *TimelineRepo) Append(ctx context.Context, e timeline.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_timeline (
			id, pet_id,
			type, request_id, actor,
			title, notes,
			occurred_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.PetID,
		string(e.Type),
		e.RequestID,
		e.Actor,
		e.Title,
		e.Notes,
		e.OccurredAt,
	)
	return err
}

func (r *TimelineRepo) ListByPet(ctx context.Context, petID string, filter timeline.ListFilter) ([]timeline.Entry, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}

	// Base query
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, pet_id,
			type, request_id, actor,
			title, notes,
			occurred_at
		FROM pet_timeline
		WHERE pet_id = $1
	`)

	args := []any{petID}
	argN := 2

	// types filter
	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	// from/to
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	// q: búsqueda simple en title + notes
	if strings.TrimSpace(filter.Query) != "" {
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR notes ILIKE $%d)", argN, argN))
		args = append(args, "%"+strings.TrimSpace(filter.Query)+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]timeline.Entry, 0)
	for rows.Next() {
		var e timeline.Entry
		var typ string

		if err := rows.Scan(
			&e.ID,
			&e.PetID,
			&typ,
			&e.RequestID,
			&e.Actor,
			&e.Title,
			&e.Notes,
			&e.OccurredAt,
		); err != nil {
			return nil, err
		}

		e.Type = timeline.EntryType(typ)
		out = append(out, e)
	}

	return out, rows.Err()
}
