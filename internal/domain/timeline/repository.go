package timeline

import (
	"context"
	"time"
)

type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListByPet(ctx context.Context, petID string, filter ListFilter) ([]Entry, error)
}

type ListFilter struct {
	Types []EntryType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}
