package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption/internal/domain/timeline"
)

type timelineRepo struct {
	mu    sync.RWMutex
	byPet map[string][]timeline.Entry
}

func NewTimelineRepo() timeline.Repository {
	return &timelineRepo{
		byPet: make(map[string][]timeline.Entry),
	}
}

func (r *timelineRepo) Append(ctx context.Context, e timeline.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" || e.PetID == "" {
		return errors.New("timeline entry id and pet id required")
	}
	r.byPet[e.PetID] = append(r.byPet[e.PetID], e)
	return nil
}

func (r *timelineRepo) ListByPet(ctx context.Context, petID string, filter timeline.ListFilter) ([]timeline.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]timeline.Entry, 0)

	entries := r.byPet[petID]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		// Type filter
		if len(filter.Types) > 0 {
			ok := false
			for _, t := range filter.Types {
				if e.Type == t {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		// Date filters (occurred_at)
		if filter.From != nil {
			if e.OccurredAt.Before((*filter.From).Add(-1 * time.Nanosecond)) {
				continue
			}
		}
		if filter.To != nil {
			if e.OccurredAt.After(*filter.To) {
				continue
			}
		}

		// Query filter
		if q := strings.TrimSpace(filter.Query); q != "" {
			hay := strings.ToLower(e.Title + " " + e.Notes)
			if !strings.Contains(hay, strings.ToLower(q)) {
				continue
			}
		}

		out = append(out, e)
	}

	// Orden por occurred_at desc (más reciente primero); a igual instante, el último insertado primero
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
