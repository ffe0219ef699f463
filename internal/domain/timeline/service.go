package timeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RecordInput struct {
	PetID     string
	Type      EntryType
	RequestID string
	Actor     string
	Title     string
	Notes     string
}

func (s *Service) Record(ctx context.Context, in RecordInput) (Entry, error) {
	if strings.TrimSpace(in.PetID) == "" || !in.Type.Valid() {
		return Entry{}, ErrInvalidInput
	}

	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		actor = "system"
	}

	e := Entry{
		ID:         uuid.NewString(),
		PetID:      strings.TrimSpace(in.PetID),
		Type:       in.Type,
		RequestID:  strings.TrimSpace(in.RequestID),
		Actor:      actor,
		Title:      strings.TrimSpace(in.Title),
		Notes:      strings.TrimSpace(in.Notes),
		OccurredAt: s.now(),
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, filter ListFilter) ([]Entry, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.ListByPet(ctx, petID, filter)
}
