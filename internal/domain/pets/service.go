package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrForbidden    = errors.New("forbidden")
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

type Owner struct {
	UserID string
	Email  string
}

type CreateInput struct {
	Name             string
	Category         string
	Image            string
	ShortDescription string
	LongDescription  string
	Age              string
	Location         string
}

func (s *Service) Create(ctx context.Context, owner Owner, in CreateInput) (Pet, error) {
	if strings.TrimSpace(owner.UserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:               uuid.NewString(),
		OwnerUserID:      strings.TrimSpace(owner.UserID),
		OwnerEmail:       strings.ToLower(strings.TrimSpace(owner.Email)),
		Name:             strings.TrimSpace(in.Name),
		Category:         normalizeCategory(in.Category),
		Image:            strings.TrimSpace(in.Image),
		ShortDescription: strings.TrimSpace(in.ShortDescription),
		LongDescription:  strings.TrimSpace(in.LongDescription),
		Age:              strings.TrimSpace(in.Age),
		Location:         strings.TrimSpace(in.Location),
		IsAdopted:        false,
		IsAvailable:      true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, strings.TrimSpace(ownerUserID))
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Pet, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Category != "" {
		filter.Category = normalizeCategory(string(filter.Category))
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

// UpdateProfileInput usa punteros para PATCH real: nil = no tocar.
type UpdateProfileInput struct {
	Name             *string
	Category         *string
	Image            *string
	ShortDescription *string
	LongDescription  *string
	Age              *string
	Location         *string
}

// UpdateProfile no toca los flags de adopción: eso va por SetAdoptionStatus.
// Las solicitudes de adopción existentes guardan su propio snapshot y no se actualizan.
func (s *Service) UpdateProfile(ctx context.Context, petID, actorUserID string, in UpdateProfileInput) (Pet, error) {
	p, err := s.ownedBy(ctx, petID, actorUserID)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = v
	}
	if in.Category != nil {
		v := normalizeCategory(*in.Category)
		if v == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Category = v
	}
	if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
	}
	if in.ShortDescription != nil {
		p.ShortDescription = strings.TrimSpace(*in.ShortDescription)
	}
	if in.LongDescription != nil {
		p.LongDescription = strings.TrimSpace(*in.LongDescription)
	}
	if in.Age != nil {
		p.Age = strings.TrimSpace(*in.Age)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// SetAdoptionStatus es la acción manual del dueño (p.ej. la adoptaron por fuera de la plataforma).
func (s *Service) SetAdoptionStatus(ctx context.Context, petID, actorUserID string, adopted bool) (Pet, error) {
	if _, err := s.ownedBy(ctx, petID, actorUserID); err != nil {
		return Pet{}, err
	}
	return s.repo.SetAdopted(ctx, petID, adopted, s.now())
}

// Delete no toca las solicitudes de adopción que apuntan a la mascota (referencia blanda).
func (s *Service) Delete(ctx context.Context, petID, actorUserID string) error {
	if _, err := s.ownedBy(ctx, petID, actorUserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, petID)
}

func (s *Service) ownedBy(ctx context.Context, petID, actorUserID string) (Pet, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" {
		return Pet{}, ErrForbidden
	}
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != actorUserID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func normalizeCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}
