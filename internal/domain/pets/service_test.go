package pets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(_ context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(_ context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(_ context.Context, ownerUserID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.AvailableOnly && !p.IsAvailable {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) SetAdopted(_ context.Context, id string, adopted bool, at time.Time) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	p.IsAdopted = adopted
	p.IsAvailable = !adopted
	p.UpdatedAt = at
	r.byID[id] = p
	return p, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, repo
}

func TestCreate_DefaultsAndNormalization(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), Owner{UserID: "u1", Email: " Owner@Example.com "}, CreateInput{
		Name:     "  Milo ",
		Category: " Dog ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Milo", p.Name)
	assert.Equal(t, CategoryDog, p.Category)
	assert.Equal(t, "owner@example.com", p.OwnerEmail)
	assert.False(t, p.IsAdopted)
	assert.True(t, p.IsAvailable)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, Owner{}, CreateInput{Name: "Milo", Category: "dog"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: " ", Category: "dog"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: "Milo"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfile_OwnerOnlyAndPartial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: "Milo", Category: "dog", Location: "Lima"})
	require.NoError(t, err)

	name := "Milo II"
	_, err = svc.UpdateProfile(ctx, p.ID, "intruder", UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.UpdateProfile(ctx, p.ID, "u1", UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Milo II", got.Name)
	assert.Equal(t, "Lima", got.Location)

	empty := " "
	_, err = svc.UpdateProfile(ctx, p.ID, "u1", UpdateProfileInput{Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateProfile(ctx, "missing", "u1", UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAdopted_WritesBothFlags(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: "Milo", Category: "dog"})
	require.NoError(t, err)

	require.NoError(t, svc.SetAdopted(ctx, p.ID, true))
	adopted, available, err := svc.AdoptionState(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, adopted)
	assert.False(t, available)

	require.NoError(t, svc.SetAdopted(ctx, p.ID, false))
	adopted, available, err = svc.AdoptionState(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, adopted)
	assert.True(t, available)

	assert.ErrorIs(t, svc.SetAdopted(ctx, "missing", true), ErrNotFound)
}

func TestSetAdoptionStatus_And_Delete_RequireOwner(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: "Milo", Category: "dog"})
	require.NoError(t, err)

	_, err = svc.SetAdoptionStatus(ctx, p.ID, "u2", true)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.SetAdoptionStatus(ctx, p.ID, "u1", true)
	require.NoError(t, err)
	assert.True(t, got.IsAdopted)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID, "u2"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, p.ID, "u1"))
	assert.Empty(t, repo.byID)
}

func TestList_DefaultLimitAndCategory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: "Milo", Category: "dog"})
	_, _ = svc.Create(ctx, Owner{UserID: "u1"}, CreateInput{Name: "Luna", Category: "cat"})

	items, err := svc.List(ctx, ListFilter{Category: "CAT"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Luna", items[0].Name)
}
