package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/timeline"
)

func TestPetRepo_ListFiltersAndSetAdopted(t *testing.T) {
	repo := NewPetRepo()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "1", Name: "Milo", Category: "dog", IsAvailable: true, CreatedAt: t0}))
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "2", Name: "Luna", Category: "cat", IsAvailable: true, CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "3", Name: "Milagros", Category: "dog", IsAvailable: true, CreatedAt: t0.Add(2 * time.Hour)}))

	dogs, err := repo.List(ctx, pets.ListFilter{Category: "dog"})
	require.NoError(t, err)
	require.Len(t, dogs, 2)
	assert.Equal(t, "3", dogs[0].ID)

	p, err := repo.SetAdopted(ctx, "3", true, t0.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, p.IsAdopted)
	assert.False(t, p.IsAvailable)

	avail, err := repo.List(ctx, pets.ListFilter{Query: "MIL", AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "1", avail[0].ID)

	_, err = repo.SetAdopted(ctx, "missing", true, t0)
	assert.ErrorIs(t, err, pets.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "1"))
	_, err = repo.GetByID(ctx, "1")
	assert.ErrorIs(t, err, pets.ErrNotFound)
}

func TestTimelineRepo_NewestFirstWithFilters(t *testing.T) {
	repo := NewTimelineRepo()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	add := func(id string, typ timeline.EntryType, at time.Time, title string) {
		require.NoError(t, repo.Append(ctx, timeline.Entry{ID: id, PetID: "p1", Type: typ, OccurredAt: at, Title: title}))
	}
	add("a", timeline.EntryAdoptionRequested, t0, "Ana requested Milo")
	add("b", timeline.EntryAdoptionAccepted, t0.Add(time.Hour), "accepted")
	add("c", timeline.EntryVaccinationVerified, t0.Add(time.Hour), "vaccination verified")

	all, err := repo.ListByPet(ctx, "p1", timeline.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	from := t0.Add(30 * time.Minute)
	got, err := repo.ListByPet(ctx, "p1", timeline.ListFilter{
		Types: []timeline.EntryType{timeline.EntryAdoptionAccepted, timeline.EntryAdoptionRequested},
		From:  &from,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got, err = repo.ListByPet(ctx, "p1", timeline.ListFilter{Query: "milo", Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)

	none, err := repo.ListByPet(ctx, "other", timeline.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPetRepo_EqualTimestampsKeepDeterministicOrder(t *testing.T) {
	repo := NewPetRepo()
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{"p2", "p4", "p1", "p3"} {
		require.NoError(t, repo.Create(ctx, pets.Pet{ID: id, Name: "Milo", Category: "dog", IsAvailable: true, CreatedAt: at}))
	}

	for i := 0; i < 20; i++ {
		items, err := repo.List(ctx, pets.ListFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "p4", items[0].ID)
		assert.Equal(t, "p3", items[1].ID)
	}
}
