package adoptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pet-adoption/internal/domain/timeline"
	"pet-adoption/internal/ports/notify"
	"pet-adoption/internal/ports/notify/mocks"
)

type harness struct {
	coord    *Coordinator
	repo     *testRepo
	pets     *fakePets
	notifier *mocks.MockNotifier
	timeline *fakeTimeline
	metrics  *fakeRecorder
}

func newHarness(t *testing.T, petIDs ...string) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	l, repo := newTestLedger()
	h := &harness{
		repo:     repo,
		pets:     newFakePets(petIDs...),
		notifier: mocks.NewMockNotifier(ctrl),
		timeline: &fakeTimeline{},
		metrics:  newFakeRecorder(),
	}
	h.coord = NewCoordinator(l, Deps{
		Pets:              h.pets,
		Notifier:          h.notifier,
		Timeline:          h.timeline,
		Metrics:           h.metrics,
		SideEffectTimeout: time.Second,
	})
	return h
}

// createPending crea una solicitud esperando el aviso al dueño.
func (h *harness) createPending(t *testing.T, in CreateInput) Request {
	t.Helper()
	h.notifier.EXPECT().
		Notify(gomock.Any(), notify.KindRequestReceived, in.OwnerEmail, gomock.Any()).
		Return(notify.Ok())
	res, err := h.coord.Create(context.Background(), in)
	require.NoError(t, err)
	return res.Request
}

func TestCreate_NotifiesOwnerAndRecordsTimeline(t *testing.T) {
	h := newHarness(t, "pet-1")

	h.notifier.EXPECT().
		Notify(gomock.Any(), notify.KindRequestReceived, "bruno@example.com", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ notify.Kind, _ string, data map[string]any) notify.Result {
			assert.Equal(t, "Milo", data["petName"])
			assert.Equal(t, "Ana", data["requesterName"])
			return notify.Ok()
		})

	res, err := h.coord.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Request.Status)
	assert.Empty(t, res.Failed())
	assert.Equal(t, []timeline.EntryType{timeline.EntryAdoptionRequested}, h.timeline.types())
}

func TestCreate_ErrorsDoNotTriggerSideEffects(t *testing.T) {
	h := newHarness(t)
	// sin EXPECT: cualquier Notify haría fallar el test

	in := validInput()
	in.OwnerEmail = in.RequesterEmail
	_, err := h.coord.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrConflict)

	in = validInput()
	in.Phone = ""
	_, err = h.coord.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, h.timeline.types())
}

func TestCreate_NotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(notify.Failed(errors.New("provider down")))

	res, err := h.coord.Create(context.Background(), validInput())
	require.NoError(t, err)

	o, ok := res.Outcome(StepNotifyOwner)
	require.True(t, ok)
	assert.False(t, o.OK)
	assert.Equal(t, "provider down", o.Error)
	assert.Equal(t, 1, h.metrics.sideEffects["notify_owner/failed"])
}

func TestAccept_WithoutPetID_NoRegistryCall(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())

	h.notifier.EXPECT().Notify(gomock.Any(), notify.KindRequestAccepted, "ana@example.com", gomock.Any()).
		Return(notify.Ok())

	res, err := h.coord.Accept(context.Background(), r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Request.Status)
	assert.Equal(t, 0, h.pets.callCount())

	o, _ := res.Outcome(StepPetSync)
	assert.True(t, o.Skipped)
}

func TestAccept_WithPetID_MarksPetAdopted(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())

	h.notifier.EXPECT().Notify(gomock.Any(), notify.KindRequestAccepted, gomock.Any(), gomock.Any()).
		Return(notify.Ok())

	res, err := h.coord.Accept(context.Background(), r.ID, "pet-1")
	require.NoError(t, err)
	assert.Empty(t, res.Failed())

	st := h.pets.state("pet-1")
	assert.True(t, st.adopted)
	assert.False(t, st.available)
	assert.Equal(t, 1, h.metrics.transitions["accepted"])
}

func TestAccept_MissingPetIsSwallowed(t *testing.T) {
	h := newHarness(t)
	r := h.createPending(t, validInput())

	h.notifier.EXPECT().Notify(gomock.Any(), notify.KindRequestAccepted, gomock.Any(), gomock.Any()).
		Return(notify.Ok())

	res, err := h.coord.Accept(context.Background(), r.ID, "ghost-pet")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Request.Status)

	o, _ := res.Outcome(StepPetSync)
	assert.False(t, o.OK)
	assert.NotEmpty(t, o.Error)

	stored, err := h.repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, stored.Status)
}

func TestAccept_NotificationAndPetFailuresBothSwallowed(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())
	h.pets.err = errors.New("db timeout")

	h.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, notify.Kind, string, map[string]any) notify.Result {
			panic("template exploded")
		})

	res, err := h.coord.Accept(context.Background(), r.ID, "pet-1")
	require.NoError(t, err)
	assert.Len(t, res.Failed(), 2)
}

func TestAccept_HangingCollaboratorTimesOut(t *testing.T) {
	h := newHarness(t, "pet-1")
	h.coord.timeout = 50 * time.Millisecond
	r := h.createPending(t, validInput())

	h.pets.block = make(chan struct{})
	defer close(h.pets.block)

	h.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(notify.Ok())

	start := time.Now()
	res, err := h.coord.Accept(context.Background(), r.ID, "pet-1")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	o, _ := res.Outcome(StepPetSync)
	assert.False(t, o.OK)
	assert.Contains(t, o.Error, "timed out")
}

func TestAccept_SideEffectsSurviveCanceledRequest(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())

	h.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(notify.Ok())

	// el ledger del test no mira ctx; la cancelación no debe cortar el sync de la mascota
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := h.coord.Accept(ctx, r.ID, "pet-1")
	require.NoError(t, err)
	assert.Empty(t, res.Failed())
	assert.True(t, h.pets.state("pet-1").adopted)
}

func TestReject_NeverTouchesPet(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())

	h.notifier.EXPECT().Notify(gomock.Any(), notify.KindRequestRejected, "ana@example.com", gomock.Any()).
		Return(notify.Ok())

	res, err := h.coord.Reject(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Request.Status)
	assert.Equal(t, 0, h.pets.callCount())
	assert.True(t, h.pets.state("pet-1").available)

	_, ok := res.Outcome(StepPetSync)
	assert.False(t, ok)
}

func TestTransitions_UnknownIDIsNotFound(t *testing.T) {
	h := newHarness(t, "pet-1")
	ctx := context.Background()

	_, err := h.coord.Accept(ctx, "nope", "pet-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.coord.Reject(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.coord.UpdateStatus(ctx, "nope", StatusAccepted)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.coord.UpdateStatus(ctx, "nope", StatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.coord.Verify(ctx, "nope", VerificationVaccination, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.coord.Verify(ctx, "nope", VerificationNeutering, "")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, h.pets.callCount())
}

func TestUpdateStatus(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())

	_, err := h.coord.UpdateStatus(context.Background(), r.ID, StatusPending)
	assert.ErrorIs(t, err, ErrValidation)

	h.notifier.EXPECT().Notify(gomock.Any(), notify.KindRequestAccepted, gomock.Any(), gomock.Any()).Return(notify.Ok())
	res, err := h.coord.UpdateStatus(context.Background(), r.ID, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Request.Status)
	assert.Equal(t, 0, h.pets.callCount(), "generic status update does not sync the pet")
}

func TestVerify_DoesNotChangeStatusOrPet(t *testing.T) {
	h := newHarness(t, "pet-1")
	r := h.createPending(t, validInput())

	h.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(notify.Ok())
	_, err := h.coord.Accept(context.Background(), r.ID, "pet-1")
	require.NoError(t, err)
	calls := h.pets.callCount()

	res, err := h.coord.Verify(context.Background(), r.ID, VerificationVaccination, "https://proof/1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Request.Status)
	assert.True(t, res.Request.VaccinationVerified)
	assert.False(t, res.Request.NeuteringVerified)
	assert.True(t, res.Request.VetVerified)
	assert.Equal(t, calls, h.pets.callCount())

	assert.Contains(t, h.timeline.types(), timeline.EntryVaccinationVerified)
}

func TestNewCoordinator_NilCollaboratorsAreSkipped(t *testing.T) {
	l, _ := newTestLedger()
	c := NewCoordinator(l, Deps{})

	res, err := c.Create(context.Background(), validInput())
	require.NoError(t, err)
	for _, o := range res.SideEffects {
		assert.True(t, o.Skipped, o.Step)
	}

	res, err = c.Accept(context.Background(), res.Request.ID, "pet-1")
	require.NoError(t, err)
	o, _ := res.Outcome(StepPetSync)
	assert.False(t, o.OK)
}
