package adoptions

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/timeline"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Request
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Request{}}
}

func (r *testRepo) Create(_ context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Status == StatusPending && x.RequesterEmail == req.RequesterEmail && x.PetID == req.PetID {
			return ErrDuplicatePending
		}
	}
	r.byID[req.ID] = req
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return x, nil
}

func (r *testRepo) list(keep func(Request) bool) []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Request, 0)
	for _, x := range r.byID {
		if keep(x) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *testRepo) ListByRequester(_ context.Context, email string) ([]Request, error) {
	return r.list(func(x Request) bool { return x.RequesterEmail == email }), nil
}

func (r *testRepo) ListPendingByOwner(_ context.Context, email string) ([]Request, error) {
	return r.list(func(x Request) bool { return x.OwnerEmail == email && x.Status == StatusPending }), nil
}

func (r *testRepo) ListHealthPending(_ context.Context) ([]Request, error) {
	return r.list(Request.HealthPending), nil
}

func (r *testRepo) ListAccepted(_ context.Context) ([]Request, error) {
	return r.list(func(x Request) bool { return x.Status == StatusAccepted }), nil
}

func (r *testRepo) SetStatus(_ context.Context, id string, status Status) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	x.Status = status
	r.byID[id] = x
	return x, nil
}

func (r *testRepo) SetVerification(_ context.Context, id string, kind VerificationKind, proof string, at time.Time) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	switch kind {
	case VerificationVaccination:
		x.VaccinationVerified, x.VaccinationProof = true, proof
	case VerificationNeutering:
		x.NeuteringVerified, x.NeuteringProof = true, proof
	}
	x.VetVerified = true
	x.VerifiedAt = &at
	r.byID[id] = x
	return x, nil
}

// -------------------------
// Pet registry fake
// -------------------------

type petState struct{ adopted, available bool }

type fakePets struct {
	mu    sync.Mutex
	byID  map[string]petState
	calls int
	err   error // si != nil, SetAdopted falla con este error
	block chan struct{}
}

func newFakePets(ids ...string) *fakePets {
	f := &fakePets{byID: map[string]petState{}}
	for _, id := range ids {
		f.byID[id] = petState{available: true}
	}
	return f
}

func (f *fakePets) SetAdopted(ctx context.Context, petID string, adopted bool) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[petID]; !ok {
		return pets.ErrNotFound
	}
	f.byID[petID] = petState{adopted: adopted, available: !adopted}
	return nil
}

func (f *fakePets) AdoptionState(_ context.Context, petID string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[petID]
	if !ok {
		return false, false, pets.ErrNotFound
	}
	return s.adopted, s.available, nil
}

func (f *fakePets) state(petID string) petState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[petID]
}

func (f *fakePets) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// -------------------------
// Timeline fake
// -------------------------

type fakeTimeline struct {
	mu      sync.Mutex
	entries []timeline.RecordInput
}

func (f *fakeTimeline) Record(_ context.Context, in timeline.RecordInput) (timeline.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, in)
	return timeline.Entry{PetID: in.PetID, Type: in.Type}, nil
}

func (f *fakeTimeline) types() []timeline.EntryType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]timeline.EntryType, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Type)
	}
	return out
}

// -------------------------
// Metrics fake
// -------------------------

type fakeRecorder struct {
	mu          sync.Mutex
	sideEffects map[string]int
	transitions map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{sideEffects: map[string]int{}, transitions: map[string]int{}}
}

func (f *fakeRecorder) RequestCreated() {}
func (f *fakeRecorder) Transition(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions[status]++
}
func (f *fakeRecorder) SideEffect(step, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sideEffects[step+"/"+outcome]++
}
func (f *fakeRecorder) Reconciled(int, int) {}
