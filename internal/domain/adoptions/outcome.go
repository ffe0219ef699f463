package adoptions

// Step identifica un efecto secundario best-effort.
type Step string

const (
	StepNotifyOwner     Step = "notify_owner"
	StepNotifyRequester Step = "notify_requester"
	StepPetSync         Step = "pet_sync"
	StepTimeline        Step = "timeline"
)

// SideEffectOutcome: OK y Skipped son excluyentes; Error solo se llena si falló.
type SideEffectOutcome struct {
	Step    Step
	OK      bool
	Skipped bool
	Error   string
}

func (o SideEffectOutcome) label() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.OK:
		return "ok"
	default:
		return "failed"
	}
}

// TransitionResult separa el resultado del ledger (lo único que puede fallar la operación)
// de los efectos secundarios, que se reportan pero nunca se propagan como error.
type TransitionResult struct {
	Request     Request
	SideEffects []SideEffectOutcome
}

func (r TransitionResult) Outcome(step Step) (SideEffectOutcome, bool) {
	for _, o := range r.SideEffects {
		if o.Step == step {
			return o, true
		}
	}
	return SideEffectOutcome{}, false
}

func (r TransitionResult) Failed() []SideEffectOutcome {
	var out []SideEffectOutcome
	for _, o := range r.SideEffects {
		if !o.OK && !o.Skipped {
			out = append(out, o)
		}
	}
	return out
}
