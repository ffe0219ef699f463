package adoptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"pet-adoption/internal/domain/timeline"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/notify"
)

// PetRegistry es lo que el coordinator necesita del registro de mascotas.
type PetRegistry interface {
	SetAdopted(ctx context.Context, petID string, adopted bool) error
	AdoptionState(ctx context.Context, petID string) (adopted, available bool, err error)
}

type TimelineRecorder interface {
	Record(ctx context.Context, in timeline.RecordInput) (timeline.Entry, error)
}

// Recorder lo implementa metrics.AdoptionMetrics.
type Recorder interface {
	RequestCreated()
	Transition(status string)
	SideEffect(step, outcome string)
	Reconciled(fixed, orphans int)
}

type Deps struct {
	Pets     PetRegistry
	Notifier notify.Notifier
	Timeline TimelineRecorder // opcional
	Metrics  Recorder         // opcional
	Log      logger.Logger    // opcional

	// SideEffectTimeout acota cada paso best-effort. <= 0 usa el default.
	SideEffectTimeout time.Duration
}

const defaultSideEffectTimeout = 5 * time.Second

// Coordinator secuencia: escritura en el ledger (la única que puede fallar la operación),
// luego notificación, sync de la mascota y timeline como pasos best-effort independientes.
// No hay transacción entre ledger y mascotas; Reconcile repara la divergencia.
type Coordinator struct {
	ledger   *Ledger
	pets     PetRegistry
	notifier notify.Notifier
	timeline TimelineRecorder
	metrics  Recorder
	log      logger.Logger
	timeout  time.Duration
}

func NewCoordinator(ledger *Ledger, deps Deps) *Coordinator {
	c := &Coordinator{
		ledger:   ledger,
		pets:     deps.Pets,
		notifier: deps.Notifier,
		timeline: deps.Timeline,
		metrics:  deps.Metrics,
		log:      deps.Log,
		timeout:  deps.SideEffectTimeout,
	}
	if c.metrics == nil {
		c.metrics = nopRecorder{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.timeout <= 0 {
		c.timeout = defaultSideEffectTimeout
	}
	c.log = c.log.With(map[string]any{"component": "adoption-coordinator"})
	return c
}

func (c *Coordinator) Ledger() *Ledger { return c.ledger }

// Create persiste la solicitud y avisa al dueño.
func (c *Coordinator) Create(ctx context.Context, in CreateInput) (TransitionResult, error) {
	req, err := c.ledger.Create(ctx, in)
	if err != nil {
		return TransitionResult{}, err
	}
	c.metrics.RequestCreated()

	res := TransitionResult{Request: req}
	res.add(c.notifyStep(ctx, StepNotifyOwner, notify.KindRequestReceived, req.OwnerEmail, req))
	res.add(c.timelineStep(ctx, req, timeline.EntryAdoptionRequested, req.RequesterEmail,
		fmt.Sprintf("%s requested to adopt %s", req.RequesterName, req.PetName)))

	c.logResult(ctx, "adoption request created", res)
	return res, nil
}

// Accept: (1) ledger, (2) aviso al solicitante, (3) si vino petID, marcar la mascota como adoptada.
// Aceptar dos veces está permitido y repite los efectos secundarios.
func (c *Coordinator) Accept(ctx context.Context, id, petID string) (TransitionResult, error) {
	req, err := c.ledger.SetStatus(ctx, id, StatusAccepted)
	if err != nil {
		return TransitionResult{}, err
	}
	c.metrics.Transition(string(StatusAccepted))

	res := TransitionResult{Request: req}
	res.add(c.notifyStep(ctx, StepNotifyRequester, notify.KindRequestAccepted, req.RequesterEmail, req))

	if petID == "" {
		res.add(c.skip(StepPetSync))
	} else {
		res.add(c.run(ctx, StepPetSync, func(ctx context.Context) error {
			if c.pets == nil {
				return errors.New("pet registry not configured")
			}
			return c.pets.SetAdopted(ctx, petID, true)
		}))
	}

	res.add(c.timelineStep(ctx, req, timeline.EntryAdoptionAccepted, req.OwnerEmail,
		fmt.Sprintf("Adoption of %s by %s accepted", req.PetName, req.RequesterName)))

	c.logResult(ctx, "adoption request accepted", res)
	return res, nil
}

// Reject nunca toca la mascota.
func (c *Coordinator) Reject(ctx context.Context, id string) (TransitionResult, error) {
	req, err := c.ledger.SetStatus(ctx, id, StatusRejected)
	if err != nil {
		return TransitionResult{}, err
	}
	c.metrics.Transition(string(StatusRejected))

	res := TransitionResult{Request: req}
	res.add(c.notifyStep(ctx, StepNotifyRequester, notify.KindRequestRejected, req.RequesterEmail, req))
	res.add(c.timelineStep(ctx, req, timeline.EntryAdoptionRejected, req.OwnerEmail,
		fmt.Sprintf("Adoption of %s by %s rejected", req.PetName, req.RequesterName)))

	c.logResult(ctx, "adoption request rejected", res)
	return res, nil
}

// UpdateStatus es el PATCH genérico: accepted se comporta como Accept sin mascota.
func (c *Coordinator) UpdateStatus(ctx context.Context, id string, status Status) (TransitionResult, error) {
	switch status {
	case StatusAccepted:
		return c.Accept(ctx, id, "")
	case StatusRejected:
		return c.Reject(ctx, id)
	default:
		return TransitionResult{}, validationError("status must be accepted or rejected")
	}
}

// Verify registra una prueba de salud. No cambia el estado ni la mascota.
func (c *Coordinator) Verify(ctx context.Context, id string, kind VerificationKind, proof string) (TransitionResult, error) {
	req, err := c.ledger.SetVerification(ctx, id, kind, proof)
	if err != nil {
		return TransitionResult{}, err
	}

	entry := timeline.EntryVaccinationVerified
	if kind == VerificationNeutering {
		entry = timeline.EntryNeuteringVerified
	}

	res := TransitionResult{Request: req}
	res.add(c.timelineStep(ctx, req, entry, "admin", fmt.Sprintf("%s verified for %s", kind, req.PetName)))

	c.logResult(ctx, "adoption health verification recorded", res)
	return res, nil
}

func (c *Coordinator) notifyStep(ctx context.Context, step Step, kind notify.Kind, to string, req Request) SideEffectOutcome {
	if c.notifier == nil {
		return c.skip(step)
	}
	return c.run(ctx, step, func(ctx context.Context) error {
		res := c.notifier.Notify(ctx, kind, to, templateData(req))
		if !res.Success {
			return errors.New(res.Error)
		}
		return nil
	})
}

func (c *Coordinator) timelineStep(ctx context.Context, req Request, typ timeline.EntryType, actor, title string) SideEffectOutcome {
	if c.timeline == nil || req.PetID == "" {
		return c.skip(StepTimeline)
	}
	return c.run(ctx, StepTimeline, func(ctx context.Context) error {
		_, err := c.timeline.Record(ctx, timeline.RecordInput{
			PetID:     req.PetID,
			Type:      typ,
			RequestID: req.ID,
			Actor:     actor,
			Title:     title,
		})
		return err
	})
}

// run ejecuta un paso best-effort con timeout propio, desacoplado de la cancelación del request HTTP
// (el ledger ya se escribió). Si el colaborador ignora el ctx, igual se corta al vencer el timeout.
// Nunca devuelve error.
func (c *Coordinator) run(ctx context.Context, step Step, fn func(context.Context) error) SideEffectOutcome {
	stepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic: %v", p)
			}
		}()
		done <- fn(stepCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-stepCtx.Done():
		err = fmt.Errorf("%s timed out after %s", step, c.timeout)
	}

	out := SideEffectOutcome{Step: step, OK: err == nil}
	if err != nil {
		out.Error = err.Error()
	}
	c.metrics.SideEffect(string(step), out.label())
	return out
}

func (c *Coordinator) skip(step Step) SideEffectOutcome {
	c.metrics.SideEffect(string(step), "skipped")
	return SideEffectOutcome{Step: step, Skipped: true}
}

func (c *Coordinator) logResult(ctx context.Context, msg string, res TransitionResult) {
	base := map[string]any{
		"request_id":  chimw.GetReqID(ctx),
		"adoption_id": res.Request.ID,
		"pet_id":      res.Request.PetID,
		"status":      string(res.Request.Status),
	}
	for _, o := range res.Failed() {
		c.log.Warn("best-effort step failed", map[string]any{
			"request_id":  base["request_id"],
			"adoption_id": base["adoption_id"],
			"step":        string(o.Step),
			"error":       o.Error,
		})
	}
	c.log.Info(msg, base)
}

func (r *TransitionResult) add(o SideEffectOutcome) {
	r.SideEffects = append(r.SideEffects, o)
}

func templateData(r Request) map[string]any {
	return map[string]any{
		"petName":        r.PetName,
		"requesterName":  r.RequesterName,
		"requesterEmail": r.RequesterEmail,
		"ownerEmail":     r.OwnerEmail,
		"status":         string(r.Status),
		"requestId":      r.ID,
	}
}

type nopRecorder struct{}

func (nopRecorder) RequestCreated()           {}
func (nopRecorder) Transition(string)         {}
func (nopRecorder) SideEffect(string, string) {}
func (nopRecorder) Reconciled(int, int)       {}
