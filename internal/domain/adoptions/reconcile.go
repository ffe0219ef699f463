package adoptions

import (
	"context"
	"errors"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/timeline"
)

type ReconcileReport struct {
	Checked int `json:"checked"` // mascotas con al menos una solicitud aceptada
	Fixed   int `json:"fixed"`
	Orphans int `json:"orphans"` // la mascota ya no existe
	Failed  int `json:"failed"`
}

// Reconcile re-deriva la disponibilidad de cada mascota desde su última solicitud aceptada:
// si hay una aceptada, la mascota debe quedar isAdopted=true / isAvailable=false.
// Es idempotente; una segunda pasada sin cambios no escribe nada.
func (c *Coordinator) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var rep ReconcileReport
	if c.pets == nil {
		return rep, errors.New("pet registry not configured")
	}

	accepted, err := c.ledger.FindAccepted(ctx)
	if err != nil {
		return rep, err
	}

	latest := latestAcceptedByPet(accepted)
	for petID, req := range latest {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Checked++

		adopted, available, err := c.pets.AdoptionState(ctx, petID)
		switch {
		case errors.Is(err, pets.ErrNotFound):
			rep.Orphans++
			continue
		case err != nil:
			rep.Failed++
			c.log.Warn("reconcile: read pet failed", map[string]any{"pet_id": petID, "error": err})
			continue
		case adopted && !available:
			continue
		}

		if err := c.pets.SetAdopted(ctx, petID, true); err != nil {
			rep.Failed++
			c.log.Warn("reconcile: update pet failed", map[string]any{"pet_id": petID, "error": err})
			continue
		}
		rep.Fixed++

		c.timelineStep(ctx, req, timeline.EntryAvailabilityReconciled, "reconciler",
			"Availability re-derived from accepted adoption request")
	}

	c.metrics.Reconciled(rep.Fixed, rep.Orphans)
	c.log.Info("reconcile finished", map[string]any{
		"checked": rep.Checked,
		"fixed":   rep.Fixed,
		"orphans": rep.Orphans,
		"failed":  rep.Failed,
	})
	return rep, nil
}

// RunReconciler corre Reconcile cada interval hasta que ctx se cancele.
func (c *Coordinator) RunReconciler(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := c.Reconcile(ctx); err != nil && ctx.Err() == nil {
				c.log.Error("reconcile failed", map[string]any{"error": err})
			}
		}
	}
}

func latestAcceptedByPet(items []Request) map[string]Request {
	out := make(map[string]Request)
	for _, r := range items {
		if r.Status != StatusAccepted || r.PetID == "" {
			continue
		}
		cur, ok := out[r.PetID]
		if !ok || r.CreatedAt.After(cur.CreatedAt) {
			out[r.PetID] = r
		}
	}
	return out
}
