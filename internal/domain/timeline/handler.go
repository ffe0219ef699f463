package timeline

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption/internal/platform/respond"
)

func RegisterRoutes(r chi.Router, svc *Service, exposeErrors bool) {
	r.Get("/pets/{petID}/timeline", listTimelineHandler(svc, exposeErrors))
}

// entryResponse representa una entrada del historial de adopción de la mascota.
type entryResponse struct {
	ID         string    `json:"id"`
	PetID      string    `json:"petId"`
	Type       EntryType `json:"type"`
	RequestID  string    `json:"requestId,omitempty"`
	Actor      string    `json:"actor"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// listTimelineHandler godoc
// @Summary Historial de adopción de una mascota
// @Description Lista las entradas del historial (solicitudes, decisiones, verificaciones, reconciliaciones), más reciente primero. La mascota puede no existir ya: el historial se conserva.
// @Tags timeline
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de entradas (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos (ej: ADOPTION_ACCEPTED,VACCINATION_VERIFIED)"
// @Param from query string false "Fecha mínima (RFC3339)"
// @Param to query string false "Fecha máxima (RFC3339)"
// @Param q query string false "Texto libre en título/notas"
// @Success 200 {object} respond.Envelope{data=[]entryResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 500 {object} respond.Envelope
// @Router /pets/{petID}/timeline [get]
func listTimelineHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, err.Error())
			return
		}

		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"), filter)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				respond.Fail(w, http.StatusBadRequest, err.Error())
				return
			}
			respond.Internal(w, err, expose)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		respond.OK(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=ADOPTION_ACCEPTED,VACCINATION_VERIFIED
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EntryType, 0, len(parts))
		for _, p := range parts {
			t := EntryType(strings.ToUpper(strings.TrimSpace(p)))
			if t == "" {
				continue
			}
			if !t.Valid() {
				return ListFilter{}, errors.New("unknown timeline type: " + string(t))
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter, nil
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:         e.ID,
		PetID:      e.PetID,
		Type:       e.Type,
		RequestID:  e.RequestID,
		Actor:      e.Actor,
		Title:      e.Title,
		Notes:      e.Notes,
		OccurredAt: e.OccurredAt,
	}
}
