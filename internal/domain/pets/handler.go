package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/respond"
)

// RegisterRoutes monta /pets y /me/pets. exposeErrors muestra el detalle de los 500 (solo dev).
func RegisterRoutes(r chi.Router, svc *Service, exposeErrors bool) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, exposeErrors))
		pr.Get("/", listPetsHandler(svc, exposeErrors))

		pr.Get("/{petID}", getPetHandler(svc, exposeErrors))
		pr.Patch("/{petID}", updatePetHandler(svc, exposeErrors))
		pr.Delete("/{petID}", deletePetHandler(svc, exposeErrors))
		pr.Patch("/{petID}/adoption-status", setAdoptionStatusHandler(svc, exposeErrors))
	})

	r.Get("/me/pets", listMyPetsHandler(svc, exposeErrors))
}

type createPetRequest struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Image            string `json:"image"`
	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
	Age              string `json:"age"`
	Location         string `json:"location"`
}

type updatePetRequest struct {
	Name             *string `json:"name"`
	Category         *string `json:"category"`
	Image            *string `json:"image"`
	ShortDescription *string `json:"shortDescription"`
	LongDescription  *string `json:"longDescription"`
	Age              *string `json:"age"`
	Location         *string `json:"location"`
}

type adoptionStatusRequest struct {
	IsAdopted *bool `json:"isAdopted"`
}

type petResponse struct {
	ID               string    `json:"id"`
	OwnerUserID      string    `json:"ownerUserId"`
	OwnerEmail       string    `json:"ownerEmail"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Image            string    `json:"image"`
	ShortDescription string    `json:"shortDescription"`
	LongDescription  string    `json:"longDescription"`
	Age              string    `json:"age"`
	Location         string    `json:"location"`
	IsAdopted        bool      `json:"isAdopted"`
	IsAvailable      bool      `json:"isAvailable"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// @Summary Publicar mascota
// @Description Crea una publicación de adopción. Queda disponible y no adoptada. Autenticación: `X-Debug-User-ID` / `X-Debug-User-Email` (dev) o `Authorization: Bearer <token>`.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} respond.Envelope{data=petResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Router /pets [post]
func createPetHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), Owner{UserID: claims.UserID, Email: claims.Email}, CreateInput{
			Name:             req.Name,
			Category:         req.Category,
			Image:            req.Image,
			ShortDescription: req.ShortDescription,
			LongDescription:  req.LongDescription,
			Age:              req.Age,
			Location:         req.Location,
		})
		if err != nil {
			writeError(w, err, expose)
			return
		}

		respond.OK(w, http.StatusCreated, toPetResponse(p))
	}
}

// @Summary Listar mascotas
// @Description Catálogo público. Filtros opcionales por categoría, nombre y disponibilidad.
// @Tags pets
// @Produce json
// @Param category query string false "Categoría (dog, cat, ...)"
// @Param q query string false "Búsqueda por nombre"
// @Param available query bool false "Solo disponibles"
// @Param limit query int false "Máximo (1-200). Por defecto 50"
// @Success 200 {object} respond.Envelope{data=[]petResponse}
// @Failure 400 {object} respond.Envelope
// @Router /pets [get]
func listPetsHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Category: Category(q.Get("category")),
			Query:    q.Get("q"),
		}
		if v := q.Get("available"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				respond.Fail(w, http.StatusBadRequest, "available must be true or false")
				return
			}
			filter.AvailableOnly = b
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				respond.Fail(w, http.StatusBadRequest, "limit must be a number")
				return
			}
			filter.Limit = n
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toPetResponses(items))
	}
}

// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.Envelope{data=petResponse}
// @Failure 404 {object} respond.Envelope
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toPetResponse(p))
	}
}

// @Summary Actualizar mascota
// @Description PATCH parcial del perfil. Solo el dueño. No cambia isAdopted/isAvailable ni las solicitudes ya creadas.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} respond.Envelope{data=petResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), claims.UserID, UpdateProfileInput{
			Name:             req.Name,
			Category:         req.Category,
			Image:            req.Image,
			ShortDescription: req.ShortDescription,
			LongDescription:  req.LongDescription,
			Age:              req.Age,
			Location:         req.Location,
		})
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toPetResponse(updated))
	}
}

// @Summary Marcar adopción manual
// @Description El dueño marca la mascota como adoptada (o la vuelve a publicar). Escribe isAdopted e isAvailable juntos.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Param payload body adoptionStatusRequest true "isAdopted"
// @Success 200 {object} respond.Envelope{data=petResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /pets/{petID}/adoption-status [patch]
func setAdoptionStatusHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var req adoptionStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsAdopted == nil {
			respond.Fail(w, http.StatusBadRequest, "isAdopted is required")
			return
		}

		p, err := svc.SetAdoptionStatus(r.Context(), chi.URLParam(r, "petID"), claims.UserID, *req.IsAdopted)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toPetResponse(p))
	}
}

// @Summary Borrar mascota
// @Description Solo el dueño. Las solicitudes de adopción existentes no se tocan.
// @Tags pets
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, nil)
	}
}

// @Summary Mis mascotas publicadas
// @Tags pets
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} respond.Envelope{data=[]petResponse}
// @Failure 401 {object} respond.Envelope
// @Router /me/pets [get]
func listMyPetsHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toPetResponses(items))
	}
}

func writeError(w http.ResponseWriter, err error, expose bool) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Fail(w, http.StatusNotFound, "pet not found")
	case errors.Is(err, ErrForbidden):
		respond.Fail(w, http.StatusForbidden, "forbidden")
	default:
		respond.Internal(w, err, expose)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:               p.ID,
		OwnerUserID:      p.OwnerUserID,
		OwnerEmail:       p.OwnerEmail,
		Name:             p.Name,
		Category:         string(p.Category),
		Image:            p.Image,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		Age:              p.Age,
		Location:         p.Location,
		IsAdopted:        p.IsAdopted,
		IsAvailable:      p.IsAvailable,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}
