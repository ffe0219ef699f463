package adoptions

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption/internal/platform/respond"
)

type RouteOptions struct {
	// CreateGuard envuelve POST /adoption-requests (rate limit). nil = sin guard.
	CreateGuard func(http.Handler) http.Handler
	// ExposeErrors muestra el detalle de los 500 (solo development).
	ExposeErrors bool
}

// RegisterRoutes monta /adoption-requests. Ninguna de estas rutas exige auth.
func RegisterRoutes(r chi.Router, c *Coordinator, opts RouteOptions) {
	expose := opts.ExposeErrors

	r.Route("/adoption-requests", func(ar chi.Router) {
		create := ar
		if opts.CreateGuard != nil {
			create = ar.With(opts.CreateGuard)
		}
		create.Post("/", createRequestHandler(c, expose))

		ar.Get("/", listByRequesterHandler(c, expose))
		ar.Get("/owner/{email}", listPendingByOwnerHandler(c, expose))
		ar.Get("/health-pending", listHealthPendingHandler(c, expose))
		ar.Patch("/{id}/status", updateStatusHandler(c, expose))

		ar.Route("/admin", func(adm chi.Router) {
			adm.Patch("/accept/{id}", acceptHandler(c, expose))
			adm.Patch("/reject/{id}", rejectHandler(c, expose))
			adm.Patch("/verify-vaccination/{id}", verifyHandler(c, VerificationVaccination, expose))
			adm.Patch("/verify-neutering/{id}", verifyHandler(c, VerificationNeutering, expose))
			adm.Post("/reconcile", reconcileHandler(c, expose))
		})
	})
}

type createRequest struct {
	UserEmail         string `json:"userEmail"`
	UserName          string `json:"userName"`
	UserAddress       string `json:"userAddress"`
	Phone             string `json:"phone"`
	OwnerEmail        string `json:"ownerEmail"`
	PetID             string `json:"petId"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Image             string `json:"image"`
	ShortDescription  string `json:"shortDescription"`
	LongDescription   string `json:"longDescription"`
	AgreementAccepted bool   `json:"agreementAccepted"`
}

type statusRequest struct {
	Status Status `json:"status" enums:"accepted,rejected"`
}

type acceptRequest struct {
	PetID string `json:"petId"`
}

type verifyRequest struct {
	VaccinationProof string `json:"vaccinationProof"`
	NeuteringProof   string `json:"neuteringProof"`
}

// requestResponse es la solicitud de adopción tal como la ve el cliente.
type requestResponse struct {
	ID                  string     `json:"id"`
	UserEmail           string     `json:"userEmail"`
	UserName            string     `json:"userName"`
	UserAddress         string     `json:"userAddress"`
	Phone               string     `json:"phone"`
	OwnerEmail          string     `json:"ownerEmail"`
	PetID               string     `json:"petId"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	Image               string     `json:"image"`
	ShortDescription    string     `json:"shortDescription"`
	LongDescription     string     `json:"longDescription"`
	Status              Status     `json:"status"`
	AgreementAccepted   bool       `json:"agreementAccepted"`
	VaccinationVerified bool       `json:"vaccinationVerified"`
	VaccinationProof    string     `json:"vaccinationProof"`
	NeuteringVerified   bool       `json:"neuteringVerified"`
	NeuteringProof      string     `json:"neuteringProof"`
	VetVerified         bool       `json:"vetVerified"`
	VerifiedAt          *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// createRequestHandler godoc
// @Summary Crear solicitud de adopción
// @Description Crea una solicitud pendiente. Falla con 400 si faltan campos, si el solicitante es el dueño o si ya tiene una pendiente para esa mascota. Avisa al dueño por email (best-effort).
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param payload body createRequest true "Solicitante, dueño y snapshot de la mascota"
// @Success 201 {object} respond.Envelope{data=requestResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 429 {object} respond.Envelope
// @Router /adoption-requests [post]
func createRequestHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		res, err := c.Create(r.Context(), CreateInput{
			RequesterEmail:    req.UserEmail,
			RequesterName:     req.UserName,
			RequesterAddress:  req.UserAddress,
			Phone:             req.Phone,
			OwnerEmail:        req.OwnerEmail,
			PetID:             req.PetID,
			PetName:           req.Name,
			Category:          req.Category,
			Image:             req.Image,
			ShortDescription:  req.ShortDescription,
			LongDescription:   req.LongDescription,
			AgreementAccepted: req.AgreementAccepted,
		})
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusCreated, toResponse(res.Request))
	}
}

// listByRequesterHandler godoc
// @Summary Solicitudes de un solicitante
// @Tags adoption-requests
// @Produce json
// @Param userEmail query string true "Email del solicitante"
// @Success 200 {object} respond.Envelope{data=[]requestResponse}
// @Failure 400 {object} respond.Envelope
// @Router /adoption-requests [get]
func listByRequesterHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := c.Ledger().FindByRequester(r.Context(), r.URL.Query().Get("userEmail"))
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toResponses(items))
	}
}

// listPendingByOwnerHandler godoc
// @Summary Solicitudes pendientes para un dueño
// @Tags adoption-requests
// @Produce json
// @Param email path string true "Email del dueño"
// @Success 200 {object} respond.Envelope{data=[]requestResponse}
// @Failure 400 {object} respond.Envelope
// @Router /adoption-requests/owner/{email} [get]
func listPendingByOwnerHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := emailParam(w, r)
		if !ok {
			return
		}
		items, err := c.Ledger().FindPendingByOwner(r.Context(), email)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toResponses(items))
	}
}

// listHealthPendingHandler godoc
// @Summary Aceptadas con verificación de salud incompleta
// @Description Solicitudes aceptadas donde falta la vacunación o la castración. Cola de seguimiento administrativo.
// @Tags adoption-requests
// @Produce json
// @Success 200 {object} respond.Envelope{data=[]requestResponse}
// @Router /adoption-requests/health-pending [get]
func listHealthPendingHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := c.Ledger().FindHealthPending(r.Context())
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toResponses(items))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado
// @Description accepted se comporta como accept sin mascota (no toca la publicación); rejected como reject.
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Param payload body statusRequest true "Nuevo estado"
// @Success 200 {object} respond.Envelope{data=requestResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /adoption-requests/{id}/status [patch]
func updateStatusHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		res, err := c.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toResponse(res.Request))
	}
}

// acceptHandler godoc
// @Summary Aceptar solicitud
// @Description Marca la solicitud como aceptada. Si viene petId, la mascota queda adoptada y no disponible (best-effort: si la mascota no existe la operación igual responde éxito).
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Param payload body acceptRequest false "petId opcional"
// @Success 200 {object} respond.Envelope{data=requestResponse}
// @Failure 404 {object} respond.Envelope
// @Router /adoption-requests/admin/accept/{id} [patch]
func acceptHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req acceptRequest
		if !decodeOptional(w, r, &req) {
			return
		}

		res, err := c.Accept(r.Context(), chi.URLParam(r, "id"), req.PetID)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.Modified(w, toResponse(res.Request), 1)
	}
}

// rejectHandler godoc
// @Summary Rechazar solicitud
// @Tags adoption-requests
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Success 200 {object} respond.Envelope{data=requestResponse}
// @Failure 404 {object} respond.Envelope
// @Router /adoption-requests/admin/reject/{id} [patch]
func rejectHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := c.Reject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.Modified(w, toResponse(res.Request), 1)
	}
}

// verifyHandler godoc
// @Summary Registrar verificación de salud
// @Description verify-vaccination lee vaccinationProof y verify-neutering lee neuteringProof (ambos opcionales). vetVerified queda en true con la primera verificación.
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Param payload body verifyRequest false "URL de la prueba"
// @Success 200 {object} respond.Envelope{data=requestResponse}
// @Failure 404 {object} respond.Envelope
// @Router /adoption-requests/admin/verify-vaccination/{id} [patch]
// @Router /adoption-requests/admin/verify-neutering/{id} [patch]
func verifyHandler(c *Coordinator, kind VerificationKind, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if !decodeOptional(w, r, &req) {
			return
		}

		proof := req.VaccinationProof
		if kind == VerificationNeutering {
			proof = req.NeuteringProof
		}

		res, err := c.Verify(r.Context(), chi.URLParam(r, "id"), kind, proof)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toResponse(res.Request))
	}
}

// reconcileHandler godoc
// @Summary Reconciliar disponibilidad de mascotas
// @Description Re-deriva isAdopted/isAvailable desde las solicitudes aceptadas. Idempotente.
// @Tags adoption-requests
// @Produce json
// @Success 200 {object} respond.Envelope{data=ReconcileReport}
// @Failure 500 {object} respond.Envelope
// @Router /adoption-requests/admin/reconcile [post]
func reconcileHandler(c *Coordinator, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := c.Reconcile(r.Context())
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, rep)
	}
}

// emailParam decodifica {email}: chi enruta sobre RawPath y deja "%40" sin decodificar.
func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid email in path")
		return "", false
	}
	return email, true
}

// decodeOptional acepta body vacío.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respond.Fail(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error, expose bool) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Fail(w, http.StatusNotFound, "adoption request not found")
	default:
		respond.Internal(w, err, expose)
	}
}

func toResponse(r Request) requestResponse {
	return requestResponse{
		ID:                  r.ID,
		UserEmail:           r.RequesterEmail,
		UserName:            r.RequesterName,
		UserAddress:         r.RequesterAddress,
		Phone:               r.Phone,
		OwnerEmail:          r.OwnerEmail,
		PetID:               r.PetID,
		Name:                r.PetName,
		Category:            r.Category,
		Image:               r.Image,
		ShortDescription:    r.ShortDescription,
		LongDescription:     r.LongDescription,
		Status:              r.Status,
		AgreementAccepted:   r.AgreementAccepted,
		VaccinationVerified: r.VaccinationVerified,
		VaccinationProof:    r.VaccinationProof,
		NeuteringVerified:   r.NeuteringVerified,
		NeuteringProof:      r.NeuteringProof,
		VetVerified:         r.VetVerified,
		VerifiedAt:          r.VerifiedAt,
		CreatedAt:           r.CreatedAt,
	}
}

func toResponses(items []Request) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toResponse(r))
	}
	return out
}
