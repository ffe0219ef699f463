package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption/internal/platform/respond"
)

type RouteOptions struct {
	// Issuer nil => /auth/token responde 501 (modo dev con headers de debug).
	Issuer TokenIssuer
	// TokenGuard envuelve POST /auth/token (rate limit).
	TokenGuard   func(http.Handler) http.Handler
	ExposeErrors bool
}

func RegisterRoutes(r chi.Router, svc *Service, opts RouteOptions) {
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/", registerHandler(svc, opts.ExposeErrors))
		ur.Get("/{email}", getUserHandler(svc, opts.ExposeErrors))
	})

	tr := r
	if opts.TokenGuard != nil {
		tr = r.With(opts.TokenGuard)
	}
	tr.Post("/auth/token", tokenHandler(svc, opts.Issuer, opts.ExposeErrors))
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

type tokenRequest struct {
	Email string `json:"email"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokenResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        userResponse `json:"user"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Idempotente: si el email ya existe devuelve el usuario guardado con 200; si es nuevo, 201.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos del usuario"
// @Success 200 {object} respond.Envelope{data=userResponse}
// @Success 201 {object} respond.Envelope{data=userResponse}
// @Failure 400 {object} respond.Envelope
// @Router /users [post]
func registerHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, created, err := svc.Register(r.Context(), RegisterInput{
			Email:    req.Email,
			Name:     req.Name,
			PhotoURL: req.PhotoURL,
		})
		if err != nil {
			writeError(w, err, expose)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		respond.OK(w, status, toUserResponse(u))
	}
}

// getUserHandler godoc
// @Summary Obtener usuario por email
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} respond.Envelope{data=userResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /users/{email} [get]
func getUserHandler(svc *Service, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := emailParam(w, r)
		if !ok {
			return
		}
		u, err := svc.GetByEmail(r.Context(), email)
		if err != nil {
			writeError(w, err, expose)
			return
		}
		respond.OK(w, http.StatusOK, toUserResponse(u))
	}
}

// tokenHandler godoc
// @Summary Emitir access token
// @Description Emite un JWT HS256 para un usuario registrado. Usarlo como `Authorization: Bearer <token>`.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body tokenRequest true "Email registrado"
// @Success 200 {object} respond.Envelope{data=tokenResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Failure 429 {object} respond.Envelope
// @Router /auth/token [post]
func tokenHandler(svc *Service, issuer TokenIssuer, expose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if issuer == nil {
			respond.Fail(w, http.StatusNotImplemented, "token issuance not configured")
			return
		}

		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		tok, err := svc.IssueToken(r.Context(), issuer, req.Email)
		if err != nil {
			writeError(w, err, expose)
			return
		}

		respond.OK(w, http.StatusOK, tokenResponse{
			AccessToken: tok.AccessToken,
			TokenType:   "Bearer",
			ExpiresAt:   tok.ExpiresAt,
			User:        toUserResponse(tok.User),
		})
	}
}

func writeError(w http.ResponseWriter, err error, expose bool) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Fail(w, http.StatusBadRequest, "a valid email is required")
	case errors.Is(err, ErrNotFound):
		respond.Fail(w, http.StatusNotFound, "user not found")
	default:
		respond.Internal(w, err, expose)
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		PhotoURL:  u.PhotoURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
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
