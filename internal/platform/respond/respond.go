// Package respond centraliza el envelope JSON de la API:
// éxito => {"success": true, "data": ...}; error => {"success": false, "message": "..."}.
package respond

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`

	// Solo en mutaciones admin (accept/reject).
	ModifiedCount *int `json:"modifiedCount,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

func Modified(w http.ResponseWriter, data any, n int) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, ModifiedCount: &n})
}

func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Message: msg})
}

// Internal oculta el detalle del error salvo en modo development.
func Internal(w http.ResponseWriter, err error, expose bool) {
	msg := "internal error"
	if expose && err != nil {
		msg = err.Error()
	}
	Fail(w, http.StatusInternalServerError, msg)
}
