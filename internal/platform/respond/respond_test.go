package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "modifiedCount")
}

func TestModified(t *testing.T) {
	rec := httptest.NewRecorder()
	Modified(rec, map[string]string{"id": "1"}, 1)

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["modifiedCount"])
}

func TestInternal_RedactsOutsideDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	Internal(rec, errors.New("pq: connection refused"), false)
	assert.Equal(t, "internal error", decode(t, rec)["message"])

	rec = httptest.NewRecorder()
	Internal(rec, errors.New("pq: connection refused"), true)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "pq: connection refused", body["message"])
}
