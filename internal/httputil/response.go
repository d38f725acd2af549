package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ringside-data/stock.report/internal/monitoring"
)

// errorBody is the wire shape every handler error takes.
type errorBody struct {
	Error string `json:"error"`
}

func writeBody(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already gone, so logging is all that's left.
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

// WriteJSON writes payload as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeBody(w, status, payload)
}

// WriteJSONOK writes payload as a 200 response.
func WriteJSONOK(w http.ResponseWriter, payload interface{}) {
	writeBody(w, http.StatusOK, payload)
}

// WriteJSONError writes a JSON error body with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	writeBody(w, status, errorBody{Error: msg})
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusNotFound, msg)
}

// MethodNotAllowed writes the standard 405 body.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// InternalServerError writes a 500 with the given message.
func InternalServerError(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusInternalServerError, msg)
}
