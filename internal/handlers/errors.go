package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError sends {"error": message} with status.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// JSONValidationError sends {"error": message, "fields": {...}} with status, typically 400.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message, Fields: fields})
}
