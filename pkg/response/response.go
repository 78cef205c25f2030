// Package response writes JSON bodies. Success bodies are the bare
// resource; errors share one envelope.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope every failure uses.
type ErrorBody struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, v any)      { JSON(w, http.StatusOK, v) }
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Status: status, Message: message})
}

// Fail writes the full envelope. detail is omitted when empty.
func Fail(w http.ResponseWriter, body ErrorBody) {
	JSON(w, body.Status, body)
}

func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Fail(w, ErrorBody{Status: http.StatusBadRequest, Message: "Validation error", Errors: errs})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not authenticated"
	}
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Access denied"
	}
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found"
	}
	Error(w, http.StatusNotFound, message)
}
