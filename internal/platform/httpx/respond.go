package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Item writes a single-entity envelope.
func Item(w http.ResponseWriter, status int, item any) {
	write(w, status, map[string]any{"item": item})
}

// Items writes a collection envelope with its total count.
func Items(w http.ResponseWriter, status int, items any, total int) {
	write(w, status, map[string]any{"items": items, "total": total})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes the error envelope, echoing the request id for support.
// Internal errors are masked; the caller is expected to log them.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal error"
	}
	write(w, status, map[string]any{
		"error":     detail,
		"requestId": middleware.GetReqID(r.Context()),
	})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
