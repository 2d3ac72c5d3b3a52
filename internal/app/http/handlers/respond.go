package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"craft-invoice/backend/internal/app/http/middleware"
	"craft-invoice/backend/internal/domain/invoice"
)

// response is the API envelope: {success, data|error, message?}.
type response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (h *Handlers) writeData(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: true, Data: data, Message: message})
}

// writeError is the terminal error handler: every domain error bubbles here
// and gets classified. Unknown errors are logged and redacted.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr  *invoice.ValidationError
		pgErr *pgconn.PgError
	)
	status, msg := http.StatusInternalServerError, "internal server error"
	var fields map[string]string

	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, "validation failed"
		fields = verr.Fields
	case errors.Is(err, invoice.ErrNotFound):
		status, msg = http.StatusNotFound, "invoice not found"
	case errors.As(err, &pgErr):
		status, msg = http.StatusBadRequest, "database error"
	default:
		h.Log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestID(r.Context())).
			Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: false, Error: msg, Fields: fields})
}

func (h *Handlers) writeBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}
