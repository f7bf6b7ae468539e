package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/correlation"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/profile"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/scan"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/session"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, profile.ErrProfileIncomplete),
		errors.Is(err, profile.ErrInvalidOption),
		errors.Is(err, session.ErrInvalidStage),
		errors.Is(err, session.ErrInvalidCheckout):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmptyCart),
		errors.Is(err, session.ErrInvalidStep),
		errors.Is(err, scan.ErrAlreadyStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code. Internal errors are logged and
// hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status := statusFor(err)
	cid := correlation.FromContext(r.Context())

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Printf("%s %s: %v correlation_id=%s", r.Method, r.URL.Path, err, cid)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, CorrelationID: cid})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
