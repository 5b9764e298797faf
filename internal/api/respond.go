package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/store"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps application errors to HTTP status codes: configuration
// errors are the caller's fault (400), missing batches are 404, everything
// else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case apperrors.IsConfiguration(err),
		apperrors.Is(err, apperrors.ErrCodeInvalidFormat),
		apperrors.Is(err, apperrors.ErrCodeInvalidPath):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}
