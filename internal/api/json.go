package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notebook/internal/apperr"
)

// Request body caps. Buffer triggers carry the full text of open editors.
const (
	maxBodyBytes       = 1 << 20
	maxBufferBodyBytes = 64 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// errResponse is the body of every non-2xx bridge response. Code is stable
// across releases; Error is for humans.
type errResponse struct {
	Error string `json:"error" validate:"required"`
	Code  string `json:"code,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps service errors to HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	body := errResponse{Error: "internal error", Code: "internal"}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalidTitle):
		status, body = http.StatusBadRequest, errResponse{Error: err.Error(), Code: "invalid_title"}
	case errors.Is(err, apperr.ErrNotANote):
		status, body = http.StatusBadRequest, errResponse{Error: err.Error(), Code: "not_a_note"}
	case errors.Is(err, apperr.ErrNotFound):
		status, body = http.StatusNotFound, errResponse{Error: "not found", Code: "not_found"}
	case errors.Is(err, apperr.ErrNotReady):
		status, body = http.StatusServiceUnavailable, errResponse{Error: err.Error(), Code: "not_ready"}
	case errors.Is(err, fs.ErrPermission):
		status, body = http.StatusForbidden, errResponse{Error: "permission denied", Code: "permission"}
	}
	if status >= http.StatusInternalServerError || status == http.StatusForbidden {
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body of at most maxBodyBytes into v and validates
// it when v knows how.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeLimit(w, r, v, maxBodyBytes)
}

func decodeLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:  "too_large",
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid JSON body", Code: "bad_request"})
		return false
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error(), Code: "validation"})
			return false
		}
	}
	return true
}
