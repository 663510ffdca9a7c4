package handler

// Every response from the API uses one of three envelopes:
//
//	success, single record:  {"status":"success","data":{...}}
//	success, list:           {"status":"success","results":N,"cases":[...]}
//	failure:                 {"status":"fail"|"error","message":"..."}
//
// "fail" marks caller mistakes (4xx); "error" marks server-side and
// dispatch failures. The mapping from domain errors to status codes lives
// entirely in writeError — handlers never pick status codes for errors.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/case-runner/internal/apperror"
)

// failureResponse is the uniform failure envelope.
type failureResponse struct {
	Status  string `json:"status"` // "fail" or "error"
	Message string `json:"message"`
}

// writeJSON sends any payload with the given status code. Headers must be
// set before the first body write; encoding failures can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeData wraps a single named record in the success envelope, e.g.
// writeData(w, 200, "case", c) → {"status":"success","data":{"case":{...}}}.
func writeData(w http.ResponseWriter, status int, key string, value any) {
	writeJSON(w, status, map[string]any{
		"status": "success",
		"data":   map[string]any{key: value},
	})
}

// writeError maps a domain error to its status code and failure envelope.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		kind := "error"

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusBadRequest
			kind = "fail"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			kind = "fail"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			kind = "fail"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			kind = "fail"
		case errors.Is(err, apperror.ErrMethodNotSupported):
			status = http.StatusMethodNotAllowed
			kind = "error"
		case errors.Is(err, apperror.ErrDispatchFailed):
			status = http.StatusInternalServerError
			kind = "error"
		}

		writeJSON(w, status, failureResponse{Status: kind, Message: appErr.Message})
		return
	}

	// Unknown error: generic 500. The raw message may contain SQL or file
	// paths and never reaches the client.
	writeJSON(w, http.StatusInternalServerError, failureResponse{
		Status:  "error",
		Message: "Something went wrong",
	})
}
