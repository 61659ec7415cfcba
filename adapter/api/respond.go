package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
)

// errorBody is the JSON body of every error answer. Kind is the stable
// label from commands.ErrorKind so remote gateways can map it back.
type errorBody struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError maps err to a status code through its error kind.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := commands.ErrorKind(err)
	status := statusForKind(kind)
	message := err.Error()
	if status >= http.StatusInternalServerError && kind == commands.KindUnexpected {
		logger.ErrorContext(r.Context(), "request failed", "error", err, "error_kind", kind)
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: message, Kind: kind})
}

// writeBadRequest rejects a request that could not be decoded.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message, Kind: commands.KindValidation})
}

// writeInvalid answers 422 with one message per failing field.
func writeInvalid(w http.ResponseWriter, err error) {
	var fieldErrs *fieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  "invalid request",
			Kind:   commands.KindValidation,
			Fields: fieldErrs.fields,
		})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Kind: commands.KindValidation})
}

func statusForKind(kind string) int {
	switch kind {
	case commands.KindValidation:
		return http.StatusUnprocessableEntity
	case commands.KindNotFound:
		return http.StatusNotFound
	case commands.KindConflict, commands.KindTransition:
		return http.StatusConflict
	case commands.KindRemote:
		return http.StatusBadGateway
	case commands.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
