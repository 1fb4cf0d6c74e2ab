package api

import (
	"encoding/json"
	"net/http"

	"github.com/flexihomes/formrelay/internal/form"
	"github.com/flexihomes/formrelay/internal/pkg/logger"
	"github.com/flexihomes/formrelay/internal/relay"
)

// Internal errors (relay diagnostics, file paths, SMTP chatter) are never
// leaked to API consumers. Delivery failures return a stable code plus a
// public-safe message; the raw detail is logged server-side and included in
// the response only in diagnostic mode.

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationError sends a 400 with the field → reason map so the
// client can report exactly which fields failed.
func respondValidationError(w http.ResponseWriter, message string, verr *form.ValidationError) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   message,
		"code":    verr.Kind,
		"details": verr.Fields,
	})
}

// respondDispatchError sends a 500 with the failure kind as a stable code.
func respondDispatchError(w http.ResponseWriter, derr *relay.DispatchError, diagnostic bool) {
	logger.Error("delivery failed", "code", string(derr.Kind), "detail", derr.Detail)

	body := map[string]string{
		"error": relay.UserMessage(derr.Kind),
		"code":  string(derr.Kind),
	}
	if diagnostic {
		body["details"] = derr.Detail
	}
	respondJSON(w, http.StatusInternalServerError, body)
}

// respondSafeError logs the full internal error and returns a public-safe
// message, for failures outside the dispatch taxonomy.
func respondSafeError(w http.ResponseWriter, status int, internalErr error, publicMsg string) {
	if internalErr != nil {
		logger.Error("request failed", "status", status, "err", internalErr.Error())
	}
	respondError(w, status, publicMsg)
}
