package handlers

import (
	"net/http"
	"strings"
)

// SelectCredential stores the API key used by the next generation. It backs
// the form's "select key" action that appears with the quota notice.
func (a *App) SelectCredential(w http.ResponseWriter, r *http.Request) {
	if a.Credentials == nil {
		a.error(w, http.StatusNotImplemented, "not_configured", "credential store is not configured")
		return
	}
	key := strings.TrimSpace(r.FormValue("api_key"))
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key is required")
		return
	}
	if err := a.Credentials.SetGeminiAPIKey(r.Context(), key); err != nil {
		a.Logger.Error().Err(err).Msg("handlers: store api key")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store api key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
