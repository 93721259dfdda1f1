package handlers

import (
	"errors"
	"net/http"

	"veostudio/internal/domain"
	"veostudio/internal/middleware"
	"veostudio/internal/studio"
)

type generateResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	View
	State        studio.State `json:"state"`
	Busy         bool         `json:"busy"`
	InvocationID string       `json:"invocation_id,omitempty"`
}

// Generate starts a generation with the current inputs and returns at once;
// clients follow progress through Status.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	done, err := a.Session.Start(a.baseCtx)
	if errors.Is(err, domain.ErrBusy) {
		a.error(w, http.StatusConflict, "busy", "a video is already generating")
		return
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to start generation")
		return
	}

	rid := middleware.RequestIDFromContext(r.Context())
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := <-done; err != nil {
			a.Logger.Warn().Err(err).Str("request_id", rid).Msg("handlers: generation failed")
			return
		}
		a.Logger.Info().Str("request_id", rid).Msg("handlers: generation finished")
	}()

	a.json(w, http.StatusAccepted, generateResponse{Status: studio.StatusGenerating})
}

func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		View:  a.Host.View(),
		State: a.Session.State(),
		Busy:  a.Session.Busy(),
	}
	if res := a.Session.LastResult(); res != nil && resp.State == studio.StateDone {
		resp.InvocationID = res.InvocationID
	}
	a.json(w, http.StatusOK, resp)
}
