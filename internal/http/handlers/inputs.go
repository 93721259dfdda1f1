package handlers

import (
	"errors"
	"io"
	"net/http"
)

const maxImageBytes = 20 << 20

type inputsResponse struct {
	Prompt          string `json:"prompt"`
	HasImage        bool   `json:"has_image"`
	ImageMIMEType   string `json:"image_mime_type,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	AspectRatio     string `json:"aspect_ratio"`
}

// Inputs reports the values a generation would use right now.
func (a *App) GetInputs(w http.ResponseWriter, r *http.Request) {
	in := a.Inputs.Snapshot()
	resp := inputsResponse{
		Prompt:          in.Prompt,
		DurationSeconds: in.DurationSeconds,
		AspectRatio:     string(in.AspectRatio),
	}
	if in.Image != nil {
		resp.HasImage = true
		resp.ImageMIMEType = in.Image.MIMEType
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) SetPrompt(w http.ResponseWriter, r *http.Request) {
	prompt := r.FormValue("prompt")
	a.applyInput(w, func() { a.Inputs.SetPrompt(prompt) })
}

// SetDuration coerces the value like a number field: "8s" is 8, "abc" unsets it.
func (a *App) SetDuration(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("duration")
	a.applyInput(w, func() { a.Inputs.SetDurationText(text) })
}

func (a *App) SetAspectRatio(w http.ResponseWriter, r *http.Request) {
	ratio := r.FormValue("aspect_ratio")
	a.applyInput(w, func() { a.Inputs.SetAspectRatio(ratio) })
}

// SetImage reads the "image" multipart file. A request without a file keeps
// the current image.
func (a *App) SetImage(w http.ResponseWriter, r *http.Request) {
	if !a.Host.ControlsEnabled() {
		a.rejectLocked(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		a.applyInput(w, func() { a.Inputs.SetImage(nil) })
		return
	}
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid image upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
		return
	}
	if len(data) > maxImageBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds 20 MiB")
		return
	}
	a.applyInput(w, func() { a.Inputs.SetImage(data) })
}

func (a *App) ClearImage(w http.ResponseWriter, r *http.Request) {
	a.applyInput(w, a.Inputs.ClearImage)
}

// applyInput changes the form only while a generation has not locked it.
func (a *App) applyInput(w http.ResponseWriter, apply func()) {
	if !a.Host.WithControls(apply) {
		a.rejectLocked(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) rejectLocked(w http.ResponseWriter) {
	a.error(w, http.StatusConflict, "busy", "inputs are locked while a video is generating")
}
