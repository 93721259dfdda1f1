package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNoVideos      = errors.New("no videos generated")
	ErrBusy          = errors.New("generation already in progress")
	ErrPollLimit     = errors.New("operation did not complete within the poll limit")
	ErrAPIKeyMissing = errors.New("api key is required")
)

// RemoteError is a structured failure reported by the generation service.
// Its message text is the JSON envelope the service uses on the wire so that
// callers classifying by message see the same shape the API returns.
type RemoteError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

func (e *RemoteError) Error() string {
	raw, err := json.Marshal(struct {
		Error *RemoteError `json:"error"`
	}{Error: e})
	if err != nil {
		return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
	}
	return string(raw)
}
