package handlers

import (
	"context"
	"net/url"
	"sync"

	"veostudio/internal/storage"
)

// VideoPathPrefix is where saved videos are served from.
const VideoPathPrefix = "/v1/videos/"

// View is what the form page renders.
type View struct {
	Status          string   `json:"status"`
	ControlsEnabled bool     `json:"controls_enabled"`
	VideoVisible    bool     `json:"video_visible"`
	VideoURL        string   `json:"video_url,omitempty"`
	QuotaNotice     bool     `json:"quota_notice"`
	Downloads       []string `json:"downloads,omitempty"`
}

// WebHost keeps the state of a browser form between requests. Saved videos
// land in the FileStore and are exposed as download links.
type WebHost struct {
	store *storage.FileStore

	mu   sync.RWMutex
	view View
}

func NewWebHost(store *storage.FileStore) *WebHost {
	return &WebHost{store: store, view: View{ControlsEnabled: true}}
}

// Save writes the video and returns the URL it is served from.
func (h *WebHost) Save(ctx context.Context, invocationID, filename string, data []byte) (string, error) {
	key, err := h.store.Save(ctx, invocationID, filename, data)
	if err != nil {
		return "", err
	}
	location := VideoPathPrefix + (&url.URL{Path: key}).EscapedPath()
	h.mu.Lock()
	h.view.Downloads = append(h.view.Downloads, location)
	h.mu.Unlock()
	return location, nil
}

func (h *WebHost) ShowVideo(location string) {
	h.mu.Lock()
	h.view.VideoURL = location
	h.view.VideoVisible = true
	h.mu.Unlock()
}

// HideVideo also forgets the previous generation's download links.
func (h *WebHost) HideVideo() {
	h.mu.Lock()
	h.view.VideoVisible = false
	h.view.VideoURL = ""
	h.view.Downloads = nil
	h.mu.Unlock()
}

func (h *WebHost) SetControlsEnabled(enabled bool) {
	h.mu.Lock()
	h.view.ControlsEnabled = enabled
	h.mu.Unlock()
}

func (h *WebHost) SetStatus(text string) {
	h.mu.Lock()
	h.view.Status = text
	h.mu.Unlock()
}

func (h *WebHost) SetQuotaNoticeVisible(visible bool) {
	h.mu.Lock()
	h.view.QuotaNotice = visible
	h.mu.Unlock()
}

// WithControls runs apply while the controls are enabled and reports whether
// it ran. SetControlsEnabled waits for apply to return, so a generation that
// locks the form snapshots the inputs after the change lands.
func (h *WebHost) WithControls(apply func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.view.ControlsEnabled {
		return false
	}
	apply()
	return true
}

func (h *WebHost) ControlsEnabled() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.view.ControlsEnabled
}

// View returns a copy of the current form state.
func (h *WebHost) View() View {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v := h.view
	v.Downloads = append([]string(nil), h.view.Downloads...)
	return v
}
