package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"veostudio/internal/storage"
)

const quotaNotice = "Your API key is missing, invalid or out of quota. Select another key with `apikey -key <KEY>` and try again."

// consoleHost renders the form state as lines of text. Saved videos go to the
// FileStore and are reported by their path on disk.
type consoleHost struct {
	store *storage.FileStore
	out   io.Writer
	errw  io.Writer

	mu    sync.Mutex
	saved []string
}

func newConsoleHost(store *storage.FileStore, out, errw io.Writer) *consoleHost {
	return &consoleHost{store: store, out: out, errw: errw}
}

func (h *consoleHost) Save(ctx context.Context, invocationID, filename string, data []byte) (string, error) {
	key, err := h.store.Save(ctx, invocationID, filename, data)
	if err != nil {
		return "", err
	}
	location, err := h.store.Path(key)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	h.saved = append(h.saved, location)
	h.mu.Unlock()
	return location, nil
}

func (h *consoleHost) ShowVideo(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, "video saved: %s\n", location)
}

func (h *consoleHost) SetStatus(text string) {
	if text == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.out, text)
}

func (h *consoleHost) SetQuotaNoticeVisible(visible bool) {
	if !visible {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.errw, quotaNotice)
}

// A terminal has no controls to lock or player to hide.
func (h *consoleHost) SetControlsEnabled(bool) {}

func (h *consoleHost) HideVideo() {}

func (h *consoleHost) Saved() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.saved...)
}
