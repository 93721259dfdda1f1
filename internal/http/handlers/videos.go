package handlers

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"veostudio/pkg/zip"
)

// Video serves a saved file so the page can play and download it.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	invocation := chi.URLParam(r, "invocation")
	name := chi.URLParam(r, "name")
	if invocation == "" || name == "" || a.Store == nil {
		a.error(w, http.StatusNotFound, "not_found", "video not found")
		return
	}
	fullPath, err := a.Store.Path(path.Join(invocation, name))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid video path")
		return
	}
	info, err := os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		a.error(w, http.StatusNotFound, "not_found", "video not found")
		return
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to open video")
		return
	}
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, fullPath)
}

// Archive bundles every video of one generation into a zip download.
func (a *App) Archive(w http.ResponseWriter, r *http.Request) {
	invocation := chi.URLParam(r, "invocation")
	if invocation == "" || a.Store == nil {
		a.error(w, http.StatusNotFound, "not_found", "generation not found")
		return
	}
	dir, err := a.Store.Path(invocation)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid generation id")
		return
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		a.error(w, http.StatusNotFound, "not_found", "generation not found")
		return
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list videos")
		return
	}

	var files []zip.File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to read video")
			return
		}
		f := zip.File{Name: e.Name(), Data: data}
		if info, err := e.Info(); err == nil {
			f.Modified = info.ModTime()
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "generation has no videos")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": invocation + ".zip"}))
	if err := zip.WriteArchive(w, files); err != nil {
		a.Logger.Error().Err(err).Str("invocation_id", invocation).Msg("handlers: write archive")
	}
}
