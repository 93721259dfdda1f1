// Package handlers serves the generation form over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"veostudio/internal/form"
	"veostudio/internal/infra"
	"veostudio/internal/infra/credentials"
	"veostudio/internal/storage"
	"veostudio/internal/studio"
)

// App wires the form state, the session and the stores behind the routes.
type App struct {
	Inputs      *form.Collector
	Session     *studio.Session
	Host        *WebHost
	Store       *storage.FileStore
	Credentials *credentials.Store
	Logger      *infra.Logger

	// generations outlive the request that starts them
	baseCtx context.Context
	wg      sync.WaitGroup
}

type AppOptions struct {
	Inputs      *form.Collector
	Session     *studio.Session
	Host        *WebHost
	Store       *storage.FileStore
	Credentials *credentials.Store
	Logger      *infra.Logger
}

// NewApp builds the handler container. Generations started through it run
// under ctx; cancel it and call Wait to stop them.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	if opts.Inputs == nil || opts.Session == nil || opts.Host == nil {
		return nil, errors.New("handlers: inputs, session and host are required")
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &App{
		Inputs:      opts.Inputs,
		Session:     opts.Session,
		Host:        opts.Host,
		Store:       opts.Store,
		Credentials: opts.Credentials,
		Logger:      logger,
		baseCtx:     ctx,
	}, nil
}

// Wait blocks until every generation started through the app has finished.
func (a *App) Wait() {
	a.wg.Wait()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
