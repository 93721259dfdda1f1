package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"veostudio/internal/http/handlers"
	"veostudio/internal/middleware"
)

type RouterOptions struct {
	Logger          zerolog.Logger
	RateLimitPerMin int
	CORSOrigins     []string
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that sets those headers itself.
	TrustProxy bool
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	r.Get("/", app.Index)
	r.Get("/v1/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/inputs", func(r chi.Router) {
		r.Get("/", app.GetInputs)
		r.Post("/prompt", app.SetPrompt)
		r.Post("/duration", app.SetDuration)
		r.Post("/aspect-ratio", app.SetAspectRatio)
		r.Post("/image", app.SetImage)
		r.Delete("/image", app.ClearImage)
	})

	r.Get("/v1/status", app.Status)
	r.Get("/v1/videos/{invocation}/{name}", app.Video)
	r.Get("/v1/archives/{invocation}", app.Archive)

	// remote calls cost quota
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/v1/generate", app.Generate)
		r.Post("/v1/credentials", app.SelectCredential)
	})

	return r
}
