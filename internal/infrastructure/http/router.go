package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	Accounts      *handlers.AccountsHandler
	Sessions      *handlers.SessionsHandler
	OAuth         *handlers.OAuthHandler // nil when no identity provider is configured
	HealthHandler http.Handler
	Actor         func(http.Handler) http.Handler // resolves the bearer token into an Actor
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	CORSOrigins   []string
	APIVersion    string
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.APIVersion(cfg.APIVersion))

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if cfg.OAuth != nil {
		r.Get("/auth/{provider}", cfg.OAuth.Begin)
		r.Get("/auth/{provider}/callback", cfg.OAuth.Callback)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))
		if cfg.Actor != nil {
			r.Use(cfg.Actor)
		}
		r.Post("/sessions", cfg.Sessions.Create)
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.Accounts.Register)
			r.Post("/activate", cfg.Accounts.Activate)
			r.Get("/", cfg.Accounts.List)
			r.Get("/{id}", cfg.Accounts.Show)
			r.Get("/{id}/edit", cfg.Accounts.Edit)
			r.Patch("/{id}", cfg.Accounts.Update)
			r.Delete("/{id}", cfg.Accounts.Delete)
		})
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Msg("request")
		})
	}
}
