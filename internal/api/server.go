// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the domain intelligence service.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"domainintel/internal/api/handler/v1handler"
	"domainintel/internal/config"
	"domainintel/pkg/controller"
	"domainintel/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// PublicKey is the PEM encoded RSA key verifying bearer tokens on /api.
	// Empty disables authentication.
	PublicKey string

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		PublicKey: cfg.JWT.PublicKey,

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// Deps are the services behind the API routes.
type Deps struct {
	v1handler.Deps
}

// NewHandler builds the routing tree:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - /api routes, guarded by bearer authentication when a public key is configured
// - pprof endpoints for profiling
// Every route passes through the real-IP, recoverer, logging and CORS middlewares.
func NewHandler(deps Deps, opts Options) (http.Handler, error) {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	var auth *controller.Authenticator
	if opts.PublicKey != "" {
		a, err := controller.NewAuthenticator(opts.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("could not create authenticator: %w", err)
		}
		auth = a
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer, controller.WithLogger, controller.WithCORS)

	r.Get("/healthz", v1handler.Health)

	// prometheus metrics server
	r.Handle(opts.MetricsPath, promhttp.Handler())

	// v1 specs file
	r.Get("/specs/v1.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	r.Handle("/docs/*", v5emb.New(
		"Domain Intelligence Service",
		"/specs/v1.yaml",
		"/docs/",
	))

	// api
	h := v1handler.New(deps.Deps)
	r.Route("/api", func(r chi.Router) {
		if auth != nil {
			r.Use(auth.WithBearerAuth)
		}
		h.Routes(r)
	})

	// pprof
	r.Mount("/debug/pprof", controller.PprofRouter())

	return r, nil
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// The router is wrapped with a request timeout and server errors are logged through zap.
func NewServer(ctx context.Context, deps Deps, opts Options) (*http.Server, error) {
	handler, err := NewHandler(deps, opts)
	if err != nil {
		return nil, err
	}

	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, `{"error":"request timed out"}`)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          logger.StdErrorLog(ctx),
	}, nil
}
