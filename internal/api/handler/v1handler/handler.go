// Package v1handler implements the handlers of the v1 HTTP API.
package v1handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"domainintel/pkg/domain"
	"domainintel/pkg/logger"
	"domainintel/pkg/serrors"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// DefaultCacheMaxAge is advertised on pricing responses.
const DefaultCacheMaxAge = 5 * time.Minute

// TrustAnalyzer produces trust reports for raw URLs or domains.
type TrustAnalyzer interface {
	Analyze(ctx context.Context, raw string) (*domain.TrustReport, error)
}

// PricingCollector produces pricing reports. It never fails.
type PricingCollector interface {
	FetchOffers(ctx context.Context, d domain.NormalizedDomain) domain.PricingReport
}

// Deps are the collaborators of Handler.
type Deps struct {
	Trust   TrustAnalyzer
	Pricing PricingCollector
	// CacheMaxAge is advertised on pricing responses. Defaults to DefaultCacheMaxAge.
	CacheMaxAge time.Duration
}

// Handler serves the v1 API.
type Handler struct {
	trust       TrustAnalyzer
	pricing     PricingCollector
	cacheMaxAge time.Duration
}

// New creates a Handler from deps.
func New(deps Deps) *Handler {
	if deps.CacheMaxAge <= 0 {
		deps.CacheMaxAge = DefaultCacheMaxAge
	}

	return &Handler{
		trust:       deps.Trust,
		pricing:     deps.Pricing,
		cacheMaxAge: deps.CacheMaxAge,
	}
}

// Routes mounts the API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/pricing", h.Pricing)
	r.Get("/trust", h.Trust)
}

// ErrorResponse is the HTTP rendition of an error.
type ErrorResponse struct {
	StatusCode int
	// Code is the semantic error kind, used for logs.
	Code string
	// Message is the client-facing message.
	Message string
}

// defaultMessages are the client-facing messages of errors without one.
var defaultMessages = map[error]string{ //nolint: gochecknoglobals
	serrors.ErrBadRequest:   "bad request",
	serrors.ErrUnauthorized: "unauthorized",
	serrors.ErrNotFound:     "resource not found",
	serrors.ErrRateLimited:  "too many requests",
	serrors.ErrTimeout:      "request timed out",
	serrors.ErrUnavailable:  "service unavailable",
	serrors.ErrUpstream:     "upstream error",
	serrors.ErrInternal:     "internal error",
}

// NewError maps err onto an ErrorResponse. Internal errors never leak their
// message to the client.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	kind := serrors.KindOf(err)
	if kind == nil {
		kind = serrors.ErrInternal
	}
	status := serrors.HTTPStatus(err)

	msg := defaultMessages[kind]
	if !errors.Is(kind, serrors.ErrInternal) {
		msg = serrors.Message(err, msg)
	}

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err))
	}

	return &ErrorResponse{StatusCode: status, Code: kind.Error(), Message: msg}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeErrorMessage(w, res.StatusCode, res.Message)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("error")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, status, &e)
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
