// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers for cross-origin reads and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - Authenticator.WithBearerAuth: Verifies RS256 bearer tokens and stores their subject in the context.
//
// Provided helpers:
//   - PprofRouter: Returns a router exposing net/http/pprof handlers.
package controller
