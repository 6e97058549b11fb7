package controller

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// profiles are the runtime profiles served by name under the pprof router.
var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} //nolint: gochecknoglobals

// PprofRouter returns a router exposing the net/http/pprof handlers at its
// root. It is meant to be mounted under a debug path of the main HTTP server.
func PprofRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/", pprof.Index)
	r.Get("/cmdline", pprof.Cmdline)
	r.Get("/profile", pprof.Profile)
	r.HandleFunc("/symbol", pprof.Symbol)
	r.Get("/trace", pprof.Trace)
	for _, name := range profiles {
		r.Handle("/"+name, pprof.Handler(name))
	}

	return r
}
