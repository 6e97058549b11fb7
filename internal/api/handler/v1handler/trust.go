package v1handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
)

// Trust serves GET /api/trust?url=<url>.
func (h *Handler) Trust(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeErrorMessage(w, http.StatusBadRequest, "url required")

		return
	}

	report, err := h.trust.Analyze(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	var e jx.Encoder
	encodeTrustReport(&e, report)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, &e)
}

// Health serves GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str("ok")
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}
