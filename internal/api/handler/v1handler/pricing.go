package v1handler

import (
	"net/http"
	"strconv"
	"strings"

	"domainintel/internal/pricing"

	"github.com/go-faster/jx"
)

// Pricing serves GET /api/pricing?domain=<domain>. Provider failures leave
// null fields in the report; only a missing domain is an error.
func (h *Handler) Pricing(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("domain"))
	if raw == "" {
		writeErrorMessage(w, http.StatusBadRequest, "domain required")

		return
	}

	report := h.pricing.FetchOffers(r.Context(), pricing.Target(raw))

	var e jx.Encoder
	encodePricingReport(&e, report)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.cacheMaxAge.Seconds())))
	writeJSON(w, http.StatusOK, &e)
}
