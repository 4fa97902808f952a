package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medivault/internal/auth"
	"medivault/pkg/requestcontext"
)

// NewRouter wires all endpoints. Everything under the authenticated group
// carries session context; the consent and record routes additionally pass
// through the core's consent gate inside the services themselves.
func NewRouter(h *Handler, tokens *auth.TokenIssuer) http.Handler {
	r := chi.NewRouter()
	r.Use(Recovery(h.logger))
	r.Use(RequestMetadata)

	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(tokens, h.logger))

		r.Post("/consent/accept", h.consentTransition(func(req *http.Request) error {
			return h.gate.Accept(req.Context(), requestcontext.SessionID(req.Context()))
		}))
		r.Post("/consent/decline", h.consentTransition(func(req *http.Request) error {
			return h.gate.Decline(req.Context(), requestcontext.SessionID(req.Context()))
		}))
		r.Post("/consent/revoke", h.consentTransition(func(req *http.Request) error {
			return h.gate.Revoke(req.Context(), requestcontext.SessionID(req.Context()))
		}))

		r.Get("/records", h.handleListRecords)
		r.Post("/records", h.handleCreateRecord)
		r.Get("/records/{recordID}", h.handleViewRecord)
		r.Put("/records/{recordID}", h.handleUpdateRecord)
		r.Post("/records/{recordID}/anonymize", h.handleAnonymizeRecord)
		r.Get("/records/export", h.handleExportRecords)

		r.Get("/retention/report", h.handleRetentionReport)
		r.Get("/audit", h.handleAuditTrail)
	})

	return r
}
