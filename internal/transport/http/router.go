// Package httptransport assembles the HTTP surface. It stays thin: routing,
// middleware ordering, and operational endpoints; all behavior lives in the
// per-module handler packages.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	admissionhandler "opptak/internal/admission/handler"
	authhandler "opptak/internal/auth/handler"
	batchhandler "opptak/internal/batch/handler"
	capacityhandler "opptak/internal/capacity/handler"
	placementhandler "opptak/internal/placement/handler"
	"opptak/internal/platform/middleware"
)

// Handlers groups the per-module HTTP handlers the router mounts.
type Handlers struct {
	Admission *admissionhandler.Handler
	Placement *placementhandler.Handler
	Capacity  *capacityhandler.Handler
	Batch     *batchhandler.Handler
	Auth      *authhandler.Handler
}

// NewRouter wires middleware and routes. Metadata runs first so every log
// line and audit entry carries the request id and client metadata; Auth runs
// before any role-guarded route.
func NewRouter(h Handlers, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Metadata)
	r.Use(middleware.Auth(verifier))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Auth.Register(r)
	h.Admission.Register(r, middleware.RequireStaff)
	h.Capacity.Register(r)

	// Matching, dual placement, and bulk actions are caseworker tooling.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff)
		h.Placement.Register(r)
		h.Batch.Register(r)
	})

	return r
}
