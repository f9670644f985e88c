// Package handler exposes the application workflow over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opptak/internal/admission"
	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/httputil"
	"opptak/pkg/requestcontext"
)

type Handler struct {
	service *admission.Service
	logger  *slog.Logger
}

func New(service *admission.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the application routes. Transition is staff-only and is
// guarded by the caller-supplied middleware.
func (h *Handler) Register(r chi.Router, requireStaff func(http.Handler) http.Handler) {
	r.Route("/applications", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{applicationID}", h.Get)
		r.Post("/{applicationID}/submit", h.Submit)
		r.Post("/{applicationID}/classify", h.Classify)
		r.With(requireStaff).Post("/{applicationID}/transition", h.Transition)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateApplicationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.CreateDraft(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "create application failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromApplication(app))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Get(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Submit(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ClassifyPreview(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRoundResult(result))
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	target, err := domain.ParseApplicationStatus(req.Target)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown target status"))
		return
	}
	app, err := h.service.Transition(ctx, appID, target, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "transition rejected",
			"request_id", requestcontext.RequestID(ctx),
			"application_id", appID,
			"target", target,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}
