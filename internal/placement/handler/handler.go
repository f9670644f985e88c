// Package handler exposes placement matching and dual placement over HTTP.
// Every route is staff-only; the router applies the guard when mounting.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opptak/internal/domain"
	"opptak/internal/placement"
	id "opptak/pkg/domain"
	"opptak/pkg/platform/httputil"
	"opptak/pkg/requestcontext"
)

type Handler struct {
	service *placement.Service
	logger  *slog.Logger
}

func New(service *placement.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/placements", func(r chi.Router) {
		r.Post("/match", h.Match)
		r.Get("/decisions/{applicationID}", h.Decisions)
		r.Post("/dual", h.ProposeDual)
		r.Post("/dual/{scheduleID}/approve", h.Approve)
		r.Post("/dual/{scheduleID}/revoke", h.Revoke)
	})
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MatchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	appID, err := id.ParseApplicationID(req.ApplicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	decision, err := h.service.Match(ctx, appID)
	if err != nil {
		h.logger.ErrorContext(ctx, "match failed",
			"request_id", requestcontext.RequestID(ctx),
			"application_id", appID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

func (h *Handler) Decisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	decisions, err := h.service.Decisions(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, FromDecision(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"decisions": out})
}

func (h *Handler) ProposeDual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[DualProposalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	appID, err := id.ParseApplicationID(req.ApplicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	split, err := req.Split()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schedule, err := h.service.ProposeDual(ctx, appID, split, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromSchedule(schedule))
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.approval(w, r, true)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.approval(w, r, false)
}

func (h *Handler) approval(w http.ResponseWriter, r *http.Request, approve bool) {
	ctx := r.Context()
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApprovalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	party, err := domain.ParseDualParty(req.Party)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var schedule domain.DualPlacementSchedule
	if approve {
		schedule, err = h.service.Approve(ctx, scheduleID, party)
	} else {
		schedule, err = h.service.Revoke(ctx, scheduleID, party, req.Reason)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSchedule(schedule))
}
