// Package handler exposes the caseworker bulk-action surface.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opptak/internal/batch"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/httputil"
	"opptak/pkg/requestcontext"
)

type Handler struct {
	runner   *batch.Runner
	registry *batch.Registry
	logger   *slog.Logger
}

func New(runner *batch.Runner, registry *batch.Registry, logger *slog.Logger) *Handler {
	return &Handler{runner: runner, registry: registry, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/batch", h.Run)
}

// BatchRequest applies one named action to a set of applications.
type BatchRequest struct {
	Action         string   `json:"action"`
	Reason         string   `json:"reason,omitempty"`
	ApplicationIDs []string `json:"application_ids"`
}

type BatchResponse struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []FailureEntry `json:"failed"`
}

type FailureEntry struct {
	ApplicationID string `json:"application_id"`
	Error         string `json:"error"`
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if len(req.ApplicationIDs) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "application_ids cannot be empty"))
		return
	}
	action, err := h.registry.Resolve(req.Action, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	appIDs := make([]id.ApplicationID, 0, len(req.ApplicationIDs))
	for _, raw := range req.ApplicationIDs {
		appID, err := id.ParseApplicationID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid application id: "+raw))
			return
		}
		appIDs = append(appIDs, appID)
	}

	result := h.runner.Run(ctx, appIDs, action)
	h.logger.InfoContext(ctx, "batch completed",
		"request_id", requestcontext.RequestID(ctx),
		"action", req.Action,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)

	resp := BatchResponse{Succeeded: make([]string, 0, len(result.Succeeded)), Failed: make([]FailureEntry, 0, len(result.Failed))}
	for _, appID := range result.Succeeded {
		resp.Succeeded = append(resp.Succeeded, appID.String())
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, FailureEntry{ApplicationID: f.ApplicationID.String(), Error: f.Error})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
