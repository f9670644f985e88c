package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opptak/internal/auth"
	"opptak/pkg/platform/httputil"
	"opptak/pkg/requestcontext"
)

type Handler struct {
	service *auth.Service
	logger  *slog.Logger
}

func New(service *auth.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token       string `json:"token"`
	StaffID     string `json:"staff_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	token, staff, err := h.service.Login(ctx, req.Username, req.Password, requestcontext.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"username", req.Username,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:       token,
		StaffID:     staff.ID.String(),
		Role:        staff.Role.String(),
		DisplayName: staff.DisplayName,
	})
}
