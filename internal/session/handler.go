package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sessionlite/sessionlite/internal/httpx"
	"go.uber.org/zap"
)

type BrowserSessionHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type browserSessionHandler struct {
	logger    *zap.Logger
	service   BrowserSessionService
	validator *validator.Validate
}

func NewBrowserSessionHandler(service BrowserSessionService, l *zap.Logger) BrowserSessionHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &browserSessionHandler{
		logger:    l,
		service:   service,
		validator: v,
	}
}

func (h *browserSessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/browser-sessions", h.Index)
	r.Delete("/browser-sessions/others", h.Destroy)
	return r
}

// Index lists every active session of the caller, current one flagged.
func (h *browserSessionHandler) Index(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListForCurrentUser(r.Context())
	if err != nil {
		h.logger.Error("failed to list browser sessions", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listSessionsResponse{
		Sessions: views,
		Count:    len(views),
	})
}

// Destroy revokes every other session after re-verifying the password.
func (h *browserSessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return
	}

	var req logoutOthersRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode logout-others request body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInvalidJSON,
			Message: "invalid request body",
		})
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF { // check if there's any trailing data
		h.logger.Warn("trailing data after JSON body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("logout-others validation failed", zap.Error(err))
		fields := httpx.ValidationDetails(err)
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: "validation failed",
			Details: fields,
		})
		return
	}

	deleted, err := h.service.LogoutOtherSessionsWithPassword(ctx, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "not authenticated",
			})
		case errors.Is(err, ErrInvalidCredential):
			httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
				Code:    httpx.ErrValidationFailed,
				Message: "The provided password is incorrect.",
				Details: httpx.FieldFailure("password", "current_password"),
			})
		default:
			h.logger.Error("failed to revoke other sessions", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "internal server error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, logoutOthersResponse{
		Message:      "Successfully logged out other browser sessions.",
		DeletedCount: deleted,
	})
}

type listSessionsResponse struct {
	Sessions []SessionView `json:"sessions"`
	Count    int           `json:"count"`
}

type logoutOthersRequest struct {
	Password string `json:"password" validate:"required,min=1,max=72"`
}

type logoutOthersResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}
