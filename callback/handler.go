// Package callback is the HTTP surface through which notification relays
// report clicks and application windows report themselves.
package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shinosaki/sparkup-push-go/host"
	"github.com/shinosaki/sparkup-push-go/worker"
	"go.uber.org/zap"
)

const clickWaitTimeout = 30 * time.Second

type Dispatcher interface {
	DispatchNotificationClick(ctx context.Context, id string) *worker.Event
}

type Handler struct {
	dispatcher   Dispatcher
	registration host.Registration
	windows      *host.WindowRegistry
	logger       *zap.Logger
}

func NewHandler(dispatcher Dispatcher, registration host.Registration, windows *host.WindowRegistry, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher:   dispatcher,
		registration: registration,
		windows:      windows,
		logger:       logger.Named("callback"),
	}
}

type clientRequest struct {
	URL        string `json:"url"`
	Controlled *bool  `json:"controlled,omitempty"`
}

type clientResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Controlled bool   `json:"controlled"`
}

func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registration.Notifications())
}

// ServeClick answers once the focus-or-open sequence has settled.
func (h *Handler) ServeClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), clickWaitTimeout)
	defer cancel()

	err := h.dispatcher.DispatchNotificationClick(r.Context(), id).Wait(ctx)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, host.ErrWindowGone):
		writeError(w, http.StatusConflict, "window closed")
	case errors.Is(err, host.ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	case errors.Is(err, worker.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting down")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusAccepted, "click still pending")
	default:
		h.logger.Warn("click failed", zap.String("notification_id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) ServeRegisterClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	controlled := true
	if req.Controlled != nil {
		controlled = *req.Controlled
	}

	win := h.windows.Register(req.URL, controlled)
	writeJSON(w, http.StatusCreated, clientResponse{ID: win.ID(), URL: req.URL, Controlled: controlled})
}

func (h *Handler) ServeNavigateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := h.windows.Navigate(id, req.URL); err != nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ServeRemoveClient(w http.ResponseWriter, r *http.Request) {
	if err := h.windows.Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
