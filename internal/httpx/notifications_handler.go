package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/notifications"
)

type NotificationsHandler struct {
	Repo   *notifications.Repo
	Issuer *auth.Issuer
}

func (h *NotificationsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Issuer))
		r.Get("/api/notifications", h.list)
		r.Post("/api/notifications/read", h.markRead)
	})
}

func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	list, unread, err := h.Repo.ListByUser(ctx, ident.UserID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"data":         list,
		"unread_count": unread,
	})
}

func (h *NotificationsHandler) markRead(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Repo.MarkAllRead(ctx, ident.UserID); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
