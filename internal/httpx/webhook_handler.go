package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/payment"
	"github.com/ariefcatur/go-market-checkout/internal/webhook"
)

// WebhookHandler: endpoint publik tanpa user auth; satu-satunya
// autentikasi adalah HMAC atas raw body.
type WebhookHandler struct {
	Reconciler *webhook.Reconciler
	Secret     string
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/api/webhook/payment", h.handle)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "cannot read body")
		return
	}

	sig := r.Header.Get("x-signature")
	if sig == "" {
		writeErr(w, http.StatusUnauthorized, "missing signature")
		return
	}
	// verifikasi SEBELUM parse; body tampered tidak pernah dipercaya
	if !payment.VerifySignature(h.Secret, body, sig) {
		writeErr(w, http.StatusForbidden, "invalid signature")
		return
	}

	var cb webhook.Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Reconciler.Apply(ctx, cb); err != nil {
		switch {
		case errors.Is(err, webhook.ErrInvalidPayload):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, webhook.ErrOrderNotFound):
			writeErr(w, http.StatusNotFound, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "order status updated"})
}
