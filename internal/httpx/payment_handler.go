package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/checkout"
)

// PaymentHandler proxy cek admin fee buat frontend.
type PaymentHandler struct {
	Fees   checkout.FeeResolver
	Issuer *auth.Issuer
}

func (h *PaymentHandler) Register(r *chi.Mux) {
	r.With(RequireAuth(h.Issuer)).Get("/api/payment/fee", h.fee)
}

func (h *PaymentHandler) fee(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeErr(w, http.StatusBadRequest, "parameter code wajib diisi")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 6*time.Second)
	defer cancel()
	fee := h.Fees.AdminFee(ctx, code)
	writeData(w, http.StatusOK, map[string]any{"code": code, "admin_fee": fee})
}
