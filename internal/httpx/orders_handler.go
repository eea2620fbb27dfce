package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/checkout"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/redisx"
)

// Cache: subset redis yang dipakai handler; nil berarti tanpa cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type OrdersHandler struct {
	Service *checkout.Service
	Repo    *orders.Repo
	Cache   Cache
	Issuer  *auth.Issuer
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Issuer))
		r.With(RequireRole(auth.RoleBuyer, auth.RoleSeller)).Post("/api/orders", h.create)
		r.Get("/api/orders/my", h.mine)
		r.Get("/api/orders/{id}/status", h.status)
	})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	// inisiasi payment ikut di dalam; beri napas lebih dari timeout provider
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// idempotency: key dari client, di-scope per user; submit kedua
	// dengan key sama ditolak sebelum menyentuh pipeline
	var idemKey string
	if h.Cache != nil {
		if k := r.Header.Get("x-idempotency-key"); k != "" {
			idemKey = fmt.Sprintf(redisx.KeyIdemCheckout, ident.UserID, k)
			if dup, err := h.Cache.Exists(ctx, idemKey); err == nil && dup {
				writeErr(w, http.StatusConflict, "checkout dengan idempotency key ini sudah diproses")
				return
			}
		}
	}

	res, err := h.Service.Checkout(ctx, ident, req)
	if err != nil {
		writeErr(w, checkoutStatus(err), err.Error())
		return
	}

	if h.Cache != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, res.OrderID)
		_ = h.Cache.Set(ctx, statusKey, string(res.Status), redisx.TTLStatusCache)
		if idemKey != "" {
			_ = h.Cache.Set(ctx, idemKey, res.OrderID, redisx.TTLIdempotency)
		}
	}

	// 201 juga utk partial success (order ada, payment belum jalan);
	// res.Success yang membedakan.
	writeJSON(w, http.StatusCreated, map[string]any{"success": res.Success, "data": res})
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrMissingPhone),
		errors.Is(err, checkout.ErrEmptyCheckout),
		errors.Is(err, checkout.ErrSelfPurchase),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInsufficientStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *OrdersHandler) mine(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	views, err := h.Repo.ListByBuyer(ctx, ident.UserID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, views)
}

// status: cache dulu, fallback DB (DB tetap jadi kebenaran).
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Cache != nil {
		if s, err := h.Cache.Get(ctx, key); err == nil && s != "" {
			writeData(w, http.StatusOK, map[string]string{"order_id": orderID, "status": s})
			return
		}
	}

	ord, err := h.Repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "order tidak ditemukan")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.Cache != nil {
		_ = h.Cache.Set(ctx, key, string(ord.Status), redisx.TTLStatusCache)
	}
	writeData(w, http.StatusOK, map[string]string{"order_id": ord.ID, "status": string(ord.Status)})
}
