package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/cart"
)

type CartHandler struct {
	Repo   *cart.Repo
	Issuer *auth.Issuer
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Issuer))
		r.Get("/api/cart", h.list)
		r.Post("/api/cart", h.add)
		r.Delete("/api/cart/{id}", h.remove)
	})
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "product_id dan quantity wajib diisi")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Repo.Add(ctx, ident.UserID, req.ProductID, req.Quantity); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "berhasil masuk keranjang"})
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	items, err := h.Repo.ListByUser(ctx, ident.UserID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Repo.Remove(ctx, ident.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "item tidak ditemukan")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "item dihapus"})
}
