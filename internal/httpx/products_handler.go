package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/catalog"
)

type ProductsHandler struct {
	Repo   *catalog.Repo
	Issuer *auth.Issuer
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.list)
	r.Get("/api/products/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Issuer))
		r.With(RequireRole(auth.RoleSeller, auth.RoleAdmin)).Post("/api/products", h.create)
		r.With(RequireRole(auth.RoleSeller)).Get("/api/seller/products", h.mine)
		r.With(RequireRole(auth.RoleSeller)).Put("/api/products/{id}", h.update)
		r.With(RequireRole(auth.RoleSeller)).Delete("/api/products/{id}", h.delete)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	ps, err := h.Repo.List(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	p, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "produk tidak ditemukan")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductsHandler) mine(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	ps, err := h.Repo.ListBySeller(ctx, ident.UserID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, ps)
}

type productReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Price <= 0 || req.Stock < 0 {
		writeErr(w, http.StatusBadRequest, "name, price, stock tidak valid")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	p := &catalog.Product{
		SellerID:    ident.UserID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := h.Repo.Create(ctx, p); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	p := &catalog.Product{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
	if err := h.Repo.Update(ctx, ident.UserID, p); err != nil {
		if errors.Is(err, catalog.ErrNotOwner) {
			writeErr(w, http.StatusNotFound, "produk tidak ditemukan atau bukan milik anda")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ident, _ := IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Repo.Delete(ctx, ident.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotOwner) {
			writeErr(w, http.StatusNotFound, "produk tidak ditemukan atau bukan milik anda")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "produk dihapus"})
}
