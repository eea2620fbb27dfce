package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/users"
)

type UserStore interface {
	Create(ctx context.Context, u *users.User) error
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type AuthHandler struct {
	Users  UserStore
	Issuer *auth.Issuer
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/auth/register", h.register)
	r.Post("/api/auth/login", h.login)
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	role := auth.Role(req.Role)
	if role != auth.RoleBuyer && role != auth.RoleSeller {
		writeErr(w, http.StatusBadRequest, "invalid role")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeErr(w, http.StatusBadRequest, "email, password, name wajib diisi")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u := &users.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         string(role),
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			writeErr(w, http.StatusBadRequest, "email sudah terdaftar")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeErr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	// phone ikut di claims; pipeline checkout membacanya dari token
	token, err := h.Issuer.Sign(auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Phone:  u.Phone,
		Role:   auth.Role(u.Role),
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"token": token, "user": u})
}
