package handler

import (
	"net/http"
	"time"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/user"
)

// AuthHandler はユーザー登録とログインのエンドポイントです。
type AuthHandler struct {
	users user.UseCase
}

// NewAuthHandler は AuthHandler を生成します。
func NewAuthHandler(users user.UseCase) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Role     *string `json:"role"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

// Register は POST /register を処理します。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	in := user.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}
	if req.Role != nil {
		role, err := user.ParseRole(*req.Role)
		if err != nil {
			respondError(w, err)
			return
		}
		in.Role = &role
	}

	created, err := h.users.Register(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login は POST /login を処理します。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.users.Login(r.Context(), user.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token.Key})
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
}
