package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/fitfuel/fitfuel/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := render.Decode(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			render.FieldError(w, http.StatusConflict, "email", "an account with this email already exists")
			return
		}
		writeServiceError(w, r, err, "failed to register")
		return
	}

	h.startSession(w, user, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := render.Decode(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			render.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeServiceError(w, r, err, "failed to log in")
		return
	}

	h.startSession(w, user, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *model.User, status int) {
	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate session token", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)
	render.JSON(w, status, sessionResponse{User: user, Token: token})
}
