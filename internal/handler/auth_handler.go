package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/EcoFinds/internal/usecase"
)

// AuthHandler обслуживает регистрацию и вход
type AuthHandler struct {
	auth   usecase.AuthUseCase
	logger *slog.Logger
}

func NewAuthHandler(auth usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type authResponse struct {
	Message string `json:"message"`
	*usecase.AuthResult
}

// Register - POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	res, err := h.auth.Register(r.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, authResponse{Message: "User created successfully", AuthResult: res}, h.logger)
}

// Login - POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse{Message: "Login successful", AuthResult: res}, h.logger)
}
