package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
	"github.com/google/uuid"
)

// UserHandler обслуживает профиль, корзину и историю покупок.
// Все маршруты требуют аутентификации.
type UserHandler struct {
	auth   usecase.AuthUseCase
	cart   usecase.CartUseCase
	logger *slog.Logger
}

func NewUserHandler(auth usecase.AuthUseCase, cart usecase.CartUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: auth, cart: cart, logger: logger}
}

type profileResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type cartLineResponse struct {
	Message string           `json:"message"`
	Item    *domain.CartLine `json:"item"`
}

type checkoutResponse struct {
	Message string `json:"message"`
	*domain.CheckoutResult
}

// Profile - GET /users/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// UpdateProfile - PUT /users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, usecase.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, profileResponse{Message: "Profile updated successfully", User: user}, h.logger)
}

// Cart - GET /users/cart
func (h *UserHandler) Cart(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	cart, err := h.cart.Cart(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, cart, h.logger)
}

// AddToCart - POST /users/cart
func (h *UserHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	line, err := h.cart.AddToCart(r.Context(), userID, uuid.MustParse(req.ProductID))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, cartLineResponse{Message: "Item added to cart", Item: line}, h.logger)
}

// RemoveFromCart - DELETE /users/cart/{productId}
func (h *UserHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	productID, err := uuidParam(r, "productId")
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	if err := h.cart.RemoveFromCart(r.Context(), userID, productID); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithMessage(w, http.StatusOK, "Item removed from cart", h.logger)
}

// Checkout - POST /users/cart/purchase
func (h *UserHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	result, err := h.cart.Checkout(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, checkoutResponse{Message: "Purchase completed successfully", CheckoutResult: result}, h.logger)
}

// Purchases - GET /users/purchases
func (h *UserHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	items, err := h.cart.Purchases(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, items, h.logger)
}
