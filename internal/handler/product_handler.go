package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
)

// ProductHandler - обработчик HTTP-запросов каталога товаров.
type ProductHandler struct {
	products usecase.ProductUseCase
	logger   *slog.Logger
}

func NewProductHandler(products usecase.ProductUseCase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

type productResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

// ListProducts - GET /products?search=&category=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	products, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct - GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct - POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var in usecase.CreateProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), userID, in)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, productResponse{Message: "Product created successfully", Product: product}, h.logger)
}

// UpdateProduct - PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	var in usecase.UpdateProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), userID, id, in)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, productResponse{Message: "Product updated successfully", Product: product}, h.logger)
}

// DeleteProduct - DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	if err := h.products.DeleteProduct(r.Context(), userID, id); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithMessage(w, http.StatusOK, "Product deleted successfully", h.logger)
}

// ListBySeller - GET /products/seller/{sellerId}
func (h *ProductHandler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID, err := uuidParam(r, "sellerId")
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	products, err := h.products.ListBySeller(r.Context(), sellerID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, products, h.logger)
}

// ListCategories - GET /categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.products.Categories(), h.logger)
}
