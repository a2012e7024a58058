package handler

// loginRequest - тело POST /auth/login
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// registerRequest - тело POST /auth/register
type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// addToCartRequest - тело POST /users/cart
type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// updateProfileRequest - тело PUT /users/profile
type updateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,max=50"`
	Email    string `json:"email" validate:"omitempty,max=255"`
}
