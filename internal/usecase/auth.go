package usecase

import (
	"context"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
)

// RegisterInput - данные для регистрации
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateProfileInput - новые значения профиля; пустое поле оставляет текущее значение
type UpdateProfileInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResult возвращается после регистрации и входа
type AuthResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AuthUseCase определяет бизнес-логику учетных записей
type AuthUseCase interface {
	// Register создает пользователя и сразу выдает токен.
	// ConflictError, если email или username заняты.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login проверяет пароль. Для неизвестного email и неверного пароля
	// возвращается одна и та же ошибка domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Profile возвращает публичные данные пользователя
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile меняет username и/или email
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*domain.User, error)
}
