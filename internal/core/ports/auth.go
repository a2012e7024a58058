package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Authenticator превращает bearer-токен в идентификатор пользователя.
// Реализации выбираются при сборке приложения: JWT или фиксированная личность.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// TokenIssuer выпускает подписанные токены для пользователя
type TokenIssuer interface {
	Issue(userID uuid.UUID) (token string, expiresAt time.Time, err error)
}

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
