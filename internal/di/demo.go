package di

import (
	"context"
	"fmt"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
)

// ensureDemoUser создает пользователя DEMO_USER_ID, если его еще нет:
// без него фиксированная личность не может ни продавать, ни покупать.
func ensureDemoUser(ctx context.Context, users ports.UserStorage, hasher ports.PasswordHasher, id uuid.UUID) error {
	existing, err := users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	// пароль случайный: войти как демо-пользователь по паролю нельзя
	hash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return err
	}
	suffix := id.String()[:8]
	return users.CreateUser(ctx, &domain.User{
		ID:           id,
		Username:     "demo_" + suffix,
		Email:        fmt.Sprintf("demo+%s@ecofinds.local", suffix),
		PasswordHash: hash,
	})
}
