package auth

import (
	"context"

	"github.com/google/uuid"
)

// FixedIdentity - реализация ports.Authenticator, которая всегда возвращает
// одного и того же пользователя. Для демо-режима и тестов.
type FixedIdentity struct {
	UserID uuid.UUID
}

func (f FixedIdentity) Authenticate(_ context.Context, _ string) (uuid.UUID, error) {
	return f.UserID, nil
}
