package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/validation"
	"github.com/google/uuid"
)

const maxPasswordBytes = 72

// authUseCase implements AuthUseCase
type authUseCase struct {
	users  ports.UserStorage
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	logger *slog.Logger

	// хеш для выравнивания времени ответа при неизвестном email
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase создает новый экземпляр AuthUseCase
func NewAuthUseCase(
	users ports.UserStorage,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *authUseCase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	// bcrypt ограничивает пароль 72 байтами, а не символами
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.NewValidationError("password must be at most 72 bytes long")
	}

	existing, err := uc.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка проверки email: %w", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("email is already registered")
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка хеширования пароля: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("usecase: ошибка создания пользователя: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	return uc.issue(user)
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка поиска пользователя: %w", err)
	}

	if user == nil {
		// сравнение с фиктивным хешем, чтобы время ответа не выдавало существование email
		_ = uc.hasher.Compare(uc.dummy(), password)
		uc.logger.Info("login rejected", "reason", "unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		uc.logger.Info("login rejected", "reason", "password mismatch", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	uc.logger.Info("user logged in", "user_id", user.ID)
	return uc.issue(user)
}

func (uc *authUseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		hash, err := uc.hasher.Hash("ecofinds-timing-equalizer")
		if err != nil {
			uc.logger.Error("failed to prepare dummy password hash", "error", err)
			return
		}
		uc.dummyHash = hash
	})
	return uc.dummyHash
}

func (uc *authUseCase) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка выпуска токена: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (uc *authUseCase) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения профиля: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found")
	}
	return user, nil
}

func (uc *authUseCase) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, domain.NewValidationError("username or email is required")
	}

	user, err := uc.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username != "" {
		if err := validation.Var("username", username, "min=3,max=50"); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if email != "" {
		if err := validation.Var("email", email, "email,max=255"); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := uc.users.UpdateUserProfile(ctx, userID, user.Username, user.Email); err != nil {
		return nil, fmt.Errorf("usecase: ошибка обновления профиля: %w", err)
	}

	uc.logger.Info("user profile updated", "user_id", userID)
	return user, nil
}
