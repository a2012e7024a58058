package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// UserStorage реализует интерфейс ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя. Нарушение уникальности email/username
// возвращается как ConflictError.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :username, :email, :password_hash, :created_at, :updated_at)
	`, user)
	if err != nil {
		s.logger.Error("failed to insert user", "email", user.Email, "error", err)
		return mapError("insert user", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByID возвращает пользователя или (nil, nil), если его нет
func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail возвращает пользователя или (nil, nil), если его нет
func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *UserStorage) getUser(ctx context.Context, op, query string, arg interface{}) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("user not found", "op", op)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to select user", "op", op, "error", err)
		return nil, mapError(op, err)
	}

	s.logger.Debug("user found",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// UpdateUserProfile перезаписывает username и email пользователя
func (s *UserStorage) UpdateUserProfile(ctx context.Context, id uuid.UUID, username, email string) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = $1, email = $2, updated_at = $3
		WHERE id = $4
	`, username, email, time.Now().UTC(), id)
	if err != nil {
		s.logger.Error("failed to update user profile", "user_id", id, "error", err)
		return mapError("update user profile", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("update user profile", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("user not found")
	}

	s.logger.Info("user profile updated",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
