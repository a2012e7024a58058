package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Seeder наполняет бд демонстрационными пользователями и товарами с помощью GORM.
// Повторный запуск ничего не дублирует.
type Seeder struct {
	db     *gorm.DB
	hasher ports.PasswordHasher
	logger *slog.Logger
}

// SeedReport - сколько записей создано при запуске
type SeedReport struct {
	Users    int
	Products int
}

// NewSeeder оборачивает уже открытое соединение в GORM
func NewSeeder(sqlDB *sql.DB, hasher ports.PasswordHasher, logger *slog.Logger) (*Seeder, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации GORM: %w", err)
	}
	return &Seeder{db: db, hasher: hasher, logger: logger}, nil
}

// Seed создает недостающих пользователей и их товары в одной транзакции
func (s *Seeder) Seed(ctx context.Context) (SeedReport, error) {
	start := time.Now()
	var report SeedReport

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sellers := make(map[string]uuid.UUID, len(sampleUsers))

		for _, su := range sampleUsers {
			hash, err := s.hasher.Hash(su.Password)
			if err != nil {
				return fmt.Errorf("ошибка хеширования пароля для %s: %w", su.Email, err)
			}

			now := time.Now().UTC()
			user := domain.User{}
			res := tx.Where(domain.User{Email: su.Email}).
				Attrs(domain.User{
					ID:           uuid.New(),
					Username:     su.Username,
					PasswordHash: hash,
					CreatedAt:    now,
					UpdatedAt:    now,
				}).
				FirstOrCreate(&user)
			if res.Error != nil {
				return fmt.Errorf("ошибка создания пользователя %s: %w", su.Email, res.Error)
			}
			report.Users += int(res.RowsAffected)
			sellers[su.Email] = user.ID
		}

		for _, sp := range sampleProducts {
			sellerID, ok := sellers[sp.SellerEmail]
			if !ok {
				return fmt.Errorf("неизвестный продавец %s для товара %q", sp.SellerEmail, sp.Title)
			}

			now := time.Now().UTC()
			product := domain.Product{}
			res := tx.Where(domain.Product{Title: sp.Title, SellerID: sellerID}).
				Attrs(domain.Product{
					ID:          uuid.New(),
					Description: sp.Description,
					Category:    sp.Category,
					Price:       sp.Price,
					Condition:   sp.Condition,
					IsAvailable: true,
					CreatedAt:   now,
					UpdatedAt:   now,
				}).
				FirstOrCreate(&product)
			if res.Error != nil {
				return fmt.Errorf("ошибка создания товара %q: %w", sp.Title, res.Error)
			}
			report.Products += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("seeding failed", "error", err)
		return SeedReport{}, err
	}

	s.logger.Info("sample data seeded",
		"users_created", report.Users,
		"products_created", report.Products,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
