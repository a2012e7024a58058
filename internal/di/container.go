package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/EcoFinds/internal/adapter/storage/minio"
	"github.com/GoArmGo/EcoFinds/internal/app"
	"github.com/GoArmGo/EcoFinds/internal/auth"
	"github.com/GoArmGo/EcoFinds/internal/config"
	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/database/client"
	"github.com/GoArmGo/EcoFinds/internal/database/memory"
	"github.com/GoArmGo/EcoFinds/internal/database/postgres"
	"github.com/GoArmGo/EcoFinds/internal/database/storage"
	"github.com/GoArmGo/EcoFinds/internal/handler"
	"github.com/GoArmGo/EcoFinds/internal/logger"
	"github.com/GoArmGo/EcoFinds/internal/rabbitmq"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
	"github.com/google/uuid"
)

// Stores - реализации портов хранения для выбранного драйвера
type Stores struct {
	Users    ports.UserStorage
	Products ports.ProductStorage
	Cart     ports.CartStorage
	Pinger   handler.Pinger
	DB       *client.Client // nil для memory
}

// BuildApp инициализирует все зависимости режима mode и возвращает готовый объект App.
func BuildApp(ctx context.Context, mode string) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(mode); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// 2. Логгер
	slogger := logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat, "mode", mode)

	var (
		opts    []app.Option
		closers []io.Closer
	)
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	switch mode {
	case config.ModeServer:
		// 3. Хранилища
		st, err := BuildStores(ctx, cfg, slogger)
		if err != nil {
			return fail(err)
		}
		if st.DB != nil {
			closers = append(closers, st.DB)
		}

		// 4. RabbitMQ: в режиме сервера необязателен, без него чеки не архивируются
		var publisher ports.CheckoutEventPublisher
		if cfg.RabbitMQ.RabbitMQURL != "" {
			rabbit, err := rabbitmq.NewClient(cfg, slogger)
			if err != nil {
				slogger.Warn("RabbitMQ unavailable, checkout events disabled", "error", err)
			} else {
				publisher = rabbit
				closers = append(closers, rabbit)
			}
		}

		// 5. Бизнес-логика и маршруты
		router, err := BuildRouter(ctx, cfg, st, publisher, slogger)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, app.WithHTTPHandler(router))

	case config.ModeWorker:
		rabbit, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rabbit)

		fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, app.WithReceiptWorker(rabbit, usecase.NewReceiptUseCase(fileStorage, slogger)))

	case config.ModeSeed:
		st, err := BuildStores(ctx, cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, st.DB)

		seeder, err := postgres.NewSeeder(st.DB.DB.DB, auth.NewBcryptHasher(cfg.Auth.BcryptCost), slogger)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, app.WithSeeder(seeder))
	}

	for _, c := range closers {
		opts = append(opts, app.WithCloser(c))
	}

	slogger.Info("all dependencies initialized", "mode", mode, "storage", cfg.StorageDriver)
	return app.NewApp(cfg, slogger, opts...), nil
}

// BuildStores открывает хранилище по STORAGE_DRIVER; для postgres сначала применяет миграции
func BuildStores(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*Stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		slogger.Warn("using in-memory storage, data is lost on restart")
		store := memory.New()
		return &Stores{Users: store, Products: store, Cart: store, Pinger: store}, nil
	}

	if err := client.Migrate(cfg.DatabaseURL, slogger); err != nil {
		return nil, err
	}
	dbClient, err := client.NewClient(ctx, cfg.DatabaseURL, slogger)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Users:    storage.NewUserStorage(dbClient.DB, slogger),
		Products: storage.NewProductStorage(dbClient.DB, slogger),
		Cart:     storage.NewCartStorage(dbClient.DB, slogger),
		Pinger:   dbClient,
		DB:       dbClient,
	}, nil
}

// BuildRouter собирает сценарии и HTTP-маршруты поверх хранилищ.
// publisher может быть nil.
func BuildRouter(ctx context.Context, cfg *config.Config, st *Stores, publisher ports.CheckoutEventPublisher, slogger *slog.Logger) (http.Handler, error) {
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// в режиме fixed токены выдаются при входе, но не проверяются
		secret = uuid.NewString()
	}
	tokens, err := auth.NewTokenService(secret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	var authenticator ports.Authenticator = tokens
	if cfg.Auth.Mode == config.AuthModeFixed {
		demoID, err := cfg.DemoUserID()
		if err != nil {
			return nil, err
		}
		if err := ensureDemoUser(ctx, st.Users, hasher, demoID); err != nil {
			slogger.Warn("failed to provision demo user", "user_id", demoID, "error", err)
		}
		authenticator = auth.FixedIdentity{UserID: demoID}
		slogger.Warn("fixed identity authentication enabled, bearer tokens are not checked", "user_id", demoID)
	}

	return handler.NewRouter(handler.RouterConfig{
		Auth:     usecase.NewAuthUseCase(st.Users, hasher, tokens, slogger),
		Products: usecase.NewProductUseCase(st.Products, slogger),
		Cart: usecase.NewCartUseCase(st.Products, st.Cart, publisher,
			usecase.CheckoutPolicy{MarkSold: cfg.MarkSoldOnCheckout}, slogger),
		Authenticator:  authenticator,
		DB:             st.Pinger,
		Logger:         slogger,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:  cfg.Auth.RatePerSec,
		AuthRateBurst:  cfg.Auth.RateBurst,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}), nil
}
