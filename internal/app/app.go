package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/EcoFinds/internal/config"
	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/database/postgres"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
)

// Seeder заполняет базу демонстрационными данными
type Seeder interface {
	Seed(ctx context.Context) (postgres.SeedReport, error)
}

// App держит собранные зависимости для одного режима запуска.
// Поля, не нужные выбранному режиму, остаются nil.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	handler  http.Handler
	consumer ports.CheckoutEventConsumer
	receipts usecase.ReceiptUseCase
	seeder   Seeder

	closers []io.Closer
}

// Option настраивает App при сборке
type Option func(*App)

// WithHTTPHandler задает роутер для режима server
func WithHTTPHandler(h http.Handler) Option {
	return func(a *App) { a.handler = h }
}

// WithReceiptWorker задает потребителя очереди и сценарий архивации для режима worker
func WithReceiptWorker(consumer ports.CheckoutEventConsumer, receipts usecase.ReceiptUseCase) Option {
	return func(a *App) {
		a.consumer = consumer
		a.receipts = receipts
	}
}

// WithSeeder задает сидер для режима seed
func WithSeeder(s Seeder) Option {
	return func(a *App) { a.seeder = s }
}

// WithCloser регистрирует ресурс, закрываемый при завершении (в обратном порядке)
func WithCloser(c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, c)
		}
	}
}

func NewApp(cfg *config.Config, logger *slog.Logger, opts ...Option) *App {
	a := &App{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Logger возвращает основной логгер приложения
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run запускает выбранный режим и блокируется до его завершения или сигнала SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case config.ModeServer:
		if a.handler == nil {
			err = errors.New("server mode requires an HTTP handler")
			break
		}
		err = runServer(ctx, ":"+a.cfg.ServerPort, a.handler, a.cfg.RequestTimeout, a.logger)

	case config.ModeWorker:
		if a.consumer == nil || a.receipts == nil {
			err = errors.New("worker mode requires a consumer and a receipt use case")
			break
		}
		err = runWorker(ctx, a.consumer, a.receipts, a.logger)

	case config.ModeSeed:
		if a.seeder == nil {
			err = errors.New("seed mode requires a seeder")
			break
		}
		err = runSeed(ctx, a.seeder, a.logger)

	default:
		err = fmt.Errorf("unknown mode: %s (use server, worker or seed)", mode)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}

	if err != nil {
		return err
	}
	a.logger.Info("stopped gracefully", "mode", mode)
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
