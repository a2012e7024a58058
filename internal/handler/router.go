package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/metrics"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig - все, что нужно для сборки HTTP-маршрутов
type RouterConfig struct {
	Auth          usecase.AuthUseCase
	Products      usecase.ProductUseCase
	Cart          usecase.CartUseCase
	Authenticator ports.Authenticator
	DB            Pinger
	Logger        *slog.Logger

	RequestTimeout time.Duration
	AllowedOrigins []string
	AuthRateLimit  float64 // запросов в секунду на IP для /auth/*
	AuthRateBurst  int
	// TrustProxyHeaders включает middleware.RealIP; без доверенного прокси
	// клиент подменил бы свой адрес заголовком X-Forwarded-For
	TrustProxyHeaders bool
}

// NewRouter собирает chi-роутер со всеми маршрутами API
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	userHandler := NewUserHandler(cfg.Auth, cfg.Cart, cfg.Logger)
	requireAuth := Authenticate(cfg.Authenticator, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(CORS(cfg.AllowedOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", Health(cfg.DB, cfg.Logger))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/categories", productHandler.ListCategories)

	r.Route("/auth", func(r chi.Router) {
		if cfg.AuthRateLimit > 0 {
			r.Use(NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, cfg.Logger).Handler)
		}
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandler.ListProducts)
		r.Get("/seller/{sellerId}", productHandler.ListBySeller)
		r.Get("/{id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/profile", userHandler.Profile)
		r.Put("/profile", userHandler.UpdateProfile)
		r.Get("/cart", userHandler.Cart)
		r.Post("/cart", userHandler.AddToCart)
		r.Delete("/cart/{productId}", userHandler.RemoveFromCart)
		r.Post("/cart/purchase", userHandler.Checkout)
		r.Get("/purchases", userHandler.Purchases)
	})

	return r
}
