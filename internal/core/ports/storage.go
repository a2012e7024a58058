package ports

import (
	"context"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Методы Get* возвращают (nil, nil), если запись не найдена.
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateUserProfile перезаписывает username и email; domain.ErrNotFound, если пользователя нет
	UpdateUserProfile(ctx context.Context, id uuid.UUID, username, email string) error
}

// ProductStorage определяет методы для работы с каталогом товаров
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// ListProducts возвращает только доступные товары, новые первыми
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	// ListProductsBySeller возвращает все товары продавца, включая снятые с продажи
	ListProductsBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CartStorage определяет методы для корзины и истории покупок
type CartStorage interface {
	// AddToCart атомарно добавляет строку или увеличивает количество на 1
	AddToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error)
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error
	ListCart(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	// Checkout переносит корзину в покупки одной транзакцией.
	// domain.ErrEmptyCart, если корзина пуста.
	Checkout(ctx context.Context, userID uuid.UUID, opts domain.CheckoutOptions) (*domain.CheckoutResult, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseItem, error)
}

// FileStorage определяет интерфейс для работы с объектным хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает объект и возвращает его URL
	UploadFile(ctx context.Context, key string, body []byte, contentType string) (string, error)
}
