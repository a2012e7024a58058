package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store - потокобезопасное хранилище в памяти. Реализует ports.UserStorage,
// ports.ProductStorage и ports.CartStorage с теми же ограничениями, что и схема
// PostgreSQL: уникальные email/username, каскадное удаление строк корзины,
// запрет удаления товара с историей покупок. Используется в тестах и при
// STORAGE_DRIVER=memory.
type Store struct {
	mu        sync.RWMutex
	seq       int64
	users     map[uuid.UUID]domain.User
	products  map[uuid.UUID]productRecord
	cart      map[cartKey]cartRecord
	purchases []purchaseRecord
}

type productRecord struct {
	domain.Product
	seq int64
}

type cartKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type cartRecord struct {
	domain.CartLine
	seq int64
}

type purchaseRecord struct {
	domain.Purchase
	seq int64
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]domain.User),
		products: make(map[uuid.UUID]productRecord),
		cart:     make(map[cartKey]cartRecord),
	}
}

func (s *Store) nextSeqLocked() int64 {
	s.seq++
	return s.seq
}

// PingContext всегда успешен
func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// Пользователи ---------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUserUniqueLocked(uuid.Nil, user.Username, user.Email); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUserProfile(_ context.Context, id uuid.UUID, username, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.NewNotFoundError("user not found")
	}
	if err := s.checkUserUniqueLocked(id, username, email); err != nil {
		return err
	}

	user.Username = username
	user.Email = email
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return nil
}

func (s *Store) checkUserUniqueLocked(self uuid.UUID, username, email string) error {
	for id, other := range s.users {
		if id == self {
			continue
		}
		if other.Email == email {
			return domain.NewConflictError("email is already registered")
		}
		if other.Username == username {
			return domain.NewConflictError("username is already taken")
		}
	}
	return nil
}

// Товары ---------------------------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[product.SellerID]; !ok {
		return domain.NewValidationError("referenced user does not exist")
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	s.products[product.ID] = productRecord{Product: *product, seq: s.nextSeqLocked()}
	return nil
}

func (s *Store) GetProductByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	p := rec.Product
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.listProducts(func(p domain.Product) bool {
		if !p.IsAvailable {
			return false
		}
		if filter.Search != "" &&
			!strings.Contains(p.Title, filter.Search) &&
			!strings.Contains(p.Description, filter.Search) {
			return false
		}
		return filter.Category == "" || p.Category == filter.Category
	}), nil
}

func (s *Store) ListProductsBySeller(_ context.Context, sellerID uuid.UUID) ([]domain.Product, error) {
	return s.listProducts(func(p domain.Product) bool {
		return p.SellerID == sellerID
	}), nil
}

func (s *Store) listProducts(match func(domain.Product) bool) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]productRecord, 0, len(s.products))
	for _, rec := range s.products {
		if match(rec.Product) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	products := make([]domain.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, rec.Product)
	}
	return products
}

func (s *Store) UpdateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.products[product.ID]
	if !ok {
		return domain.NewNotFoundError("product not found")
	}

	product.SellerID = rec.SellerID
	product.CreatedAt = rec.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	rec.Product = *product
	s.products[product.ID] = rec
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.NewNotFoundError("product not found")
	}
	for _, p := range s.purchases {
		if p.ProductID == id {
			return domain.NewConflictError("product has purchase history and cannot be deleted")
		}
	}

	delete(s.products, id)
	for key := range s.cart {
		if key.productID == id {
			delete(s.cart, key)
		}
	}
	return nil
}

// Корзина и покупки ----------------------------------------------------------

func (s *Store) AddToCart(_ context.Context, userID, productID uuid.UUID) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, domain.NewValidationError("referenced user does not exist")
	}
	if _, ok := s.products[productID]; !ok {
		return nil, domain.NewNotFoundError("product not found")
	}

	key := cartKey{userID: userID, productID: productID}
	rec, ok := s.cart[key]
	if ok {
		rec.Quantity++
	} else {
		rec = cartRecord{
			CartLine: domain.CartLine{
				ID:        uuid.New(),
				UserID:    userID,
				ProductID: productID,
				Quantity:  1,
				CreatedAt: time.Now().UTC(),
			},
			seq: s.nextSeqLocked(),
		}
	}
	s.cart[key] = rec

	line := rec.CartLine
	return &line, nil
}

func (s *Store) RemoveFromCart(_ context.Context, userID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cartKey{userID: userID, productID: productID}
	if _, ok := s.cart[key]; !ok {
		return domain.NewNotFoundError("item not found in cart")
	}
	delete(s.cart, key)
	return nil
}

func (s *Store) ListCart(_ context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.cartLinesLocked(userID)
	items := make([]domain.CartItem, 0, len(lines))
	for _, rec := range lines {
		p := s.products[rec.ProductID].Product
		items = append(items, domain.CartItem{
			CartLine:    rec.CartLine,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Category:    p.Category,
			IsAvailable: p.IsAvailable,
		})
	}
	return items, nil
}

// cartLinesLocked возвращает строки корзины в порядке добавления
func (s *Store) cartLinesLocked(userID uuid.UUID) []cartRecord {
	lines := make([]cartRecord, 0)
	for key, rec := range s.cart {
		if key.userID == userID {
			lines = append(lines, rec)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].seq < lines[j].seq })
	return lines
}

// Checkout выполняется целиком под блокировкой записи: при ошибке
// хранилище остается без изменений.
func (s *Store) Checkout(_ context.Context, userID uuid.UUID, opts domain.CheckoutOptions) (*domain.CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cartLinesLocked(userID)
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	purchasedAt := opts.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now().UTC()
	}

	result := &domain.CheckoutResult{
		ReceiptID: opts.ReceiptID,
		Items:     make([]domain.Purchase, 0, len(lines)),
		Total:     decimal.Zero,
	}
	for _, rec := range lines {
		p := s.products[rec.ProductID].Product
		if opts.MarkSold && !p.IsAvailable {
			return nil, domain.NewConflictError("product " + p.ID.String() + " is no longer available")
		}
		total := domain.LineTotal(p.Price, rec.Quantity)
		result.Items = append(result.Items, domain.Purchase{
			ID:           uuid.New(),
			ReceiptID:    opts.ReceiptID,
			UserID:       userID,
			ProductID:    p.ID,
			Quantity:     rec.Quantity,
			UnitPrice:    p.Price,
			TotalPrice:   total,
			PurchaseDate: purchasedAt,
		})
		result.Total = result.Total.Add(total)
	}

	for _, purchase := range result.Items {
		s.purchases = append(s.purchases, purchaseRecord{Purchase: purchase, seq: s.nextSeqLocked()})
		if opts.MarkSold {
			prod := s.products[purchase.ProductID]
			prod.IsAvailable = false
			prod.UpdatedAt = purchasedAt
			s.products[purchase.ProductID] = prod
		}
	}
	for _, rec := range lines {
		delete(s.cart, cartKey{userID: userID, productID: rec.ProductID})
	}
	return result, nil
}

func (s *Store) ListPurchases(_ context.Context, userID uuid.UUID) ([]domain.PurchaseItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]purchaseRecord, 0)
	for _, rec := range s.purchases {
		if rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].PurchaseDate.Equal(recs[j].PurchaseDate) {
			return recs[i].PurchaseDate.After(recs[j].PurchaseDate)
		}
		return recs[i].seq > recs[j].seq
	})

	items := make([]domain.PurchaseItem, 0, len(recs))
	for _, rec := range recs {
		p := s.products[rec.ProductID].Product
		items = append(items, domain.PurchaseItem{
			Purchase:    rec.Purchase,
			Title:       p.Title,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Category:    p.Category,
		})
	}
	return items, nil
}
