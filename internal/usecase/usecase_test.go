package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/auth"
	"github.com/GoArmGo/EcoFinds/internal/database/memory"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *memory.Store
	tokens   *auth.TokenService
	auth     AuthUseCase
	products ProductUseCase
	cart     CartUseCase
	events   *recordingPublisher
}

func newFixture(t *testing.T, policy CheckoutPolicy) *fixture {
	t.Helper()
	store := memory.New()
	tokens, err := auth.NewTokenService("test-secret", "ecofinds", time.Hour)
	require.NoError(t, err)
	events := &recordingPublisher{}
	logger := discardLogger()

	return &fixture{
		store:    store,
		tokens:   tokens,
		auth:     NewAuthUseCase(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, logger),
		products: NewProductUseCase(store, logger),
		cart:     NewCartUseCase(store, store, events, policy, logger),
		events:   events,
	}
}

func (f *fixture) register(t *testing.T, username string) *domain.User {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@ecofinds.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return res.User
}

func (f *fixture) listProduct(t *testing.T, sellerID uuid.UUID, title, price string) *domain.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), sellerID, CreateProductInput{
		Title:       title,
		Description: title + " in great shape",
		Category:    "home",
		Price:       decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []payloads.CheckoutCompletedPayload
	err    error
}

func (p *recordingPublisher) PublishCheckoutCompleted(_ context.Context, payload payloads.CheckoutCompletedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, payload)
	return nil
}

type memoryFiles struct {
	objects map[string][]byte
	err     error
}

func (m *memoryFiles) UploadFile(_ context.Context, key string, body []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = body
	return "http://minio.local/receipts-bucket/" + key, nil
}

var errBoom = errors.New("boom")
