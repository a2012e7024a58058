package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenGetProduct(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	ctx := context.Background()

	created := f.listProduct(t, seller.ID, "Ceramic Plant Pot", "18.75")
	assert.Equal(t, domain.DefaultCondition, created.Condition)
	assert.True(t, created.IsAvailable)

	got, err := f.products.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, seller.ID, got.SellerID)
	assert.True(t, decimal.RequireFromString("18.75").Equal(got.Price))
}

func TestCreateProductRejectsForeignSeller(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	other := uuid.New()

	_, err := f.products.CreateProduct(context.Background(), seller.ID, CreateProductInput{
		Title:       "Lamp",
		Description: "Desk lamp",
		Category:    "home",
		Price:       decimal.NewFromInt(10),
		SellerID:    &other,
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")

	valid := CreateProductInput{
		Title:       "Lamp",
		Description: "Desk lamp",
		Category:    "home",
		Price:       decimal.NewFromInt(10),
	}

	cases := map[string]func(in *CreateProductInput){
		"missing title":     func(in *CreateProductInput) { in.Title = " " },
		"missing category":  func(in *CreateProductInput) { in.Category = "" },
		"unknown category":  func(in *CreateProductInput) { in.Category = "spaceships" },
		"unknown condition": func(in *CreateProductInput) { in.Condition = "mint" },
		"zero price":        func(in *CreateProductInput) { in.Price = decimal.Zero },
		"negative price":    func(in *CreateProductInput) { in.Price = decimal.NewFromInt(-5) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := f.products.CreateProduct(context.Background(), seller.ID, in)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestUpdateProductPartialFields(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	p := f.listProduct(t, seller.ID, "Lamp", "10.00")

	price := decimal.RequireFromString("12.50")
	unavailable := false
	updated, err := f.products.UpdateProduct(context.Background(), seller.ID, p.ID, UpdateProductInput{
		Price:       &price,
		IsAvailable: &unavailable,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", updated.Title)
	assert.Equal(t, "12.50", updated.Price.StringFixed(2))
	assert.False(t, updated.IsAvailable)

	listed, err := f.products.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUpdateProductRequiresOwnership(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	buyer := f.register(t, "green_buyer")
	p := f.listProduct(t, seller.ID, "Lamp", "10.00")

	title := "Stolen lamp"
	_, err := f.products.UpdateProduct(context.Background(), buyer.ID, p.ID, UpdateProductInput{Title: &title})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	err = f.products.DeleteProduct(context.Background(), buyer.ID, p.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestUpdateProductRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	p := f.listProduct(t, seller.ID, "Lamp", "10.00")

	category := "spaceships"
	_, err := f.products.UpdateProduct(context.Background(), seller.ID, p.ID, UpdateProductInput{Category: &category})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDeleteMissingProduct(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")

	err := f.products.DeleteProduct(context.Background(), seller.ID, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteProductWithPurchaseHistoryIsConflict(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	buyer := f.register(t, "green_buyer")
	p := f.listProduct(t, seller.ID, "Lamp", "10.00")
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, buyer.ID, p.ID)
	require.NoError(t, err)
	_, err = f.cart.Checkout(ctx, buyer.ID)
	require.NoError(t, err)

	err = f.products.DeleteProduct(ctx, seller.ID, p.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestListProductsFilters(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})
	seller := f.register(t, "eco_seller")
	ctx := context.Background()

	f.listProduct(t, seller.ID, "Vintage Lamp", "10.00")
	_, err := f.products.CreateProduct(ctx, seller.ID, CreateProductInput{
		Title:       "Vintage Jacket",
		Description: "Denim",
		Category:    "clothing",
		Price:       decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	byCategory, err := f.products.ListProducts(ctx, domain.ProductFilter{Category: "clothing"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Vintage Jacket", byCategory[0].Title)

	bySearch, err := f.products.ListProducts(ctx, domain.ProductFilter{Search: "Vintage"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	bySeller, err := f.products.ListBySeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, bySeller, 2)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	f := newFixture(t, CheckoutPolicy{})

	categories := f.products.Categories()
	require.Len(t, categories, len(domain.Categories))
	categories[0].Name = "changed"
	assert.NotEqual(t, "changed", domain.Categories[0].Name)
}

func TestMaxLineTotalFitsPurchaseColumn(t *testing.T) {
	// purchases.total_price - NUMERIC(22,2), то есть меньше 10^20
	limit := decimal.New(1, 20)
	total := domain.LineTotal(maxPrice, math.MaxInt32)
	assert.True(t, total.LessThan(limit), total.String())
}
