package postgres

import "github.com/shopspring/decimal"

type sampleUser struct {
	Username string
	Email    string
	Password string
}

type sampleProduct struct {
	Title       string
	Description string
	Category    string
	Condition   string
	Price       decimal.Decimal
	SellerEmail string
}

const samplePassword = "password123"

var sampleUsers = []sampleUser{
	{Username: "eco_seller", Email: "seller@ecofinds.com", Password: samplePassword},
	{Username: "green_buyer", Email: "buyer@ecofinds.com", Password: samplePassword},
}

var sampleProducts = []sampleProduct{
	{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim jacket in excellent condition. Perfect for sustainable fashion!",
		Category:    "clothing",
		Condition:   "excellent",
		Price:       decimal.RequireFromString("25.99"),
		SellerEmail: "seller@ecofinds.com",
	},
	{
		Title:       "Wooden Coffee Table",
		Description: "Beautiful reclaimed wood coffee table. Eco-friendly and stylish!",
		Category:    "furniture",
		Condition:   "good",
		Price:       decimal.RequireFromString("89.99"),
		SellerEmail: "seller@ecofinds.com",
	},
	{
		Title:       "Organic Cotton T-Shirt",
		Description: "Soft organic cotton t-shirt. Never worn, still has tags!",
		Category:    "clothing",
		Condition:   "new",
		Price:       decimal.RequireFromString("12.50"),
		SellerEmail: "seller@ecofinds.com",
	},
	{
		Title:       "Bamboo Phone Case",
		Description: "Sustainable bamboo phone case for iPhone. Biodegradable and stylish!",
		Category:    "electronics",
		Condition:   "excellent",
		Price:       decimal.RequireFromString("15.99"),
		SellerEmail: "seller@ecofinds.com",
	},
	{
		Title:       "Ceramic Plant Pot",
		Description: "Handmade ceramic pot perfect for your indoor plants. Made locally!",
		Category:    "home",
		Condition:   "good",
		Price:       decimal.RequireFromString("18.75"),
		SellerEmail: "seller@ecofinds.com",
	},
	{
		Title:       "Vintage Books Collection",
		Description: "Collection of classic literature books. Great for book lovers!",
		Category:    "books",
		Condition:   "good",
		Price:       decimal.RequireFromString("35.00"),
		SellerEmail: "seller@ecofinds.com",
	},
}
