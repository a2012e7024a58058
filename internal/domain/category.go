package domain

// Category описывает раздел каталога
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories перечисляет разделы, которые знает мобильный клиент
var Categories = []Category{
	{ID: "electronics", Name: "Electronics"},
	{ID: "clothing", Name: "Clothing"},
	{ID: "furniture", Name: "Furniture"},
	{ID: "books", Name: "Books"},
	{ID: "sports", Name: "Sports & Fitness"},
	{ID: "toys", Name: "Toys & Games"},
	{ID: "beauty", Name: "Beauty & Health"},
	{ID: "automotive", Name: "Automotive"},
	{ID: "home", Name: "Home & Garden"},
	{ID: "other", Name: "Other"},
}

// Conditions перечисляет допустимые значения состояния товара
var Conditions = []string{"new", "like_new", "excellent", "good", "fair", "poor"}

func IsKnownCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func IsKnownCondition(condition string) bool {
	for _, c := range Conditions {
		if c == condition {
			return true
		}
	}
	return false
}
