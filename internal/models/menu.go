package models

import "time"

// Category is one of the fixed menu sections
type Category string

const (
	CategorySnacks    Category = "Snacks"
	CategoryMeals     Category = "Meals"
	CategoryBeverages Category = "Beverages"
	CategoryDesserts  Category = "Desserts"

	// CategoryAll is the filter value that matches every item
	CategoryAll Category = "All"
)

// Categories lists the real menu sections in display order
var Categories = []Category{CategorySnacks, CategoryMeals, CategoryBeverages, CategoryDesserts}

// Valid reports whether c is a real menu section
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MenuItem represents a dish on the menu. Price is in the smallest currency unit.
type MenuItem struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       int64      `json:"price" db:"price"`
	Category    Category   `json:"category" db:"category"`
	Image       string     `json:"image" db:"image"`
	Available   bool       `json:"available" db:"available"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}
