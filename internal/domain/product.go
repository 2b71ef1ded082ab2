package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantStatus is the stock status reported for a variant
type VariantStatus string

const (
	StatusInStock    VariantStatus = "IN_STOCK"
	StatusOutOfStock VariantStatus = "OUT_OF_STOCK"
)

// Valid reports whether s is a known status
func (s VariantStatus) Valid() bool {
	return s == StatusInStock || s == StatusOutOfStock
}

// Product represents a product in the catalog together with its variants
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Variant represents one purchasable SKU of a product.
// An empty facet (size, color, measurement, age range) means the facet is
// not defined for this variant.
type Variant struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	Size        string          `json:"size,omitempty" db:"size"`
	Color       string          `json:"color,omitempty" db:"color"`
	Measurement string          `json:"measurement,omitempty" db:"measurement"`
	AgeRange    string          `json:"age_range,omitempty" db:"age_range"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Inventory   int             `json:"inventory" db:"inventory"`
	Status      VariantStatus   `json:"status" db:"status"`
}

// Purchasable reports whether the variant can be added to a cart
func (v Variant) Purchasable() bool {
	return v.Status == StatusInStock && v.Inventory > 0
}
