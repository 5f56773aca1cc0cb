package domain

import "candela/internal/stock"

// Image is a product or variant asset.
type Image struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Alt          string `json:"alt,omitempty"`
	IsPrimary    bool   `json:"isPrimary,omitempty"`
}

// Variant is a purchasable configuration of a product (a size or a scent
// profile) with its own SKU and stock count. StockQuantity nil means the
// level is unknown; availability treats that the same as zero.
type Variant struct {
	ID            string       `json:"id" db:"id"`
	ProductID     string       `json:"-" db:"product_id"`
	Type          string       `json:"type" db:"type"` // size | scent-profile
	Value         string       `json:"value" db:"value"`
	SKU           string       `json:"sku" db:"sku"`
	Price         *float64     `json:"price,omitempty" db:"price"`
	Currency      string       `json:"currency,omitempty" db:"currency"`
	StockQuantity *int         `json:"stockQuantity,omitempty" db:"stock_quantity"`
	StockStatus   stock.Status `json:"stockStatus,omitempty" db:"-"`
	IsAvailable   bool         `json:"isAvailable" db:"-"`
	Images        []Image      `json:"images,omitempty" db:"-"`
}

// Quantity returns the stock count with unknown mapped to zero.
func (v Variant) Quantity() int {
	if v.StockQuantity == nil {
		return 0
	}
	return *v.StockQuantity
}

// Product aggregates zero or more variants. InStock is the product-level
// fallback flag, consulted only when no variants exist; only an explicit
// false marks the product unavailable.
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	SKU         string    `json:"sku,omitempty" db:"sku"`
	Price       float64   `json:"price" db:"price"`
	Currency    string    `json:"currency" db:"currency"`
	InStock     *bool     `json:"inStock,omitempty" db:"in_stock"`
	ImagesJSON  string    `json:"-" db:"images_json"`
	Active      bool      `json:"-" db:"active"`
	CreatedAt   string    `json:"-" db:"created_at"`
	UpdatedAt   string    `json:"-" db:"updated_at"`
	Variants    []Variant `json:"variants,omitempty" db:"-"`
}

// HasVariants reports whether product availability is variant-driven.
func (p Product) HasVariants() bool { return len(p.Variants) > 0 }

// Availability is the wire shape of the stock status endpoint.
type Availability struct {
	Status stock.Status `json:"status"`
	Qty    int          `json:"qty"`
}
