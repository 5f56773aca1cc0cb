package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"candela/internal/domain"
)

// CatalogRepo reads products and variants. It stands in for the headless
// CMS the storefront fronts: the stock endpoints treat it as the source of
// raw quantities.
type CatalogRepo struct{ db *sqlx.DB }

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// Get returns one product with its variants in creation order.
func (r *CatalogRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, name, COALESCE(description,'') AS description, COALESCE(sku,'') AS sku,
	         price, currency, in_stock, COALESCE(images_json,'') AS images_json, active,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE id = ?
	`, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := r.db.Select(&p.Variants, `
	  SELECT id, product_id, type, value, sku, price, COALESCE(currency,'') AS currency, stock_quantity
	  FROM variants
	  WHERE product_id = ?
	  ORDER BY created_at, id
	`, id); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// List returns all active products with their variants.
func (r *CatalogRepo) List() ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.Select(&products, `
	  SELECT id, name, COALESCE(description,'') AS description, COALESCE(sku,'') AS sku,
	         price, currency, in_stock, COALESCE(images_json,'') AS images_json, active,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE active = 1
	  ORDER BY created_at, id
	`); err != nil {
		return nil, err
	}
	for i := range products {
		if err := r.db.Select(&products[i].Variants, `
		  SELECT id, product_id, type, value, sku, price, COALESCE(currency,'') AS currency, stock_quantity
		  FROM variants
		  WHERE product_id = ?
		  ORDER BY created_at, id
		`, products[i].ID); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// Variant returns one variant row. sql.ErrNoRows when it does not exist.
func (r *CatalogRepo) Variant(id string) (domain.Variant, error) {
	var v domain.Variant
	err := r.db.Get(&v, `
	  SELECT id, product_id, type, value, sku, price, COALESCE(currency,'') AS currency, stock_quantity
	  FROM variants
	  WHERE id = ?
	`, id)
	return v, err
}

// SetVariantStock writes the absolute quantity for a variant and returns
// the previous value (nil when it was unknown). sql.ErrNoRows when the
// variant does not exist.
func (r *CatalogRepo) SetVariantStock(variantID string, qty int) (*int, error) {
	var prev struct {
		Qty sql.NullInt64 `db:"stock_quantity"`
	}
	if err := r.db.Get(&prev, `SELECT stock_quantity FROM variants WHERE id = ?`, variantID); err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(`
	  UPDATE variants SET stock_quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, qty, variantID); err != nil {
		return nil, err
	}
	if !prev.Qty.Valid {
		return nil, nil
	}
	n := int(prev.Qty.Int64)
	return &n, nil
}
