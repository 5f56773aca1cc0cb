package cart

import (
	"fmt"
	"sync"

	"candela/internal/domain"
	"candela/internal/stock"
)

// Item is one cart line. Identity is (product id, variant id or absence):
// the same product with two different variants occupies two lines, and a
// product added without a variant is a line of its own.
type Item struct {
	Product  domain.Product  `json:"product"`
	Variant  *domain.Variant `json:"variant,omitempty"`
	Quantity int             `json:"quantity"`
}

// Result is the structured outcome of a cart mutation. Failures carry a
// human-readable message; nothing past this boundary panics or throws.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Cart holds a session's line items and enforces stock admission on every
// mutation. Stock is checked at mutation time only, never re-validated
// afterwards.
type Cart struct {
	mu      sync.Mutex
	items   []Item
	lastErr string
}

func New() *Cart { return &Cart{} }

// AddOptions selects the variant and quantity for Add. Quantity defaults
// to 1 when zero or negative.
type AddOptions struct {
	Variant  *domain.Variant
	Quantity int
}

func checkVariantStock(v *domain.Variant, requested int) bool {
	if v.StockQuantity == nil || *v.StockQuantity <= 0 {
		return false
	}
	return *v.StockQuantity >= requested
}

func checkProductStock(p domain.Product, v *domain.Variant, requested int) bool {
	if v != nil {
		return checkVariantStock(v, requested)
	}
	// No variant chosen: any variant that can satisfy the quantity admits
	// the add.
	if p.HasVariants() {
		for i := range p.Variants {
			if checkVariantStock(&p.Variants[i], requested) {
				return true
			}
		}
		return false
	}
	// Product-level fallback: only an explicit false blocks the add.
	return p.InStock == nil || *p.InStock
}

func stockErrorMessage(p domain.Product, v *domain.Variant) string {
	if v != nil {
		if stock.Calculate(v.StockQuantity, stock.DefaultThreshold) == stock.OutOfStock {
			return fmt.Sprintf("variant %q of %s is out of stock", v.Value, p.Name)
		}
		if v.StockQuantity != nil {
			return fmt.Sprintf("only %d units available for variant %q of %s", *v.StockQuantity, v.Value, p.Name)
		}
	}
	return fmt.Sprintf("%s is not available", p.Name)
}

func variantID(v *domain.Variant) string {
	if v == nil {
		return ""
	}
	return v.ID
}

// find returns the index of the line matching the identity key, or -1.
// A requested variant never matches a variantless line and vice versa.
func (c *Cart) find(productID, variantID string) int {
	for i, it := range c.items {
		if it.Product.ID != productID {
			continue
		}
		if variantID != "" && it.Variant != nil {
			if it.Variant.ID == variantID {
				return i
			}
			continue
		}
		if variantID == "" && it.Variant == nil {
			return i
		}
	}
	return -1
}

func (c *Cart) fail(msg string) Result {
	c.lastErr = msg
	return Result{Success: false, Error: msg}
}

// Add admits the product (and optional variant) into the cart. If a line
// with the same identity already exists the quantities are combined, and
// the combined total is re-checked against the variant's stock; on
// rejection the existing line keeps its prior quantity.
func (c *Cart) Add(p domain.Product, opts AddOptions) Result {
	qty := opts.Quantity
	if qty <= 0 {
		qty = 1
	}
	v := opts.Variant

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""

	if !checkProductStock(p, v, qty) {
		return c.fail(stockErrorMessage(p, v))
	}

	if idx := c.find(p.ID, variantID(v)); idx >= 0 {
		total := c.items[idx].Quantity + qty
		if v != nil && !checkVariantStock(v, total) {
			return c.fail(stockErrorMessage(p, v))
		}
		c.items[idx].Quantity = total
		return Result{Success: true}
	}

	c.items = append(c.items, Item{Product: p, Variant: v, Quantity: qty})
	return Result{Success: true}
}

// Remove drops every line for the product regardless of variant. This is a
// deliberately broad removal keyed by product id only, unlike the
// variant-aware identity Add and UpdateQuantity use.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, it := range c.items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// UpdateQuantity sets the absolute quantity of the line identified by
// (productID, variantID or absence), re-validating against current stock
// before committing. The line is left unchanged on failure.
func (c *Cart) UpdateQuantity(productID string, quantity int, variantID string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""

	idx := c.find(productID, variantID)
	if idx < 0 {
		return c.fail("item not found in cart")
	}

	it := &c.items[idx]
	if it.Variant != nil {
		if !checkVariantStock(it.Variant, quantity) {
			return c.fail(stockErrorMessage(it.Product, it.Variant))
		}
	} else if !checkProductStock(it.Product, nil, quantity) {
		return c.fail(stockErrorMessage(it.Product, nil))
	}

	it.Quantity = quantity
	return Result{Success: true}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the current lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// ItemCount sums quantities across all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Err returns the message of the last failed mutation, or "" after a
// successful one. Every mutation overwrites it.
func (c *Cart) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
