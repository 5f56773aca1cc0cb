package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"candela/internal/cart"
	"candela/internal/domain"
	applog "candela/internal/log"
	"candela/internal/services"
	"candela/internal/validate"
)

type CartHandler struct {
	Carts   *cart.Manager
	Catalog *services.CatalogService
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) loadProduct(c *fiber.Ctx, productID string) (domain.Product, bool) {
	p, err := h.Catalog.Get(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		} else {
			applog.Error(c, "cart.product.load.fail", err, map[string]any{"product": productID})
			_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load product"})
		}
		return domain.Product{}, false
	}
	return p, true
}

func findVariant(p domain.Product, variantID string) *domain.Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// View returns the session's cart.
func (h *CartHandler) View(c *fiber.Ctx) error {
	crt := h.Carts.Get(ensureSID(c))
	return c.JSON(fiber.Map{
		"items":     crt.Items(),
		"itemCount": crt.ItemCount(),
	})
}

// AddItem admits a product (and optional variant) into the cart.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}

	p, ok := h.loadProduct(c, req.ProductID)
	if !ok {
		return nil
	}

	var v *domain.Variant
	if req.VariantID != "" {
		if v = findVariant(p, req.VariantID); v == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "variant not found"})
		}
	}

	res := h.Carts.Get(ensureSID(c)).Add(p, cart.AddOptions{Variant: v, Quantity: req.Qty})
	if !res.Success {
		applog.Info(c, "cart.add.reject", map[string]any{"product": req.ProductID, "reason": res.Error})
		return c.Status(fiber.StatusConflict).JSON(res)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": req.ProductID, "variant": req.VariantID, "qty": req.Qty})
	return c.JSON(res)
}

// UpdateItem sets the absolute quantity of an existing line.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}

	res := h.Carts.Get(ensureSID(c)).UpdateQuantity(req.ProductID, req.Qty, req.VariantID)
	if !res.Success {
		status := fiber.StatusConflict
		if res.Error == "item not found in cart" {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(res)
	}
	return c.JSON(res)
}

// RemoveItem drops every line for the product, regardless of variant.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	h.Carts.Get(ensureSID(c)).Remove(req.ProductID)
	return c.JSON(fiber.Map{"success": true})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Carts.Get(ensureSID(c)).Clear()
	return c.JSON(fiber.Map{"success": true})
}
