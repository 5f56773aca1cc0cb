package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "candela/internal/log"
	"candela/internal/notify"
	"candela/internal/repos"
	"candela/internal/validate"
)

type AdminHandler struct {
	Catalog *repos.CatalogRepo
	Notify  *notify.Store
	BaseURL string
}

type inventoryUpdateRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Qty       int    `json:"qty"`
}

// UpdateInventory writes an absolute stock quantity for a variant. When the
// quantity crosses from zero (or unknown) to positive, the waiting restock
// subscribers are mailed.
func (h *AdminHandler) UpdateInventory(c *fiber.Ctx) error {
	var req inventoryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	_, okV := validate.ID(req.VariantID)
	if !okV || req.Qty < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "variantId and a non-negative qty are required"})
	}

	prev, err := h.Catalog.SetVariantStock(req.VariantID, req.Qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "variant not found"})
		}
		applog.Error(c, "admin.inventory.save.fail", err, map[string]any{"variant": req.VariantID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not save inventory"})
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"variant": req.VariantID, "qty": req.Qty})

	notified := 0
	if (prev == nil || *prev <= 0) && req.Qty > 0 {
		notified = h.notifyRestock(c, req.VariantID)
	}

	return c.JSON(fiber.Map{"success": true, "notified": notified})
}

func (h *AdminHandler) notifyRestock(c *fiber.Ctx, variantID string) int {
	v, err := h.Catalog.Variant(variantID)
	if err != nil {
		applog.Error(c, "admin.restock.lookup.fail", err, map[string]any{"variant": variantID})
		return 0
	}
	p, err := h.Catalog.Get(v.ProductID)
	if err != nil {
		applog.Error(c, "admin.restock.lookup.fail", err, map[string]any{"product": v.ProductID})
		return 0
	}

	sent, err := h.Notify.NotifyRestock(notify.RestockEvent{
		ProductID:    p.ID,
		VariantID:    v.ID,
		ProductName:  p.Name,
		VariantValue: v.Value,
		ProductURL:   h.BaseURL + "/product/" + p.ID,
		SKU:          v.SKU,
	})
	if err != nil {
		applog.Error(c, "admin.restock.notify.fail", err, map[string]any{"variant": variantID})
		return 0
	}
	if sent > 0 {
		applog.Audit(c, "admin.restock.notify", map[string]any{"variant": variantID, "sent": sent})
	}
	return sent
}
