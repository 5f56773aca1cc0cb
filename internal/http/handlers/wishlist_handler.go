package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "candela/internal/log"
	"candela/internal/services"
	"candela/internal/validate"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.Wish.List(ensureSID(c))
	if err != nil {
		applog.Error(c, "wishlist.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load wishlist"})
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	if err := h.Wish.Save(ensureSID(c), req.ProductID); err != nil {
		applog.Error(c, "wishlist.save.fail", err, map[string]any{"product": req.ProductID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not save item"})
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product": req.ProductID})
	return c.JSON(fiber.Map{"success": true})
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	if err := h.Wish.Unsave(ensureSID(c), req.ProductID); err != nil {
		applog.Error(c, "wishlist.unsave.fail", err, map[string]any{"product": req.ProductID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not remove item"})
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": req.ProductID})
	return c.JSON(fiber.Map{"success": true})
}
