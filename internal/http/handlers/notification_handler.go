package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "candela/internal/log"
	"candela/internal/notify"
)

type NotificationHandler struct {
	Store *notify.Store
}

type subscribeRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Email     string `json:"email"`
}

// Subscribe registers a "notify when available" request. A duplicate
// subscribe for the same (product, variant, email) returns the existing
// active record.
func (h *NotificationHandler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	sub, existing, err := h.Store.Subscribe(req.ProductID, req.VariantID, req.Email)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if existing {
		return c.JSON(fiber.Map{
			"notification": sub,
			"success":      true,
			"message":      "You are already subscribed to notifications for this product",
		})
	}

	applog.Audit(c, "notification.subscribe", map[string]any{"id": sub.ID, "product": sub.ProductID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"notification": sub,
		"success":      true,
		"message":      "Successfully subscribed to stock availability notifications",
	})
}

// List returns the caller's active subscriptions by email.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email query parameter is required"})
	}
	return c.JSON(fiber.Map{
		"notifications": h.Store.List(email),
		"success":       true,
	})
}

// Unsubscribe removes a subscription by id.
func (h *NotificationHandler) Unsubscribe(c *fiber.Ctx) error {
	id := c.Params("id")
	sub, err := h.Store.Unsubscribe(id)
	if err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Audit(c, "notification.unsubscribe", map[string]any{"id": id})
	return c.JSON(fiber.Map{
		"notification": sub,
		"success":      true,
		"message":      "Notification subscription removed",
	})
}
