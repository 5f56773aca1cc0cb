package handlers

import (
	"github.com/gofiber/fiber/v2"

	"candela/internal/alert"
	"candela/internal/domain"
	applog "candela/internal/log"
	"candela/internal/services"
)

type AlertHandler struct {
	Alerter    *alert.Alerter
	Catalog    *services.CatalogService
	AdminEmail string
	Threshold  int
}

type alertRequest struct {
	Products  []domain.Product `json:"products"`
	Product   *domain.Product  `json:"product"`
	Variant   *domain.Variant  `json:"variant"`
	Threshold *int             `json:"threshold"`
}

// Dispatch checks the submitted products (or the whole catalog when the
// body names none) and sends cooldown-gated low stock alerts to the admin
// address. A missing admin address fails the whole call before any
// per-item work.
func (h *AlertHandler) Dispatch(c *fiber.Ctx) error {
	if h.AdminEmail == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "ADMIN_EMAIL is not configured",
		})
	}

	var req alertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	threshold := h.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	alerted := []alert.Key{}
	if req.Product != nil {
		alerted = append(alerted, h.Alerter.DispatchOne(h.AdminEmail, *req.Product, req.Variant, threshold)...)
	}
	if len(req.Products) > 0 {
		alerted = append(alerted, h.Alerter.DispatchMany(h.AdminEmail, req.Products, threshold)...)
	}

	// No explicit products: scan the catalog (the periodic cron path).
	if req.Product == nil && len(req.Products) == 0 {
		products, err := h.Catalog.List()
		if err != nil {
			applog.Error(c, "alert.scan.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load catalog"})
		}
		alerted = append(alerted, h.Alerter.DispatchMany(h.AdminEmail, products, threshold)...)
	}

	if len(alerted) > 0 {
		applog.Audit(c, "alert.dispatch", map[string]any{"sent": len(alerted)})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"alertsSent": len(alerted),
		"details":    alerted,
	})
}
