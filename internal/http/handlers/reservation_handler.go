package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "candela/internal/log"
	"candela/internal/reserve"
)

type ReservationHandler struct {
	Store *reserve.Store
}

type createReservationRequest struct {
	VariantID string `json:"variantId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	SessionID string `json:"sessionId"`
}

// Create starts a 15-minute stock hold.
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var req createReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	r, err := h.Store.Create(req.VariantID, req.ProductID, req.Quantity, req.SessionID)
	if err != nil {
		if errors.Is(err, reserve.ErrInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		applog.Error(c, "reservation.create.fail", err, map[string]any{"variant": req.VariantID})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	applog.Audit(c, "reservation.create", map[string]any{"id": r.ID, "variant": r.VariantID, "qty": r.Quantity})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reservation": r,
		"success":     true,
		"message":     "Reservation created successfully",
	})
}

// Get returns a hold, distinguishing expired (410) from unknown (404).
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	r, err := h.Store.Get(id)
	switch {
	case errors.Is(err, reserve.ErrExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "Reservation has expired"})
	case errors.Is(err, reserve.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reservation not found"})
	}
	return c.JSON(fiber.Map{"reservation": r, "success": true})
}

// Release deletes a hold (checkout completed or cancelled).
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	id := c.Params("id")
	r, err := h.Store.Release(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reservation not found"})
	}
	applog.Audit(c, "reservation.release", map[string]any{"id": id})
	return c.JSON(fiber.Map{
		"reservation": r,
		"success":     true,
		"message":     "Reservation released successfully",
	})
}

// Expire sweeps expired holds; intended for a periodic external caller.
func (h *ReservationHandler) Expire(c *fiber.Ctx) error {
	cleaned := h.Store.Sweep()
	if cleaned > 0 {
		applog.Info(c, "reservation.sweep", map[string]any{"cleaned": cleaned})
	}
	return c.JSON(fiber.Map{"cleaned": cleaned})
}
