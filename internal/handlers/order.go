package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/flashpizza/internal/middleware"
	"github.com/example/flashpizza/internal/storefront"
)

// OrderHandler lets customers follow the orders they placed.
type OrderHandler struct {
	shop *storefront.Service
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(shop *storefront.Service) *OrderHandler {
	return &OrderHandler{shop: shop}
}

// ListOrders returns the session's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	list, err := h.shop.Orders(c.UserContext(), middleware.GetSessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

// ActiveOrder returns the tracked order, or null when there is none.
func (h *OrderHandler) ActiveOrder(c *fiber.Ctx) error {
	active, err := h.shop.ActiveOrder(c.UserContext(), middleware.GetSessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": active})
}

// GetOrder returns one of the session's orders.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.shop.Order(c.UserContext(), middleware.GetSessionID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}
