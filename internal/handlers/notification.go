package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/flashpizza/internal/middleware"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/storefront"
)

// NotificationHandler exposes a customer's order notifications and toasts.
type NotificationHandler struct {
	shop  *storefront.Service
	notes *notifications.Center
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(shop *storefront.Service, notes *notifications.Center) *NotificationHandler {
	return &NotificationHandler{shop: shop, notes: notes}
}

// orderIDs scopes notifications to the orders of the calling session. The
// list is never nil, so a fresh session sees nothing.
func (h *NotificationHandler) orderIDs(c *fiber.Ctx) ([]string, error) {
	return h.shop.OrderIDs(c.UserContext(), middleware.GetSessionID(c))
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	ids, err := h.orderIDs(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.notes.List(ids),
		"unread":  h.notes.UnreadCount(ids),
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	ids, err := h.orderIDs(c)
	if err != nil {
		return err
	}
	if !h.notes.MarkRead(c.Params("id"), ids) {
		return fiber.NewError(fiber.StatusNotFound, "notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "unread": h.notes.UnreadCount(ids)})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	ids, err := h.orderIDs(c)
	if err != nil {
		return err
	}
	h.notes.MarkAllRead(ids)
	return c.JSON(fiber.Map{"success": true, "unread": 0})
}

func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	ids, err := h.orderIDs(c)
	if err != nil {
		return err
	}
	h.notes.Clear(c.Params("id"), ids)
	return c.JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) ClearAll(c *fiber.Ctx) error {
	ids, err := h.orderIDs(c)
	if err != nil {
		return err
	}
	h.notes.ClearAll(ids)
	return c.JSON(fiber.Map{"success": true})
}

// Toasts returns the session's live toasts.
func (h *NotificationHandler) Toasts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.notes.Toasts(middleware.GetSessionID(c))})
}

func (h *NotificationHandler) DismissToast(c *fiber.Ctx) error {
	h.notes.RemoveToast(middleware.GetSessionID(c), c.Params("id"))
	return c.JSON(fiber.Map{"success": true})
}
