package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/flashpizza/internal/middleware"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/storefront"
)

// CartHandler manages the customer cart and checkout.
type CartHandler struct {
	shop *storefront.Service
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(shop *storefront.Service) *CartHandler {
	return &CartHandler{shop: shop}
}

type addItemRequest struct {
	ItemID string `json:"itemId"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type couponRequest struct {
	Code string `json:"code"`
}

type paymentMethodRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

func cartResponse(c *fiber.Ctx, summary storefront.Summary, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

// Open creates a session with an empty cart. The id is returned in the body
// and in the X-Session-ID header.
func (h *CartHandler) Open(c *fiber.Ctx) error {
	summary, err := h.shop.Open(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(middleware.SessionHeader, summary.SessionID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": summary})
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	summary, err := h.shop.Cart(c.UserContext(), middleware.GetSessionID(c))
	return cartResponse(c, summary, err)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ItemID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "itemId is required")
	}
	summary, err := h.shop.AddItem(c.UserContext(), middleware.GetSessionID(c), req.ItemID)
	return cartResponse(c, summary, err)
}

// RemoveItem takes one unit of the item out of the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	summary, err := h.shop.RemoveItem(c.UserContext(), middleware.GetSessionID(c), c.Params("id"))
	return cartResponse(c, summary, err)
}

func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	summary, err := h.shop.SetQuantity(c.UserContext(), middleware.GetSessionID(c), c.Params("id"), req.Quantity)
	return cartResponse(c, summary, err)
}

func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}
	summary, result, err := h.shop.ApplyCoupon(c.UserContext(), middleware.GetSessionID(c), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": summary, "message": result.Message})
}

func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	summary, err := h.shop.RemoveCoupon(c.UserContext(), middleware.GetSessionID(c))
	return cartResponse(c, summary, err)
}

func (h *CartHandler) SetCustomer(c *fiber.Ctx) error {
	var req models.CustomerInfo
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	summary, err := h.shop.SetCustomer(c.UserContext(), middleware.GetSessionID(c), req)
	return cartResponse(c, summary, err)
}

func (h *CartHandler) SetPaymentMethod(c *fiber.Ctx) error {
	var req paymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	summary, err := h.shop.SetPaymentMethod(c.UserContext(), middleware.GetSessionID(c), req.PaymentMethod)
	return cartResponse(c, summary, err)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	summary, err := h.shop.Clear(c.UserContext(), middleware.GetSessionID(c))
	return cartResponse(c, summary, err)
}

// Reorder fills the cart from a past order of the same session.
func (h *CartHandler) Reorder(c *fiber.Ctx) error {
	summary, skipped, err := h.shop.Reorder(c.UserContext(), middleware.GetSessionID(c), c.Params("orderId"))
	if err != nil {
		return err
	}
	if skipped == nil {
		skipped = []string{}
	}
	return c.JSON(fiber.Map{"success": true, "data": summary, "skipped": skipped})
}

// Checkout places the cart as an order.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	order, err := h.shop.Checkout(c.UserContext(), middleware.GetSessionID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}
