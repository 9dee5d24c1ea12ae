package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/coupon"
	"github.com/example/flashpizza/internal/orders"
	"github.com/example/flashpizza/internal/session"
	"github.com/example/flashpizza/internal/state"
	"github.com/example/flashpizza/internal/store"
	"github.com/example/flashpizza/internal/storefront"
)

// ErrorHandler renders every error as {"success": false, "error": msg} with
// a status derived from the domain error.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, fiber.Map) {
	body := fiber.Map{"success": false, "error": err.Error()}

	var fe *fiber.Error
	var verr *state.ValidationError
	var rejection *coupon.Rejection
	var form storefront.FormErrors

	switch {
	case errors.As(err, &fe):
		return fe.Code, fiber.Map{"success": false, "error": fe.Message}
	case errors.As(err, &form):
		body["fields"] = map[string]string(form)
		return fiber.StatusBadRequest, body
	case errors.As(err, &rejection):
		body["error"] = rejection.Message
		body["code"] = rejection.Code
		return fiber.StatusBadRequest, body
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, body
	case errors.Is(err, storefront.ErrEmptyCart),
		errors.Is(err, storefront.ErrItemUnavailable),
		errors.Is(err, storefront.ErrInvalidPayment),
		errors.Is(err, store.ErrInvalidStatus):
		return fiber.StatusBadRequest, body
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, storefront.ErrItemNotFound),
		errors.Is(err, storefront.ErrOrderNotFound),
		errors.Is(err, storefront.ErrNotInCart),
		errors.Is(err, orders.ErrOrderNotFound):
		return fiber.StatusNotFound, body
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, storefront.ErrStoreClosed),
		errors.Is(err, orders.ErrNoNextStatus):
		return fiber.StatusConflict, body
	}
	return fiber.StatusInternalServerError, fiber.Map{"success": false, "error": "internal server error"}
}
