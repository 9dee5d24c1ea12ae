package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/middleware"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/orders"
	"github.com/example/flashpizza/internal/services"
	"github.com/example/flashpizza/internal/state"
	"github.com/example/flashpizza/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	data      *state.Container
	lifecycle *orders.Lifecycle
	arrivals  *orders.ArrivalDetector
	notes     *notifications.Center
	telegram  *services.TelegramService
	log       *zap.Logger
	now       func() time.Time
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(
	data *state.Container,
	lifecycle *orders.Lifecycle,
	arrivals *orders.ArrivalDetector,
	notes *notifications.Center,
	telegram *services.TelegramService,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		data:      data,
		lifecycle: lifecycle,
		arrivals:  arrivals,
		notes:     notes,
		telegram:  telegram,
		log:       log.Named("admin"),
		now:       time.Now,
	}
}

// DashboardStats returns order counts and revenue for the dashboard header.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	list := h.data.Orders()
	byStatus := make(map[models.OrderStatus]int)
	var totalRevenue, todayRevenue float64

	y, m, d := h.now().Date()
	for _, o := range list {
		byStatus[o.Status]++
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		totalRevenue += o.Total
		if oy, om, od := o.CreatedAt.In(h.now().Location()).Date(); oy == y && om == m && od == d {
			todayRevenue += o.Total
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":     len(list),
			"pending_orders":   len(h.arrivals.Pending()),
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
			"orders_by_status": byStatus,
			"menu_items":       len(h.data.MenuItems()),
			"store_open":       h.data.StoreConfig().IsOpen,
		},
	})
}

// Menu

// ListMenu returns every menu item, available or not.
func (h *AdminHandler) ListMenu(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.data.MenuItems()})
}

func (h *AdminHandler) CreateMenuItem(c *fiber.Ctx) error {
	var req models.MenuItem
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item, err := h.data.AddMenuItem(c.UserContext(), req)
	if err != nil {
		return err
	}
	h.notes.ShowToast(notifications.AdminScope, models.ToastSuccess, item.Name+" added to the menu")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *AdminHandler) UpdateMenuItem(c *fiber.Ctx) error {
	var req models.MenuItemPatch
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item, err := h.data.UpdateMenuItem(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *AdminHandler) DeleteMenuItem(c *fiber.Ctx) error {
	if err := h.data.DeleteMenuItem(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Coupons

func (h *AdminHandler) ListCoupons(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.data.Coupons()})
}

func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req models.Coupon
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cp, err := h.data.AddCoupon(c.UserContext(), req)
	if err != nil {
		return err
	}
	h.notes.ShowToast(notifications.AdminScope, models.ToastSuccess, "Coupon "+cp.Code+" created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cp})
}

func (h *AdminHandler) UpdateCoupon(c *fiber.Ctx) error {
	var req models.CouponPatch
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cp, err := h.data.UpdateCoupon(c.UserContext(), c.Params("code"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": cp})
}

func (h *AdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	if err := h.data.DeleteCoupon(c.UserContext(), c.Params("code")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Orders

// ListOrders returns orders newest first with optional status and search
// filters and pagination.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown order status")
	}
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	filtered := make([]models.Order, 0)
	for _, o := range h.data.Orders() {
		if status != "" && o.Status != status {
			continue
		}
		if search != "" && !matchesOrder(o, search) {
			continue
		}
		filtered = append(filtered, o)
	}

	start, end := pg.Bounds(len(filtered))
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       filtered[start:end],
		"pagination": pg.Meta(len(filtered)),
	})
}

func matchesOrder(o models.Order, search string) bool {
	return strings.Contains(strings.ToLower(o.ID), search) ||
		strings.Contains(strings.ToLower(o.Customer.Name), search) ||
		strings.Contains(o.Customer.Phone, search)
}

func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	order, ok := h.data.Order(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// actor names the admin token behind a request in audit log lines.
func actor(c *fiber.Ctx) zap.Field {
	id, ok := middleware.GetAdminTokenID(c)
	if !ok {
		id = "unknown"
	}
	return zap.String("admin_token", id)
}

type transitionFunc func(ctx context.Context, id string) (models.Order, error)

func (h *AdminHandler) transition(fn transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := fn(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		h.log.Info("order status changed",
			zap.String("order_id", order.ID), zap.String("status", string(order.Status)), actor(c))
		if h.telegram.Enabled() {
			go func() { _ = h.telegram.NotifyStatusChange(order, order.Status) }()
		}
		return c.JSON(fiber.Map{"success": true, "data": order})
	}
}

func (h *AdminHandler) MarkPreparing(c *fiber.Ctx) error {
	return h.transition(h.lifecycle.MarkPreparing)(c)
}

func (h *AdminHandler) MarkOutForDelivery(c *fiber.Ctx) error {
	return h.transition(h.lifecycle.MarkOutForDelivery)(c)
}

func (h *AdminHandler) MarkCompleted(c *fiber.Ctx) error {
	return h.transition(h.lifecycle.MarkCompleted)(c)
}

func (h *AdminHandler) CancelOrder(c *fiber.Ctx) error {
	return h.transition(h.lifecycle.Cancel)(c)
}

// AdvanceOrder moves an order one step forward.
func (h *AdminHandler) AdvanceOrder(c *fiber.Ctx) error {
	return h.transition(h.lifecycle.Advance)(c)
}

// NewOrders lists orders that arrived and are not acknowledged yet.
func (h *AdminHandler) NewOrders(c *fiber.Ctx) error {
	pending := h.arrivals.Pending()
	list := make([]models.Order, 0, len(pending))
	for _, id := range pending {
		if o, ok := h.data.Order(id); ok {
			list = append(list, o)
		}
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

func (h *AdminHandler) AcknowledgeOrder(c *fiber.Ctx) error {
	if err := h.arrivals.Acknowledge(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "pending": h.arrivals.Pending()})
}

func (h *AdminHandler) AcknowledgeAll(c *fiber.Ctx) error {
	if err := h.arrivals.AcknowledgeAll(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "pending": []string{}})
}

// Store settings

func (h *AdminHandler) GetStore(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.data.StoreConfig()})
}

func (h *AdminHandler) UpdateStore(c *fiber.Ctx) error {
	var req models.StoreConfigPatch
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cfg, err := h.data.UpdateStoreConfig(c.UserContext(), req)
	if err != nil {
		return err
	}
	h.log.Info("store settings updated", actor(c))
	if req.IsOpen != nil {
		msg := "Store is now closed"
		if *req.IsOpen {
			msg = "Store is now open"
		}
		h.notes.ShowToast(notifications.AdminScope, models.ToastInfo, msg)
	}
	return c.JSON(fiber.Map{"success": true, "data": cfg})
}

// Toasts returns the admin dashboard toasts.
func (h *AdminHandler) Toasts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.notes.Toasts(notifications.AdminScope)})
}

func (h *AdminHandler) DismissToast(c *fiber.Ctx) error {
	h.notes.RemoveToast(notifications.AdminScope, c.Params("id"))
	return c.JSON(fiber.Map{"success": true})
}

// Refresh re-reads every collection from the backend.
func (h *AdminHandler) Refresh(c *fiber.Ctx) error {
	if err := h.data.Refresh(c.UserContext()); err != nil {
		return err
	}
	h.log.Info("data refreshed", actor(c))
	return c.JSON(fiber.Map{"success": true, "storage": h.data.Mode()})
}
