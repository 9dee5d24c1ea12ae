package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/flashpizza/internal/config"
	"github.com/example/flashpizza/internal/handlers"
	"github.com/example/flashpizza/internal/middleware"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/orders"
	"github.com/example/flashpizza/internal/services"
	"github.com/example/flashpizza/internal/state"
	"github.com/example/flashpizza/internal/storefront"
)

// Deps are the long-lived components the HTTP layer serves.
type Deps struct {
	Config    *config.Config
	Data      *state.Container
	Shop      *storefront.Service
	Lifecycle *orders.Lifecycle
	Arrivals  *orders.ArrivalDetector
	Notes     *notifications.Center
	Telegram  *services.TelegramService
	Log       *zap.Logger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, d Deps) error {
	authHandler, err := handlers.NewAuthHandler(d.Config, d.Log)
	if err != nil {
		return fmt.Errorf("auth handler: %w", err)
	}
	catalogHandler := handlers.NewCatalogHandler(d.Data)
	cartHandler := handlers.NewCartHandler(d.Shop)
	orderHandler := handlers.NewOrderHandler(d.Shop)
	notificationHandler := handlers.NewNotificationHandler(d.Shop, d.Notes)
	adminHandler := handlers.NewAdminHandler(d.Data, d.Lifecycle, d.Arrivals, d.Notes, d.Telegram, d.Log)
	marketingHandler := handlers.NewMarketingHandler(d.Data)

	loginLimiter := middleware.NewRateLimiter(rate.Limit(d.Config.LoginRateLimit), d.Config.LoginBurst)

	api := app.Group("/api")

	// Storefront
	api.Get("/app", catalogHandler.App)
	api.Get("/store", catalogHandler.Store)
	api.Get("/banners", catalogHandler.Banners)
	api.Get("/menu", catalogHandler.ListMenu)
	api.Get("/menu/:id", catalogHandler.GetMenuItem)

	api.Post("/cart", cartHandler.Open)

	// Session routes. Each group installs its own session check so that
	// routes outside the groups stay reachable without the header.
	requireSession := middleware.RequireSession()

	cart := api.Group("/cart", requireSession)
	cart.Get("/", cartHandler.Get)
	cart.Delete("/", cartHandler.Clear)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:id", cartHandler.SetQuantity)
	cart.Delete("/items/:id", cartHandler.RemoveItem)
	cart.Post("/coupon", cartHandler.ApplyCoupon)
	cart.Delete("/coupon", cartHandler.RemoveCoupon)
	cart.Put("/customer", cartHandler.SetCustomer)
	cart.Put("/payment-method", cartHandler.SetPaymentMethod)
	cart.Post("/reorder/:orderId", cartHandler.Reorder)

	api.Post("/checkout", requireSession, cartHandler.Checkout)

	customerOrders := api.Group("/orders", requireSession)
	customerOrders.Get("/", orderHandler.ListOrders)
	customerOrders.Get("/active", orderHandler.ActiveOrder)
	customerOrders.Get("/:id", orderHandler.GetOrder)

	notes := api.Group("/notifications", requireSession)
	notes.Get("/", notificationHandler.List)
	notes.Delete("/", notificationHandler.ClearAll)
	notes.Post("/read-all", notificationHandler.MarkAllRead)
	notes.Post("/:id/read", notificationHandler.MarkRead)
	notes.Delete("/:id", notificationHandler.Clear)

	toasts := api.Group("/toasts", requireSession)
	toasts.Get("/", notificationHandler.Toasts)
	toasts.Delete("/:id", notificationHandler.DismissToast)

	// Admin
	api.Post("/admin/login", loginLimiter.Handler(), authHandler.Login)

	admin := api.Group("/admin", middleware.AdminOnly(d.Config.JWTSecret))
	admin.Get("/stats", adminHandler.DashboardStats)

	admin.Get("/menu", adminHandler.ListMenu)
	admin.Post("/menu", adminHandler.CreateMenuItem)
	admin.Put("/menu/:id", adminHandler.UpdateMenuItem)
	admin.Delete("/menu/:id", adminHandler.DeleteMenuItem)

	admin.Get("/coupons", adminHandler.ListCoupons)
	admin.Post("/coupons", adminHandler.CreateCoupon)
	admin.Put("/coupons/:code", adminHandler.UpdateCoupon)
	admin.Delete("/coupons/:code", adminHandler.DeleteCoupon)

	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/orders/new", adminHandler.NewOrders)
	admin.Post("/orders/acknowledge-all", adminHandler.AcknowledgeAll)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Post("/orders/:id/preparing", adminHandler.MarkPreparing)
	admin.Post("/orders/:id/out-for-delivery", adminHandler.MarkOutForDelivery)
	admin.Post("/orders/:id/completed", adminHandler.MarkCompleted)
	admin.Post("/orders/:id/cancel", adminHandler.CancelOrder)
	admin.Post("/orders/:id/advance", adminHandler.AdvanceOrder)
	admin.Post("/orders/:id/acknowledge", adminHandler.AcknowledgeOrder)

	admin.Get("/store", adminHandler.GetStore)
	admin.Put("/store", adminHandler.UpdateStore)

	admin.Get("/banners", marketingHandler.ListBanners)
	admin.Post("/banners", marketingHandler.CreateBanner)
	admin.Put("/banners/:id", marketingHandler.UpdateBanner)
	admin.Delete("/banners/:id", marketingHandler.DeleteBanner)
	admin.Post("/banners/:id/move", marketingHandler.MoveBanner)

	admin.Get("/toasts", adminHandler.Toasts)
	admin.Delete("/toasts/:id", adminHandler.DismissToast)
	admin.Post("/refresh", adminHandler.Refresh)

	return nil
}
