package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/state"
)

// CatalogHandler serves the read-only storefront data.
type CatalogHandler struct {
	data *state.Container
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(data *state.Container) *CatalogHandler {
	return &CatalogHandler{data: data}
}

// App reports the UI mode and the persistence backend in use. The presence
// of an admin query parameter selects the admin dashboard.
func (h *CatalogHandler) App(c *fiber.Ctx) error {
	mode := "customer"
	if c.Context().QueryArgs().Has("admin") {
		mode = "admin"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"mode":      mode,
			"storage":   h.data.Mode(),
			"storeOpen": h.data.StoreConfig().IsOpen,
		},
	})
}

// Store returns the store configuration.
func (h *CatalogHandler) Store(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.data.StoreConfig()})
}

// Banners returns the active banners in display order.
func (h *CatalogHandler) Banners(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.data.StoreConfig().ActiveBanners()})
}

// ListMenu returns available items filtered by category, vegOnly and
// minRating, sorted by sort.
func (h *CatalogHandler) ListMenu(c *fiber.Ctx) error {
	q := state.MenuQuery{
		Category: models.Category(c.Query("category")),
		VegOnly:  c.QueryBool("vegOnly"),
		Sort:     c.Query("sort"),
	}
	if q.Category != "" && q.Category.Priority() > len(models.Categories) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown category")
	}
	if !state.ValidSort(q.Sort) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown sort order")
	}
	if raw := c.Query("minRating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "minRating must be a number")
		}
		q.MinRating = rating
	}

	items := h.data.Menu(q)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"total":   len(items),
	})
}

// GetMenuItem returns one available menu item.
func (h *CatalogHandler) GetMenuItem(c *fiber.Ctx) error {
	item, ok := h.data.MenuItem(c.Params("id"))
	if !ok || !item.IsAvailable {
		return fiber.NewError(fiber.StatusNotFound, "menu item not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}
