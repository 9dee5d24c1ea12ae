package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/state"
)

// MarketingHandler manages promotional banners.
type MarketingHandler struct {
	data *state.Container
}

// NewMarketingHandler constructs MarketingHandler.
func NewMarketingHandler(data *state.Container) *MarketingHandler {
	return &MarketingHandler{data: data}
}

// ListBanners returns every banner, active or not, in display order.
func (h *MarketingHandler) ListBanners(c *fiber.Ctx) error {
	banners := h.data.StoreConfig().Banners
	sort.SliceStable(banners, func(i, j int) bool { return banners[i].Order < banners[j].Order })
	if banners == nil {
		banners = []models.Banner{}
	}
	return c.JSON(fiber.Map{"success": true, "data": banners})
}

func (h *MarketingHandler) CreateBanner(c *fiber.Ctx) error {
	var req models.Banner
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	banner, err := h.data.AddBanner(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": banner})
}

func (h *MarketingHandler) UpdateBanner(c *fiber.Ctx) error {
	var req models.Banner
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	banner, err := h.data.UpdateBanner(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": banner})
}

func (h *MarketingHandler) DeleteBanner(c *fiber.Ctx) error {
	if err := h.data.DeleteBanner(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

type moveBannerRequest struct {
	Direction string `json:"direction"`
}

// MoveBanner swaps a banner with its neighbour; direction is up or down.
func (h *MarketingHandler) MoveBanner(c *fiber.Ctx) error {
	var req moveBannerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Direction != "up" && req.Direction != "down" {
		return fiber.NewError(fiber.StatusBadRequest, "direction must be up or down")
	}
	banners, err := h.data.MoveBanner(c.UserContext(), c.Params("id"), req.Direction == "up")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": banners})
}
