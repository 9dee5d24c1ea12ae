package state

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/example/flashpizza/internal/coupon"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/store"
)

// Menu items

func (c *Container) AddMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := validate(item); err != nil {
		return models.MenuItem{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if _, exists := c.MenuItem(item.ID); exists {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", item.ID, store.ErrConflict)
	}
	added, err := c.adapter.AddMenuItem(ctx, item)
	if err != nil {
		return item, c.swallow("add menu item", err)
	}
	return added, nil
}

func (c *Container) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	if err := validate(patch); err != nil {
		return models.MenuItem{}, err
	}
	current, ok := c.MenuItem(id)
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, store.ErrNotFound)
	}
	updated := patch.Apply(current)
	return updated, c.swallow("update menu item", c.adapter.UpdateMenuItem(ctx, id, patch))
}

func (c *Container) DeleteMenuItem(ctx context.Context, id string) error {
	if _, ok := c.MenuItem(id); !ok {
		return fmt.Errorf("menu item %s: %w", id, store.ErrNotFound)
	}
	return c.swallow("delete menu item", c.adapter.DeleteMenuItem(ctx, id))
}

// Coupons

func (c *Container) Coupon(code string) (models.Coupon, bool) {
	return coupon.Find(c.Coupons(), code)
}

func (c *Container) AddCoupon(ctx context.Context, cp models.Coupon) (models.Coupon, error) {
	cp.Code = coupon.Normalize(cp.Code)
	if err := validate(cp); err != nil {
		return models.Coupon{}, err
	}
	added, err := c.adapter.AddCoupon(ctx, cp)
	if err != nil {
		return cp, c.swallow("add coupon", err)
	}
	return added, nil
}

func (c *Container) UpdateCoupon(ctx context.Context, code string, patch models.CouponPatch) (models.Coupon, error) {
	if err := validate(patch); err != nil {
		return models.Coupon{}, err
	}
	current, ok := c.Coupon(code)
	if !ok {
		return models.Coupon{}, fmt.Errorf("coupon %s: %w", code, store.ErrNotFound)
	}
	return patch.Apply(current), c.swallow("update coupon", c.adapter.UpdateCoupon(ctx, current.Code, patch))
}

func (c *Container) DeleteCoupon(ctx context.Context, code string) error {
	current, ok := c.Coupon(code)
	if !ok {
		return fmt.Errorf("coupon %s: %w", code, store.ErrNotFound)
	}
	return c.swallow("delete coupon", c.adapter.DeleteCoupon(ctx, current.Code))
}

// Orders

// AddOrder writes a new order. Orders are never deleted.
func (c *Container) AddOrder(ctx context.Context, order models.Order) error {
	return c.swallow("add order", c.adapter.AddOrder(ctx, order))
}

// UpdateOrderStatus writes the status field only.
func (c *Container) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return invalid("unknown order status %q", status)
	}
	if _, ok := c.Order(id); !ok {
		return fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	return c.swallow("update order status", c.adapter.UpdateOrderStatus(ctx, id, status))
}

// Store config

func (c *Container) UpdateStoreConfig(ctx context.Context, patch models.StoreConfigPatch) (models.StoreConfig, error) {
	if err := validate(patch); err != nil {
		return models.StoreConfig{}, err
	}
	updated := patch.Apply(c.StoreConfig())
	return updated, c.swallow("update store config", c.adapter.UpdateStoreConfig(ctx, patch))
}

// Banners live inside the store config document.

func (c *Container) AddBanner(ctx context.Context, banner models.Banner) (models.Banner, error) {
	if err := validate(banner); err != nil {
		return models.Banner{}, err
	}
	banners := c.StoreConfig().Banners
	if banner.ID == "" {
		banner.ID = uuid.NewString()
	}
	for _, b := range banners {
		if b.ID == banner.ID {
			return models.Banner{}, fmt.Errorf("banner %s: %w", banner.ID, store.ErrConflict)
		}
	}
	banners = append(banners, banner)
	_, err := c.UpdateStoreConfig(ctx, models.StoreConfigPatch{Banners: &banners})
	return banner, err
}

// UpdateBanner replaces the banner with id, keeping the id.
func (c *Container) UpdateBanner(ctx context.Context, id string, banner models.Banner) (models.Banner, error) {
	if err := validate(banner); err != nil {
		return models.Banner{}, err
	}
	banner.ID = id
	banners := c.StoreConfig().Banners
	found := false
	for i := range banners {
		if banners[i].ID == id {
			banners[i] = banner
			found = true
		}
	}
	if !found {
		return models.Banner{}, fmt.Errorf("banner %s: %w", id, store.ErrNotFound)
	}
	_, err := c.UpdateStoreConfig(ctx, models.StoreConfigPatch{Banners: &banners})
	return banner, err
}

func (c *Container) DeleteBanner(ctx context.Context, id string) error {
	current := c.StoreConfig().Banners
	banners := make([]models.Banner, 0, len(current))
	for _, b := range current {
		if b.ID != id {
			banners = append(banners, b)
		}
	}
	if len(banners) == len(current) {
		return fmt.Errorf("banner %s: %w", id, store.ErrNotFound)
	}
	_, err := c.UpdateStoreConfig(ctx, models.StoreConfigPatch{Banners: &banners})
	return err
}

// MoveBanner swaps the banner with its neighbour in the given direction and
// renumbers every banner's order field. Moving past either end is a no-op.
func (c *Container) MoveBanner(ctx context.Context, id string, up bool) ([]models.Banner, error) {
	banners := c.StoreConfig().Banners
	sort.SliceStable(banners, func(i, j int) bool { return banners[i].Order < banners[j].Order })

	index := -1
	for i, b := range banners {
		if b.ID == id {
			index = i
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("banner %s: %w", id, store.ErrNotFound)
	}
	target := index + 1
	if up {
		target = index - 1
	}
	if target < 0 || target >= len(banners) {
		return banners, nil
	}

	banners[index], banners[target] = banners[target], banners[index]
	for i := range banners {
		banners[i].Order = i
	}
	_, err := c.UpdateStoreConfig(ctx, models.StoreConfigPatch{Banners: &banners})
	return banners, err
}
