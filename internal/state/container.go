// Package state holds the last-known copy of every synchronized collection.
// It replaces per-view data contexts with one explicitly constructed
// container shared by the storefront and the admin.
package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/store"
	"github.com/example/flashpizza/internal/utils"
)

// ValidationError reports input the admin or customer has to fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func validate(v any) error {
	err := utils.Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return invalid("%s failed the %q rule", f.Field(), f.Tag())
	}
	return invalid("%v", err)
}

// Container mirrors the adapter's collections. Every subscription delivery
// replaces the corresponding slice wholesale.
type Container struct {
	adapter *store.Adapter
	log     *zap.Logger

	mu      sync.RWMutex
	menu    []models.MenuItem
	coupons []models.Coupon
	orders  []models.Order
	config  models.StoreConfig

	listenersMu sync.Mutex
	listeners   []func([]models.Order)
	unsubs      []func()
}

// New builds a container. fallback is served until the store config arrives.
func New(adapter *store.Adapter, fallback models.StoreConfig, log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{
		adapter: adapter,
		log:     log.Named("state"),
		config:  fallback,
	}
}

// OnOrders registers fn to run after every orders update.
func (c *Container) OnOrders(fn func([]models.Order)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Start subscribes to every collection. Each subscription delivers the
// current data before Start returns.
func (c *Container) Start(ctx context.Context) error {
	subscribe := []func() (func(), error){
		func() (func(), error) { return c.adapter.SubscribeMenuItems(ctx, c.setMenu) },
		func() (func(), error) { return c.adapter.SubscribeCoupons(ctx, c.setCoupons) },
		func() (func(), error) { return c.adapter.SubscribeOrders(ctx, c.setOrders) },
		func() (func(), error) { return c.adapter.SubscribeStoreConfig(ctx, c.setConfig) },
	}
	for _, sub := range subscribe {
		unsub, err := sub()
		if err != nil {
			c.Stop()
			return fmt.Errorf("subscribe: %w", err)
		}
		c.listenersMu.Lock()
		c.unsubs = append(c.unsubs, unsub)
		c.listenersMu.Unlock()
	}
	c.log.Info("data container live", zap.String("mode", string(c.adapter.Mode())))
	return nil
}

// Stop tears every subscription down.
func (c *Container) Stop() {
	c.listenersMu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.listenersMu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Refresh re-reads every collection directly from the store.
func (c *Container) Refresh(ctx context.Context) error {
	snap, err := c.adapter.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	c.setMenu(snap.MenuItems)
	c.setCoupons(snap.Coupons)
	if snap.StoreConfig != nil {
		c.setConfig(*snap.StoreConfig)
	}
	c.setOrders(snap.Orders)
	return nil
}

func (c *Container) Mode() store.Mode { return c.adapter.Mode() }

func (c *Container) setMenu(items []models.MenuItem) {
	c.mu.Lock()
	c.menu = items
	c.mu.Unlock()
}

func (c *Container) setCoupons(coupons []models.Coupon) {
	c.mu.Lock()
	c.coupons = coupons
	c.mu.Unlock()
}

func (c *Container) setConfig(cfg models.StoreConfig) {
	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
}

func (c *Container) setOrders(orders []models.Order) {
	c.mu.Lock()
	c.orders = orders
	c.mu.Unlock()

	c.listenersMu.Lock()
	listeners := slices.Clone(c.listeners)
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(cloneOrders(orders))
	}
}

// swallow logs a backing store failure and hides it from the caller, who
// keeps going with the last-known state. Domain errors pass through.
func (c *Container) swallow(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrInvalidStatus) {
		return err
	}
	c.log.Error("store write failed", zap.String("op", op), zap.Error(err))
	return nil
}

// Reads

func (c *Container) MenuItems() []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.MenuItem{}, c.menu...)
}

func (c *Container) MenuItem(id string) (models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.menu {
		if item.ID == id {
			return item, true
		}
	}
	return models.MenuItem{}, false
}

func (c *Container) Coupons() []models.Coupon {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Coupon{}, c.coupons...)
}

// Orders returns every order, newest first.
func (c *Container) Orders() []models.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrders(c.orders)
}

func (c *Container) Order(id string) (models.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, o := range c.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return models.Order{}, false
}

func (c *Container) StoreConfig() models.StoreConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg := c.config
	cfg.Banners = append([]models.Banner(nil), c.config.Banners...)
	return cfg
}

func cloneOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.CartItem(nil), o.Items...)
	if o.Customer.Location != nil {
		loc := *o.Customer.Location
		o.Customer.Location = &loc
	}
	return o
}
