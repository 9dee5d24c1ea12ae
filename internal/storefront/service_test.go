package storefront_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashpizza/internal/coupon"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/seed"
	"github.com/example/flashpizza/internal/session"
	"github.com/example/flashpizza/internal/storefront"
)

var now = time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	mu     sync.Mutex
	items  map[string]models.MenuItem
	cfg    models.StoreConfig
	orders []models.Order

	// unsynced holds orders written but not yet pushed back.
	holdOrders bool
	unsynced   []models.Order
}

func newCatalog() *fakeCatalog {
	c := &fakeCatalog{items: map[string]models.MenuItem{}, cfg: seed.StoreConfig()}
	for _, item := range seed.MenuItems() {
		c.items[item.ID] = item
	}
	return c
}

func (c *fakeCatalog) MenuItem(id string) (models.MenuItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	return item, ok
}

func (c *fakeCatalog) Coupons() []models.Coupon { return seed.Coupons() }

func (c *fakeCatalog) StoreConfig() models.StoreConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *fakeCatalog) Orders() []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Order{}, c.orders...)
}

func (c *fakeCatalog) Order(id string) (models.Order, bool) {
	for _, o := range c.Orders() {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (c *fakeCatalog) AddOrder(_ context.Context, o models.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.holdOrders {
		c.unsynced = append(c.unsynced, o)
		return nil
	}
	c.orders = append([]models.Order{o}, c.orders...)
	return nil
}

func (c *fakeCatalog) sync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.unsynced {
		c.orders = append([]models.Order{o}, c.orders...)
	}
	c.unsynced = nil
	c.holdOrders = false
}

func (c *fakeCatalog) setStatus(id string, status models.OrderStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.orders {
		if c.orders[i].ID == id {
			c.orders[i].Status = status
		}
	}
}

func newService(t *testing.T) (*storefront.Service, *fakeCatalog, *notifications.Center, string) {
	t.Helper()
	catalog := newCatalog()
	notes := notifications.NewCenter().WithClock(func() time.Time { return now })
	svc := storefront.NewService(catalog, session.NewMemoryStore(time.Hour), notes, nil).
		WithClock(func() time.Time { return now })

	summary, err := svc.Open(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, summary.SessionID)
	return svc, catalog, notes, summary.SessionID
}

func nearby() models.CustomerInfo {
	return models.CustomerInfo{
		Name:     "Asha",
		Phone:    "9876543210",
		Address:  "12 MG Road",
		Location: &models.Location{Lat: 12.9800, Lng: 77.6000},
	}
}

func TestService_AddAndRemoveItems(t *testing.T) {
	svc, catalog, _, id := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, id, "v1")
	require.NoError(t, err)
	summary, err := svc.AddItem(ctx, id, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Cart.Quantity("v1"))
	assert.Equal(t, 398.0, summary.Totals.Subtotal)
	assert.Equal(t, 0.0, summary.Totals.DeliveryCharge)

	summary, err = svc.RemoveItem(ctx, id, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Cart.Quantity("v1"))
	assert.Equal(t, 35.0, summary.Totals.DeliveryCharge)
	assert.Equal(t, 234.0, summary.Totals.Total)

	_, err = svc.RemoveItem(ctx, id, "nv1")
	assert.ErrorIs(t, err, storefront.ErrNotInCart)

	_, err = svc.AddItem(ctx, id, "zz")
	assert.ErrorIs(t, err, storefront.ErrItemNotFound)

	item := catalog.items["b1"]
	item.IsAvailable = false
	catalog.items["b1"] = item
	_, err = svc.AddItem(ctx, id, "b1")
	assert.ErrorIs(t, err, storefront.ErrItemUnavailable)

	summary, err = svc.SetQuantity(ctx, id, "v1", 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Cart.Items)

	_, err = svc.Cart(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestService_ApplyCoupon(t *testing.T) {
	svc, _, _, id := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, id, "v1")
	require.NoError(t, err)

	summary, _, err := svc.ApplyCoupon(ctx, id, "flat50")
	var rejection *coupon.Rejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "Minimum order amount is ₹300", rejection.Message)
	assert.Empty(t, summary.Cart.CouponCode)

	_, err = svc.AddItem(ctx, id, "v2")
	require.NoError(t, err)
	_, _, err = svc.ApplyCoupon(ctx, id, "FLASH20")
	assert.ErrorIs(t, err, coupon.ErrBelowMinimum)

	_, err = svc.RemoveItem(ctx, id, "v2")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, "v4")
	require.NoError(t, err)

	summary, result, err := svc.ApplyCoupon(ctx, id, "flash20")
	require.NoError(t, err)
	assert.Equal(t, "FLASH20", result.Code)
	assert.InDelta(t, 105.6, result.Discount, 1e-9)
	assert.Equal(t, "FLASH20", summary.Cart.CouponCode)
	assert.InDelta(t, 422.4, summary.Totals.Total, 1e-9)

	_, _, err = svc.ApplyCoupon(ctx, id, "NOPE")
	assert.ErrorIs(t, err, coupon.ErrNotFound)
	summary, err = svc.Cart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "FLASH20", summary.Cart.CouponCode)

	summary, err = svc.RemoveCoupon(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, summary.Cart.Discount)
}

func TestService_CheckoutValidation(t *testing.T) {
	svc, catalog, _, id := newService(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, id)
	assert.ErrorIs(t, err, storefront.ErrEmptyCart)

	_, err = svc.AddItem(ctx, id, "v1")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, id)
	var form storefront.FormErrors
	require.ErrorAs(t, err, &form)
	assert.Equal(t, "Name is required", form["name"])
	assert.Equal(t, "Please share your location for delivery", form["location"])

	info := nearby()
	info.Phone = "12345"
	info.Location = &models.Location{Lat: 13.0716, Lng: 77.5946}
	_, err = svc.SetCustomer(ctx, id, info)
	require.NoError(t, err)
	_, err = svc.SetPaymentMethod(ctx, id, models.PaymentMethodCOD)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, id)
	require.ErrorAs(t, err, &form)
	assert.Equal(t, "Enter a valid 10-digit phone number", form["phone"])
	assert.Contains(t, form["location"], "Sorry, we only deliver within 5 km. Your location is 11.1 km away.")

	_, err = svc.SetPaymentMethod(ctx, id, "card")
	assert.ErrorIs(t, err, storefront.ErrInvalidPayment)

	catalog.cfg.IsOpen = false
	_, err = svc.Checkout(ctx, id)
	assert.ErrorIs(t, err, storefront.ErrStoreClosed)

	summary, err := svc.Cart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Cart.ItemCount())
	assert.Empty(t, catalog.Orders())
}

func TestService_CheckoutAndTrack(t *testing.T) {
	svc, catalog, notes, id := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, id, "v4")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, "v1")
	require.NoError(t, err)
	_, _, err = svc.ApplyCoupon(ctx, id, "FLASH20")
	require.NoError(t, err)
	_, err = svc.SetCustomer(ctx, id, nearby())
	require.NoError(t, err)
	_, err = svc.SetPaymentMethod(ctx, id, models.PaymentMethodUPI)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storefront.NewOrderID(now), order.ID)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, 528.0, order.Subtotal)
	assert.InDelta(t, 422.4, order.Total, 1e-9)
	assert.Equal(t, "FLASH20", order.CouponCode)
	assert.Len(t, order.Items, 2)
	assert.Greater(t, order.Distance, 0.0)

	summary, err := svc.Cart(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, summary.Cart.Items)
	assert.Empty(t, summary.Cart.CouponCode)

	toasts := notes.Toasts(id)
	require.Len(t, toasts, 1)
	assert.Equal(t, "Order #"+order.ID+" placed successfully! 🍕", toasts[0].Message)

	ids, err := svc.OrderIDs(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{order.ID}, ids)
	list := notes.List(ids)
	require.Len(t, list, 1)
	assert.Equal(t, "Order Confirmed!", list[0].Title)

	active, err := svc.ActiveOrder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, order.ID, active.ID)
	require.NotNil(t, active.EstimatedDelivery)

	catalog.setStatus(order.ID, models.OrderStatusOutForDelivery)
	active, err = svc.ActiveOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, active.Status)

	other, err := svc.Open(ctx)
	require.NoError(t, err)
	_, err = svc.Order(ctx, other.SessionID, order.ID)
	assert.ErrorIs(t, err, storefront.ErrOrderNotFound)
	none, err := svc.ActiveOrder(ctx, other.SessionID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestService_ActiveOrderBeforeSync(t *testing.T) {
	svc, catalog, _, id := newService(t)
	ctx := context.Background()
	catalog.holdOrders = true

	_, err := svc.AddItem(ctx, id, "v4")
	require.NoError(t, err)
	_, err = svc.SetCustomer(ctx, id, nearby())
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, id)
	require.NoError(t, err)

	active, err := svc.ActiveOrder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, active, "the placed order stays tracked until the push arrives")
	assert.Equal(t, order.ID, active.ID)

	catalog.sync()
	catalog.setStatus(order.ID, models.OrderStatusPreparing)
	active, err = svc.ActiveOrder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, models.OrderStatusPreparing, active.Status)
}

func TestService_Reorder(t *testing.T) {
	svc, catalog, _, id := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, id, "nv1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, "b1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, "b1")
	require.NoError(t, err)
	_, err = svc.SetCustomer(ctx, id, nearby())
	require.NoError(t, err)
	_, err = svc.SetPaymentMethod(ctx, id, models.PaymentMethodCOD)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, id)
	require.NoError(t, err)

	item := catalog.items["nv1"]
	item.IsAvailable = false
	catalog.items["nv1"] = item

	summary, skipped, err := svc.Reorder(ctx, id, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicken Tikka Pizza"}, skipped)
	assert.Equal(t, 2, summary.Cart.Quantity("b1"))
	assert.Equal(t, 0, summary.Cart.Quantity("nv1"))

	_, _, err = svc.Reorder(ctx, id, "FP404")
	assert.ErrorIs(t, err, storefront.ErrOrderNotFound)
}

func TestValidateCustomer(t *testing.T) {
	assert.Empty(t, storefront.ValidateCustomer(nearby()))

	errs := storefront.ValidateCustomer(models.CustomerInfo{Phone: "5876543210"})
	assert.Len(t, errs, 4)
	assert.Equal(t, "Enter a valid 10-digit phone number", errs["phone"])
	assert.Contains(t, errs.Error(), "Name is required")
}
