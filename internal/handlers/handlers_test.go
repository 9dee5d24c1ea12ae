package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/flashpizza/internal/config"
	"github.com/example/flashpizza/internal/handlers"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/orders"
	"github.com/example/flashpizza/internal/routes"
	"github.com/example/flashpizza/internal/seed"
	"github.com/example/flashpizza/internal/services"
	"github.com/example/flashpizza/internal/session"
	"github.com/example/flashpizza/internal/state"
	"github.com/example/flashpizza/internal/store"
	"github.com/example/flashpizza/internal/storefront"
)

const passphrase = "letmein"

type testApp struct {
	app  *fiber.App
	data *state.Container
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithLog(t, zap.NewNop())
}

func newTestAppWithLog(t *testing.T, log *zap.Logger) *testApp {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := store.NewLocalBackend(dir, time.Hour, log)
	require.NoError(t, err)
	adapter, err := store.Open(ctx, backend, seed.Defaults(), log)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	data := state.New(adapter, seed.StoreConfig(), log)
	notes := notifications.NewCenter()
	acks, err := store.NewAckFile(dir)
	require.NoError(t, err)
	arrivals, err := orders.NewArrivalDetector(acks, log)
	require.NoError(t, err)
	data.OnOrders(arrivals.Observe)
	require.NoError(t, data.Start(ctx))
	t.Cleanup(data.Stop)

	telegram, err := services.NewTelegramService("", "", log)
	require.NoError(t, err)

	cfg := &config.Config{
		AdminPassphrase: passphrase,
		JWTSecret:       "test-secret",
		TokenExpires:    time.Hour,
		LoginRateLimit:  1,
		LoginBurst:      10,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	require.NoError(t, routes.Register(app, routes.Deps{
		Config:    cfg,
		Data:      data,
		Shop:      storefront.NewService(data, session.NewMemoryStore(time.Hour), notes, log),
		Lifecycle: orders.NewLifecycle(data, notes, log),
		Arrivals:  arrivals,
		Notes:     notes,
		Telegram:  telegram,
		Log:       log,
	}))
	return &testApp{app: app, data: data}
}

type envelope struct {
	Success    bool              `json:"success"`
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	Token      string            `json:"token"`
	Unread     int               `json:"unread"`
	Fields     map[string]string `json:"fields"`
	Data       json.RawMessage   `json:"data"`
	Pagination map[string]int    `json:"pagination"`
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (a *testApp) openSession(t *testing.T) map[string]string {
	t.Helper()
	status, env := a.do(t, "POST", "/api/cart", nil, nil)
	require.Equal(t, fiber.StatusCreated, status)
	summary := decode[storefront.Summary](t, env.Data)
	require.NotEmpty(t, summary.SessionID)
	return map[string]string{"X-Session-ID": summary.SessionID}
}

func (a *testApp) login(t *testing.T) map[string]string {
	t.Helper()
	status, env := a.do(t, "POST", "/api/admin/login", fiber.Map{"passphrase": passphrase}, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, env.Token)
	return map[string]string{"Authorization": "Bearer " + env.Token}
}

func (a *testApp) placeOrder(t *testing.T, sess map[string]string) models.Order {
	t.Helper()
	for _, id := range []string{"v4", "v1"} {
		status, _ := a.do(t, "POST", "/api/cart/items", fiber.Map{"itemId": id}, sess)
		require.Equal(t, fiber.StatusOK, status)
	}
	status, _ := a.do(t, "PUT", "/api/cart/customer", models.CustomerInfo{
		Name: "Asha", Phone: "9876543210", Address: "12 MG Road",
		Location: &models.Location{Lat: 12.98, Lng: 77.6},
	}, sess)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = a.do(t, "PUT", "/api/cart/payment-method", fiber.Map{"paymentMethod": "cod"}, sess)
	require.Equal(t, fiber.StatusOK, status)

	status, env := a.do(t, "POST", "/api/checkout", nil, sess)
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	return decode[models.Order](t, env.Data)
}

func TestApp_ReportsMode(t *testing.T) {
	a := newTestApp(t)

	_, env := a.do(t, "GET", "/api/app?admin", nil, nil)
	info := decode[map[string]any](t, env.Data)
	assert.Equal(t, "admin", info["mode"])
	assert.Equal(t, "local", info["storage"])

	_, env = a.do(t, "GET", "/api/app", nil, nil)
	info = decode[map[string]any](t, env.Data)
	assert.Equal(t, "customer", info["mode"])
}

func TestMenu_FiltersAndSorts(t *testing.T) {
	a := newTestApp(t)

	status, env := a.do(t, "GET", "/api/menu?vegOnly=true&sort=price-low", nil, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := decode[[]models.MenuItem](t, env.Data)
	require.NotEmpty(t, items)
	assert.Equal(t, "b2", items[0].ID)
	for _, item := range items {
		assert.NotEqual(t, models.CategoryNonVeg, item.Category)
		assert.NotEqual(t, models.CategoryCombos, item.Category)
	}

	status, _ = a.do(t, "GET", "/api/menu?sort=cheapest", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = a.do(t, "GET", "/api/menu/nv4", nil, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Meat Feast", decode[models.MenuItem](t, env.Data).Name)

	status, _ = a.do(t, "GET", "/api/menu/nope", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCart_SessionRequired(t *testing.T) {
	a := newTestApp(t)

	status, env := a.do(t, "GET", "/api/cart", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, _ = a.do(t, "GET", "/api/cart", nil, map[string]string{"X-Session-ID": "unknown"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = a.do(t, "GET", "/api/store", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestCart_CouponFlow(t *testing.T) {
	a := newTestApp(t)
	sess := a.openSession(t)

	a.do(t, "POST", "/api/cart/items", fiber.Map{"itemId": "v1"}, sess)
	status, env := a.do(t, "POST", "/api/cart/coupon", fiber.Map{"code": "FLAT50"}, sess)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Minimum order amount is ₹300", env.Error)

	a.do(t, "POST", "/api/cart/items", fiber.Map{"itemId": "v4"}, sess)
	status, env = a.do(t, "POST", "/api/cart/coupon", fiber.Map{"code": "flash20"}, sess)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "₹105.6 discount applied!", env.Message)
	summary := decode[storefront.Summary](t, env.Data)
	assert.InDelta(t, 105.6, summary.Totals.Discount, 1e-9)

	status, env = a.do(t, "DELETE", "/api/cart/items/v4", nil, sess)
	require.Equal(t, fiber.StatusOK, status)
	summary = decode[storefront.Summary](t, env.Data)
	assert.Equal(t, 0, summary.Cart.Quantity("v4"))

	status, _ = a.do(t, "DELETE", "/api/cart/items/v4", nil, sess)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCheckout_ValidationErrors(t *testing.T) {
	a := newTestApp(t)
	sess := a.openSession(t)

	status, env := a.do(t, "POST", "/api/checkout", nil, sess)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "the cart is empty", env.Error)

	a.do(t, "POST", "/api/cart/items", fiber.Map{"itemId": "v1"}, sess)
	status, env = a.do(t, "POST", "/api/checkout", nil, sess)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Name is required", env.Fields["name"])
	assert.Equal(t, "Please share your location for delivery", env.Fields["location"])
}

func TestCheckout_TrackAndAdminFlow(t *testing.T) {
	a := newTestApp(t)
	sess := a.openSession(t)
	order := a.placeOrder(t, sess)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, 528.0, order.Total)

	status, env := a.do(t, "GET", "/api/orders/active", nil, sess)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, order.ID, decode[storefront.OrderView](t, env.Data).ID)

	_, env = a.do(t, "GET", "/api/notifications", nil, sess)
	assert.Equal(t, 1, env.Unread)

	other := a.openSession(t)
	status, _ = a.do(t, "GET", "/api/orders/"+order.ID, nil, other)
	assert.Equal(t, fiber.StatusNotFound, status)
	_, env = a.do(t, "GET", "/api/notifications", nil, other)
	assert.Equal(t, 0, env.Unread)

	admin := a.login(t)

	_, env = a.do(t, "GET", "/api/admin/orders/new", nil, admin)
	pending := decode[[]models.Order](t, env.Data)
	require.Len(t, pending, 1)
	assert.Equal(t, order.ID, pending[0].ID)

	status, _ = a.do(t, "POST", "/api/admin/orders/"+order.ID+"/preparing", nil, admin)
	require.Equal(t, fiber.StatusOK, status)

	_, env = a.do(t, "GET", "/api/notifications", nil, sess)
	notes := decode[[]models.Notification](t, env.Data)
	require.Len(t, notes, 1)
	assert.Equal(t, "Order Being Prepared", notes[0].Title)

	_, env = a.do(t, "GET", "/api/admin/toasts", nil, admin)
	toasts := decode[[]models.Toast](t, env.Data)
	require.NotEmpty(t, toasts)
	assert.Contains(t, toasts[len(toasts)-1].Message, "marked as Preparing")

	status, _ = a.do(t, "POST", "/api/admin/orders/"+order.ID+"/acknowledge", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	_, env = a.do(t, "GET", "/api/admin/orders/new", nil, admin)
	assert.Empty(t, decode[[]models.Order](t, env.Data))

	status, env = a.do(t, "GET", "/api/admin/orders?status=preparing&limit=10", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Order](t, env.Data), 1)
	assert.Equal(t, 1, env.Pagination["total_items"])

	status, _ = a.do(t, "POST", "/api/admin/orders/"+order.ID+"/completed", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = a.do(t, "POST", "/api/admin/orders/"+order.ID+"/advance", nil, admin)
	assert.Equal(t, fiber.StatusConflict, status)

	status, env = a.do(t, "POST", "/api/cart/reorder/"+order.ID, nil, sess)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2, decode[storefront.Summary](t, env.Data).Totals.ItemCount)
}

func TestAdmin_Gate(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.do(t, "GET", "/api/admin/orders", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env := a.do(t, "POST", "/api/admin/login", fiber.Map{"passphrase": "wrong"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid passphrase", env.Error)
}

func TestAdmin_MenuCouponAndStore(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t)

	status, env := a.do(t, "POST", "/api/admin/menu", fiber.Map{"name": "Garlic Bread", "price": 0, "category": "veg"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, env.Error)

	status, env = a.do(t, "POST", "/api/admin/menu", fiber.Map{"name": "Garlic Bread", "price": 99, "category": "veg", "isAvailable": true}, admin)
	require.Equal(t, fiber.StatusCreated, status)
	item := decode[models.MenuItem](t, env.Data)

	status, env = a.do(t, "PUT", "/api/admin/menu/"+item.ID, fiber.Map{"isAvailable": false}, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, decode[models.MenuItem](t, env.Data).IsAvailable)
	status, _ = a.do(t, "GET", "/api/menu/"+item.ID, nil, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	expiry := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	coupon := fiber.Map{"code": "pizza10", "type": "flat", "value": 10, "isActive": true, "expiresAt": expiry}
	status, env = a.do(t, "POST", "/api/admin/coupons", coupon, admin)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "PIZZA10", decode[models.Coupon](t, env.Data).Code)
	status, _ = a.do(t, "POST", "/api/admin/coupons", coupon, admin)
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = a.do(t, "DELETE", "/api/admin/coupons/Pizza10", nil, admin)
	assert.Equal(t, fiber.StatusOK, status)

	status, env = a.do(t, "PUT", "/api/admin/store", fiber.Map{"isOpen": false}, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, decode[models.StoreConfig](t, env.Data).IsOpen)

	sess := a.openSession(t)
	a.do(t, "POST", "/api/cart/items", fiber.Map{"itemId": "v1"}, sess)
	status, env = a.do(t, "POST", "/api/checkout", nil, sess)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "the store is closed right now", env.Error)
}

func TestAdmin_Banners(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t)

	_, env := a.do(t, "POST", "/api/admin/banners", fiber.Map{"image": "a.jpg", "title": "A", "isActive": true, "order": 0}, admin)
	first := decode[models.Banner](t, env.Data)
	_, env = a.do(t, "POST", "/api/admin/banners", fiber.Map{"image": "b.jpg", "title": "B", "isActive": true, "order": 1}, admin)
	second := decode[models.Banner](t, env.Data)

	status, _ := a.do(t, "POST", "/api/admin/banners/"+second.ID+"/move", fiber.Map{"direction": "sideways"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = a.do(t, "POST", "/api/admin/banners/"+second.ID+"/move", fiber.Map{"direction": "up"}, admin)
	require.Equal(t, fiber.StatusOK, status)

	_, env = a.do(t, "GET", "/api/banners", nil, nil)
	banners := decode[[]models.Banner](t, env.Data)
	require.Len(t, banners, 2)
	assert.Equal(t, second.ID, banners[0].ID)
	assert.Equal(t, first.ID, banners[1].ID)

	status, _ = a.do(t, "DELETE", "/api/admin/banners/missing", nil, admin)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdmin_ActionsAreAttributed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	a := newTestAppWithLog(t, zap.New(core))
	admin := a.login(t)

	status, _ := a.do(t, "POST", "/api/admin/refresh", nil, admin)
	require.Equal(t, fiber.StatusOK, status)

	entries := logs.FilterMessage("data refreshed").All()
	require.Len(t, entries, 1)
	token, ok := entries[0].ContextMap()["admin_token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "unknown", token)
}
