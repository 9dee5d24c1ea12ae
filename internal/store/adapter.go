package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/coupon"
	"github.com/example/flashpizza/internal/models"
)

var (
	ErrNotFound      = errors.New("store: document not found")
	ErrConflict      = errors.New("store: document already exists")
	ErrInvalidStatus = errors.New("store: unknown order status")
)

// Defaults is the dataset written into empty collections on first run.
type Defaults struct {
	MenuItems   []models.MenuItem
	Coupons     []models.Coupon
	StoreConfig *models.StoreConfig
}

// Snapshot is a point-in-time read of every collection.
type Snapshot struct {
	MenuItems   []models.MenuItem
	Coupons     []models.Coupon
	Orders      []models.Order
	StoreConfig *models.StoreConfig
}

// Adapter exposes typed collection operations over a Backend.
type Adapter struct {
	backend Backend
	log     *zap.Logger

	seedOnce sync.Once
	seedErr  error
}

// Open wraps backend and seeds empty collections from defaults before any
// subscription can observe them.
func Open(ctx context.Context, backend Backend, defaults Defaults, log *zap.Logger) (*Adapter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{backend: backend, log: log.Named("store")}
	if err := a.Seed(ctx, defaults); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) Mode() Mode { return a.backend.Mode() }

func (a *Adapter) Close() error { return a.backend.Close() }

// Seed writes defaults into every collection that is empty. It runs at most
// once per adapter.
func (a *Adapter) Seed(ctx context.Context, defaults Defaults) error {
	a.seedOnce.Do(func() {
		a.seedErr = a.seed(ctx, defaults)
	})
	return a.seedErr
}

func (a *Adapter) seed(ctx context.Context, defaults Defaults) error {
	menu := make(map[string]any, len(defaults.MenuItems))
	for _, item := range defaults.MenuItems {
		menu[item.ID] = item
	}
	coupons := make(map[string]any, len(defaults.Coupons))
	for _, c := range defaults.Coupons {
		c.Code = coupon.Normalize(c.Code)
		coupons[c.Code] = c
	}
	config := map[string]any{}
	if defaults.StoreConfig != nil {
		config[StoreConfigID] = defaults.StoreConfig
	}

	for _, set := range []struct {
		collection string
		docs       map[string]any
	}{
		{CollectionMenuItems, menu},
		{CollectionCoupons, coupons},
		{CollectionStoreConfig, config},
	} {
		if len(set.docs) == 0 {
			continue
		}
		existing, err := a.backend.Get(ctx, set.collection)
		if err != nil {
			return fmt.Errorf("seed %s: %w", set.collection, err)
		}
		if len(existing) > 0 {
			continue
		}
		for id, doc := range set.docs {
			if err := a.put(ctx, set.collection, id, doc); err != nil {
				return fmt.Errorf("seed %s: %w", set.collection, err)
			}
		}
		a.log.Info("seeded collection", zap.String("collection", set.collection), zap.Int("documents", len(set.docs)))
	}
	return nil
}

func (a *Adapter) put(ctx context.Context, collection, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return a.backend.Set(ctx, collection, id, raw)
}

func (a *Adapter) exists(ctx context.Context, collection, id string) (bool, error) {
	docs, err := a.backend.Get(ctx, collection)
	if err != nil {
		return false, err
	}
	_, ok := docs[id]
	return ok, nil
}

func (a *Adapter) patch(ctx context.Context, collection, id string, patch any) error {
	ok, err := a.exists(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	fields, err := toFields(patch)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return a.backend.Merge(ctx, collection, id, fields)
}

// toFields turns a patch struct into the set of fields it carries.
func toFields(patch any) (map[string]any, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Menu items

func (a *Adapter) SubscribeMenuItems(ctx context.Context, fn func([]models.MenuItem)) (func(), error) {
	return a.backend.Watch(ctx, CollectionMenuItems, func(docs Documents) {
		fn(decodeMenu(docs, a.log))
	})
}

func (a *Adapter) AddMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := a.put(ctx, CollectionMenuItems, item.ID, item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (a *Adapter) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) error {
	return a.patch(ctx, CollectionMenuItems, id, patch)
}

func (a *Adapter) DeleteMenuItem(ctx context.Context, id string) error {
	return a.backend.Remove(ctx, CollectionMenuItems, id)
}

// Coupons

func (a *Adapter) SubscribeCoupons(ctx context.Context, fn func([]models.Coupon)) (func(), error) {
	return a.backend.Watch(ctx, CollectionCoupons, func(docs Documents) {
		fn(decodeCoupons(docs, a.log))
	})
}

func (a *Adapter) AddCoupon(ctx context.Context, c models.Coupon) (models.Coupon, error) {
	c.Code = coupon.Normalize(c.Code)
	ok, err := a.exists(ctx, CollectionCoupons, c.Code)
	if err != nil {
		return models.Coupon{}, err
	}
	if ok {
		return models.Coupon{}, fmt.Errorf("coupon %s: %w", c.Code, ErrConflict)
	}
	if err := a.put(ctx, CollectionCoupons, c.Code, c); err != nil {
		return models.Coupon{}, err
	}
	return c, nil
}

func (a *Adapter) UpdateCoupon(ctx context.Context, code string, patch models.CouponPatch) error {
	return a.patch(ctx, CollectionCoupons, coupon.Normalize(code), patch)
}

func (a *Adapter) DeleteCoupon(ctx context.Context, code string) error {
	return a.backend.Remove(ctx, CollectionCoupons, coupon.Normalize(code))
}

// Orders

// SubscribeOrders delivers orders newest first.
func (a *Adapter) SubscribeOrders(ctx context.Context, fn func([]models.Order)) (func(), error) {
	return a.backend.Watch(ctx, CollectionOrders, func(docs Documents) {
		fn(decodeOrders(docs, a.log))
	})
}

func (a *Adapter) AddOrder(ctx context.Context, order models.Order) error {
	return a.put(ctx, CollectionOrders, order.ID, order)
}

// UpdateOrderStatus writes the status field only.
func (a *Adapter) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	ok, err := a.exists(ctx, CollectionOrders, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return a.backend.Merge(ctx, CollectionOrders, id, map[string]any{"status": status})
}

// Store config

// SubscribeStoreConfig delivers the config whenever the document exists.
func (a *Adapter) SubscribeStoreConfig(ctx context.Context, fn func(models.StoreConfig)) (func(), error) {
	return a.backend.Watch(ctx, CollectionStoreConfig, func(docs Documents) {
		if cfg := decodeStoreConfig(docs, a.log); cfg != nil {
			fn(*cfg)
		}
	})
}

func (a *Adapter) UpdateStoreConfig(ctx context.Context, patch models.StoreConfigPatch) error {
	return a.patch(ctx, CollectionStoreConfig, StoreConfigID, patch)
}

// Snapshot reads every collection once.
func (a *Adapter) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	for _, collection := range Collections {
		docs, err := a.backend.Get(ctx, collection)
		if err != nil {
			return Snapshot{}, err
		}
		switch collection {
		case CollectionMenuItems:
			snap.MenuItems = decodeMenu(docs, a.log)
		case CollectionCoupons:
			snap.Coupons = decodeCoupons(docs, a.log)
		case CollectionOrders:
			snap.Orders = decodeOrders(docs, a.log)
		case CollectionStoreConfig:
			snap.StoreConfig = decodeStoreConfig(docs, a.log)
		}
	}
	return snap, nil
}

func decodeAll[T any](docs Documents, collection string, log *zap.Logger) []T {
	out := make([]T, 0, len(docs))
	for id, raw := range docs {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Warn("skipping malformed document", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

func decodeMenu(docs Documents, log *zap.Logger) []models.MenuItem {
	items := decodeAll[models.MenuItem](docs, CollectionMenuItems, log)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func decodeCoupons(docs Documents, log *zap.Logger) []models.Coupon {
	coupons := decodeAll[models.Coupon](docs, CollectionCoupons, log)
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].Code < coupons[j].Code })
	return coupons
}

func decodeOrders(docs Documents, log *zap.Logger) []models.Order {
	orders := decodeAll[models.Order](docs, CollectionOrders, log)
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders
}

func decodeStoreConfig(docs Documents, log *zap.Logger) *models.StoreConfig {
	raw, ok := docs[StoreConfigID]
	if !ok {
		return nil
	}
	var cfg models.StoreConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Warn("skipping malformed store config", zap.Error(err))
		return nil
	}
	return &cfg
}
