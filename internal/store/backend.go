// Package store is the persistence adapter shared by the storefront and the
// admin. One Backend interface hides whether documents live in a realtime
// push store or in polled local snapshot files.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names of the document schema.
const (
	CollectionMenuItems   = "menuItems"
	CollectionCoupons     = "coupons"
	CollectionOrders      = "orders"
	CollectionStoreConfig = "storeConfig"

	// StoreConfigID is the id of the singleton store config document.
	StoreConfigID = "default"
)

// Collections lists every synchronized collection.
var Collections = []string{CollectionMenuItems, CollectionCoupons, CollectionOrders, CollectionStoreConfig}

// Mode names the persistence strategy in use.
type Mode string

const (
	ModeRealtime Mode = "realtime"
	ModeLocal    Mode = "local"
)

var ErrClosed = errors.New("store: backend closed")

// Documents maps document id to its JSON body.
type Documents map[string]json.RawMessage

// Clone returns a copy of the map. Bodies are treated as immutable and shared.
func (d Documents) Clone() Documents {
	if d == nil {
		return nil
	}
	out := make(Documents, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Backend is the capability both persistence strategies implement.
//
// Watch delivers the full collection immediately and again after every
// change; each delivery replaces the previous one. Watch callbacks must not
// write to the backend synchronously.
type Backend interface {
	Mode() Mode
	Get(ctx context.Context, collection string) (Documents, error)
	Set(ctx context.Context, collection, id string, doc json.RawMessage) error
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	Remove(ctx context.Context, collection, id string) error
	Watch(ctx context.Context, collection string, fn func(Documents)) (func(), error)
	Close() error
}

// mergeFields shallow-merges fields into doc. A nil field value deletes the key.
func mergeFields(doc json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	current := map[string]json.RawMessage{}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &current); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		if v == nil {
			delete(current, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		current[k] = raw
	}
	return json.Marshal(current)
}
