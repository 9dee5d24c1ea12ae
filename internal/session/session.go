// Package session persists customer checkout sessions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/flashpizza/internal/cart"
	"github.com/example/flashpizza/internal/orders"
)

var ErrNotFound = errors.New("session not found")

// Session is one customer's cart and order tracking state.
type Session struct {
	ID        string         `json:"id"`
	Cart      cart.State     `json:"cart"`
	Tracker   orders.Tracker `json:"tracker"`
	OrderIDs  []string       `json:"orderIds"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// New returns an empty session with a fresh id.
func New() *Session {
	return &Session{
		ID:       uuid.NewString(),
		Cart:     cart.Initial(),
		OrderIDs: []string{},
	}
}

// Owns reports whether the session placed orderID.
func (s *Session) Owns(orderID string) bool {
	for _, id := range s.OrderIDs {
		if id == orderID {
			return true
		}
	}
	return false
}

// Store loads and saves sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
