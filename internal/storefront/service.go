// Package storefront runs the customer side: the cart of each session,
// checkout and following the placed order.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/cart"
	"github.com/example/flashpizza/internal/coupon"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/pricing"
	"github.com/example/flashpizza/internal/session"
)

var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrNotInCart       = errors.New("item is not in the cart")
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidPayment  = errors.New("unknown payment method")
)

// Catalog is the synchronized data the storefront reads and the one write it makes.
type Catalog interface {
	MenuItem(id string) (models.MenuItem, bool)
	Coupons() []models.Coupon
	StoreConfig() models.StoreConfig
	Orders() []models.Order
	Order(id string) (models.Order, bool)
	AddOrder(ctx context.Context, order models.Order) error
}

// Summary is a cart with its derived prices.
type Summary struct {
	SessionID string         `json:"sessionId"`
	Cart      cart.State     `json:"cart"`
	Totals    pricing.Totals `json:"totals"`
}

type Service struct {
	catalog  Catalog
	sessions session.Store
	notes    *notifications.Center
	log      *zap.Logger
	now      func() time.Time

	locks sync.Map
}

func NewService(catalog Catalog, sessions session.Store, notes *notifications.Center, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog:  catalog,
		sessions: sessions,
		notes:    notes,
		log:      log.Named("storefront"),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Open starts a new session with an empty cart.
func (s *Service) Open(ctx context.Context) (Summary, error) {
	sess := session.New()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Summary{}, fmt.Errorf("save session: %w", err)
	}
	return s.summary(sess), nil
}

func (s *Service) Cart(ctx context.Context, sessionID string) (Summary, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return s.summary(sess), nil
}

func (s *Service) AddItem(ctx context.Context, sessionID, itemID string) (Summary, error) {
	item, ok := s.catalog.MenuItem(itemID)
	if !ok {
		return Summary{}, fmt.Errorf("%s: %w", itemID, ErrItemNotFound)
	}
	if !item.IsAvailable {
		return Summary{}, fmt.Errorf("%s: %w", item.Name, ErrItemUnavailable)
	}
	return s.dispatch(ctx, sessionID, cart.AddItem{Item: item})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) (Summary, error) {
	return s.mutate(ctx, sessionID, func(sess *session.Session) error {
		if sess.Cart.Quantity(itemID) == 0 {
			return fmt.Errorf("%s: %w", itemID, ErrNotInCart)
		}
		sess.Cart = cart.Reduce(sess.Cart, cart.RemoveItem{ID: itemID})
		return nil
	})
}

func (s *Service) SetQuantity(ctx context.Context, sessionID, itemID string, quantity int) (Summary, error) {
	return s.mutate(ctx, sessionID, func(sess *session.Session) error {
		if sess.Cart.Quantity(itemID) == 0 {
			return fmt.Errorf("%s: %w", itemID, ErrNotInCart)
		}
		sess.Cart = cart.Reduce(sess.Cart, cart.SetQuantity{ID: itemID, Quantity: quantity})
		return nil
	})
}

// ApplyCoupon validates code against the current subtotal. A rejection
// leaves the cart untouched and is returned as a *coupon.Rejection.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (Summary, coupon.Result, error) {
	var result coupon.Result
	summary, err := s.mutate(ctx, sessionID, func(sess *session.Session) error {
		subtotal := pricing.Subtotal(sess.Cart.Items)
		res, err := coupon.Validate(s.catalog.Coupons(), code, subtotal, s.now())
		if err != nil {
			return err
		}
		result = res
		sess.Cart = cart.Reduce(sess.Cart, cart.ApplyCoupon{Code: res.Code, Discount: res.Discount})
		return nil
	})
	return summary, result, err
}

func (s *Service) RemoveCoupon(ctx context.Context, sessionID string) (Summary, error) {
	return s.dispatch(ctx, sessionID, cart.RemoveCoupon{})
}

func (s *Service) SetCustomer(ctx context.Context, sessionID string, info models.CustomerInfo) (Summary, error) {
	return s.dispatch(ctx, sessionID, cart.SetCustomer{Customer: info})
}

func (s *Service) SetPaymentMethod(ctx context.Context, sessionID string, method models.PaymentMethod) (Summary, error) {
	if !method.Valid() {
		return Summary{}, fmt.Errorf("%q: %w", method, ErrInvalidPayment)
	}
	return s.dispatch(ctx, sessionID, cart.SetPaymentMethod{Method: method})
}

func (s *Service) Clear(ctx context.Context, sessionID string) (Summary, error) {
	return s.dispatch(ctx, sessionID, cart.ClearCart{})
}

// Reorder adds every line of a past order again, at current menu prices.
// Lines whose item is gone or unavailable are skipped and returned by name.
func (s *Service) Reorder(ctx context.Context, sessionID, orderID string) (Summary, []string, error) {
	var skipped []string
	summary, err := s.mutate(ctx, sessionID, func(sess *session.Session) error {
		order, ok := s.ownOrder(sess, orderID)
		if !ok {
			return fmt.Errorf("%s: %w", orderID, ErrOrderNotFound)
		}
		for _, line := range order.Items {
			item, ok := s.catalog.MenuItem(line.ID)
			if !ok || !item.IsAvailable {
				skipped = append(skipped, line.Name)
				continue
			}
			for i := 0; i < line.Quantity; i++ {
				sess.Cart = cart.Reduce(sess.Cart, cart.AddItem{Item: item})
			}
		}
		return nil
	})
	return summary, skipped, err
}

func (s *Service) dispatch(ctx context.Context, sessionID string, action cart.Action) (Summary, error) {
	return s.mutate(ctx, sessionID, func(sess *session.Session) error {
		sess.Cart = cart.Reduce(sess.Cart, action)
		return nil
	})
}

// mutate loads the session, applies fn and saves it. Calls for one session
// are serialized; a failing fn leaves the stored session unchanged.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*session.Session) error) (Summary, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	if err := fn(sess); err != nil {
		return s.summary(sess), err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Summary{}, fmt.Errorf("save session: %w", err)
	}
	return s.summary(sess), nil
}

func (s *Service) lock(sessionID string) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) summary(sess *session.Session) Summary {
	return Summary{
		SessionID: sess.ID,
		Cart:      sess.Cart,
		Totals:    pricing.Calculate(sess.Cart.Items, sess.Cart.Discount, s.catalog.StoreConfig()),
	}
}

func (s *Service) ownOrder(sess *session.Session, orderID string) (models.Order, bool) {
	if !sess.Owns(orderID) {
		return models.Order{}, false
	}
	return s.catalog.Order(orderID)
}
