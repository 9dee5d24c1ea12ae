package storefront

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/cart"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/orders"
	"github.com/example/flashpizza/internal/pricing"
	"github.com/example/flashpizza/internal/session"
	"github.com/example/flashpizza/internal/utils"
)

var (
	ErrStoreClosed = errors.New("the store is closed right now")
	ErrEmptyCart   = errors.New("the cart is empty")
)

// FormErrors maps a checkout form field to what is wrong with it.
type FormErrors map[string]string

func (f FormErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = f[k]
	}
	return strings.Join(msgs, "; ")
}

// ValidateCustomer checks the delivery details a checkout needs.
func ValidateCustomer(c models.CustomerInfo) FormErrors {
	errs := FormErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "Name is required"
	}
	phone := strings.TrimSpace(c.Phone)
	switch {
	case phone == "":
		errs["phone"] = "Phone number is required"
	case !utils.ValidMobile(phone):
		errs["phone"] = "Enter a valid 10-digit phone number"
	}
	if strings.TrimSpace(c.Address) == "" {
		errs["address"] = "Address is required"
	}
	if c.Location == nil {
		errs["location"] = "Please share your location for delivery"
	}
	return errs
}

// NewOrderID derives an order id from the creation instant.
func NewOrderID(at time.Time) string {
	return "FP" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
}

// Checkout places the session's cart as a new order. The order carries a
// frozen copy of the cart lines; the cart is cleared afterwards.
func (s *Service) Checkout(ctx context.Context, sessionID string) (models.Order, error) {
	var placed models.Order
	_, err := s.mutate(ctx, sessionID, func(sess *session.Session) error {
		order, err := s.buildOrder(sess.Cart)
		if err != nil {
			return err
		}
		if err := s.catalog.AddOrder(ctx, order); err != nil {
			return fmt.Errorf("place order: %w", err)
		}

		sess.Cart = cart.Reduce(sess.Cart, cart.ClearCart{})
		sess.OrderIDs = append(sess.OrderIDs, order.ID)
		sess.Tracker = sess.Tracker.Track(order)
		placed = order
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("session_id", sessionID),
		zap.Float64("total", placed.Total),
		zap.String("payment_method", string(placed.PaymentMethod)),
	)
	if s.notes != nil {
		s.notes.ShowToast(sessionID, models.ToastSuccess, fmt.Sprintf("Order #%s placed successfully! 🍕", placed.ID))
		s.notes.SetForOrder(placed.ID, "Order Confirmed!",
			fmt.Sprintf("Your order #%s has been placed. Estimated delivery: 30-40 mins.", placed.ID))
	}
	return placed, nil
}

func (s *Service) buildOrder(state cart.State) (models.Order, error) {
	cfg := s.catalog.StoreConfig()
	if !cfg.IsOpen {
		return models.Order{}, ErrStoreClosed
	}
	if len(state.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	errs := ValidateCustomer(state.Customer)
	var distance float64
	if state.Customer.Location != nil {
		d, ok := pricing.WithinRadius(cfg, *state.Customer.Location)
		if !ok {
			errs["location"] = fmt.Sprintf("Sorry, we only deliver within %s km. Your location is %.1f km away.",
				strconv.FormatFloat(cfg.MaxDeliveryRadius, 'f', -1, 64), d)
		}
		distance = d
	}
	if !state.PaymentMethod.Valid() {
		errs["paymentMethod"] = "Choose a payment method"
	}
	if len(errs) > 0 {
		return models.Order{}, errs
	}

	now := s.now()
	totals := pricing.Calculate(state.Items, state.Discount, cfg)
	customer := state.Customer
	loc := *customer.Location
	customer.Location = &loc

	return models.Order{
		ID:             NewOrderID(now),
		Items:          state.Snapshot(),
		Customer:       customer,
		Subtotal:       totals.Subtotal,
		Discount:       totals.Discount,
		DeliveryCharge: totals.DeliveryCharge,
		Total:          totals.Total,
		CouponCode:     state.CouponCode,
		PaymentMethod:  state.PaymentMethod,
		Status:         models.OrderStatusNew,
		CreatedAt:      now,
		Distance:       distance,
	}, nil
}

// OrderView is an order as shown to the customer who placed it.
type OrderView struct {
	models.Order
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

func view(o models.Order) OrderView {
	v := OrderView{Order: o}
	if eta, ok := orders.EstimatedDelivery(o); ok {
		v.EstimatedDelivery = &eta
	}
	return v
}

// ActiveOrder reconciles the session's tracked order with the latest orders
// and returns it. The result is nil when nothing is tracked.
func (s *Service) ActiveOrder(ctx context.Context, sessionID string) (*OrderView, error) {
	var displayed *models.Order
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, changed := sess.Tracker.Observe(s.ownOrders(sess))
	if changed {
		sess.Tracker = next
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	displayed = next.Displayed
	if displayed == nil {
		return nil, nil
	}
	v := view(*displayed)
	return &v, nil
}

// Order returns one of the session's own orders.
func (s *Service) Order(ctx context.Context, sessionID, orderID string) (OrderView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return OrderView{}, err
	}
	order, ok := s.ownOrder(sess, orderID)
	if !ok {
		return OrderView{}, fmt.Errorf("%s: %w", orderID, ErrOrderNotFound)
	}
	return view(order), nil
}

// Orders returns the session's orders, newest first.
func (s *Service) Orders(ctx context.Context, sessionID string) ([]OrderView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	own := s.ownOrders(sess)
	out := make([]OrderView, len(own))
	for i, o := range own {
		out[i] = view(o)
	}
	return out, nil
}

func (s *Service) ownOrders(sess *session.Session) []models.Order {
	var own []models.Order
	for _, o := range s.catalog.Orders() {
		if sess.Owns(o.ID) {
			own = append(own, o)
		}
	}
	return own
}

// OrderIDs lists the orders placed by the session, for scoping notifications.
func (s *Service) OrderIDs(ctx context.Context, sessionID string) ([]string, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return append([]string{}, sess.OrderIDs...), nil
}
