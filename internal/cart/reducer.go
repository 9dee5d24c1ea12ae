// Package cart holds the checkout cart state machine. Sessions and pricing
// live with its callers.
package cart

import "github.com/example/flashpizza/internal/models"

// State is the cart of one checkout session.
type State struct {
	Items         []models.CartItem    `json:"items"`
	CouponCode    string               `json:"couponCode"`
	Discount      float64              `json:"discount"`
	Customer      models.CustomerInfo  `json:"customer"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// Initial returns the empty cart.
func Initial() State {
	return State{
		Items:         []models.CartItem{},
		PaymentMethod: models.PaymentMethodCOD,
	}
}

// Action is a cart transition.
type Action interface {
	apply(State) State
}

// AddItem bumps the quantity of a line already in the cart, or appends it.
type AddItem struct{ Item models.MenuItem }

// RemoveItem takes one off a line, dropping it at zero.
type RemoveItem struct{ ID string }

// SetQuantity sets a line exactly; zero or less removes it.
type SetQuantity struct {
	ID       string
	Quantity int
}

// ApplyCoupon records an already validated coupon and its discount.
type ApplyCoupon struct {
	Code     string
	Discount float64
}

type RemoveCoupon struct{}

// SetCustomer replaces the delivery details.
type SetCustomer struct{ Customer models.CustomerInfo }

type SetPaymentMethod struct{ Method models.PaymentMethod }

// ClearCart resets to Initial.
type ClearCart struct{}

// Reduce applies action to state and returns the next state. The input is never mutated.
func Reduce(state State, action Action) State {
	if action == nil {
		return state
	}
	return action.apply(state)
}

func (a AddItem) apply(s State) State {
	items := cloneItems(s.Items)
	if i := indexOf(items, a.Item.ID); i >= 0 {
		items[i].Quantity++
	} else {
		items = append(items, models.CartItem{MenuItem: a.Item, Quantity: 1})
	}
	s.Items = items
	return s
}

func (a RemoveItem) apply(s State) State {
	i := indexOf(s.Items, a.ID)
	if i < 0 {
		return s
	}
	items := cloneItems(s.Items)
	if items[i].Quantity > 1 {
		items[i].Quantity--
	} else {
		items = append(items[:i], items[i+1:]...)
	}
	s.Items = items
	return s
}

func (a SetQuantity) apply(s State) State {
	i := indexOf(s.Items, a.ID)
	if i < 0 {
		return s
	}
	items := cloneItems(s.Items)
	if a.Quantity <= 0 {
		items = append(items[:i], items[i+1:]...)
	} else {
		items[i].Quantity = a.Quantity
	}
	s.Items = items
	return s
}

func (a ApplyCoupon) apply(s State) State {
	s.CouponCode = a.Code
	s.Discount = a.Discount
	return s
}

func (RemoveCoupon) apply(s State) State {
	s.CouponCode = ""
	s.Discount = 0
	return s
}

func (a SetCustomer) apply(s State) State {
	s.Customer = cloneCustomer(a.Customer)
	return s
}

func (a SetPaymentMethod) apply(s State) State {
	s.PaymentMethod = a.Method
	return s
}

func (ClearCart) apply(State) State {
	return Initial()
}

// Quantity returns how many of id are in the cart.
func (s State) Quantity(id string) int {
	if i := indexOf(s.Items, id); i >= 0 {
		return s.Items[i].Quantity
	}
	return 0
}

// ItemCount is the total number of units in the cart.
func (s State) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// Snapshot returns deep copies of the cart lines, for freezing into an order.
func (s State) Snapshot() []models.CartItem {
	return cloneItems(s.Items)
}

func indexOf(items []models.CartItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}

func cloneCustomer(c models.CustomerInfo) models.CustomerInfo {
	if c.Location != nil {
		loc := *c.Location
		c.Location = &loc
	}
	return c
}
