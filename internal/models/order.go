package models

import "time"

type OrderStatus string

const (
	OrderStatusNew            OrderStatus = "new"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusOutForDelivery,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentMethodUPI PaymentMethod = "upi"
	PaymentMethodCOD PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodUPI || m == PaymentMethodCOD
}

type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type CustomerInfo struct {
	Name     string    `json:"name" validate:"required"`
	Phone    string    `json:"phone" validate:"required,inmobile"`
	Address  string    `json:"address" validate:"required"`
	Location *Location `json:"location" validate:"required"`
}

// CartItem is a menu item snapshot with a quantity.
type CartItem struct {
	MenuItem
	Quantity int `json:"quantity"`
}

// Order items are a frozen copy of the cart lines at placement time.
type Order struct {
	ID             string        `json:"id"`
	Items          []CartItem    `json:"items"`
	Customer       CustomerInfo  `json:"customer"`
	Subtotal       float64       `json:"subtotal"`
	Discount       float64       `json:"discount"`
	DeliveryCharge float64       `json:"deliveryCharge"`
	Total          float64       `json:"total"`
	CouponCode     string        `json:"couponCode,omitempty"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	Status         OrderStatus   `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	Distance       float64       `json:"distance"`
}

// ShortID is the trailing part of the id shown to admins and customers.
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}
