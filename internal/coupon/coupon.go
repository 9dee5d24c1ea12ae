// Package coupon validates discount codes against the current coupon set.
package coupon

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/pricing"
)

var (
	ErrNotFound     = errors.New("coupon not found")
	ErrInactive     = errors.New("coupon inactive")
	ErrExpired      = errors.New("coupon expired")
	ErrBelowMinimum = errors.New("order below coupon minimum")
)

// Rejection is returned when a code cannot be applied. Message is shown to the customer.
type Rejection struct {
	Reason  error
	Code    string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error { return r.Reason }

// Result describes an accepted coupon.
type Result struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	Message  string  `json:"message"`
}

// Normalize is the canonical stored form of a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Find looks a code up case-insensitively.
func Find(coupons []models.Coupon, code string) (models.Coupon, bool) {
	want := Normalize(code)
	for _, c := range coupons {
		if Normalize(c.Code) == want {
			return c, true
		}
	}
	return models.Coupon{}, false
}

// Validate checks code against coupons for an order subtotal at instant now.
func Validate(coupons []models.Coupon, code string, subtotal float64, now time.Time) (Result, error) {
	c, ok := Find(coupons, code)
	if !ok {
		return Result{}, &Rejection{Reason: ErrNotFound, Code: code, Message: "Invalid coupon code"}
	}
	if !c.IsActive {
		return Result{}, &Rejection{Reason: ErrInactive, Code: c.Code, Message: "This coupon is no longer active"}
	}
	if c.ExpiresAt.Before(now) {
		return Result{}, &Rejection{Reason: ErrExpired, Code: c.Code, Message: "This coupon has expired"}
	}
	if subtotal < c.MinOrder {
		return Result{}, &Rejection{
			Reason:  ErrBelowMinimum,
			Code:    c.Code,
			Message: fmt.Sprintf("Minimum order amount is ₹%s", Amount(c.MinOrder)),
		}
	}

	discount := Discount(c, subtotal)
	return Result{
		Code:     c.Code,
		Discount: discount,
		Message:  fmt.Sprintf("₹%s discount applied!", Amount(discount)),
	}, nil
}

// Discount computes the amount c takes off subtotal, ignoring eligibility.
func Discount(c models.Coupon, subtotal float64) float64 {
	if c.Type == models.CouponTypePercentage {
		return pricing.PercentageDiscount(subtotal, c.Value, c.MaxDiscount)
	}
	return c.Value
}

// Amount formats a rupee amount without a trailing ".00" for whole values.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
