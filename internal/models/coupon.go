package models

import "time"

type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFlat       CouponType = "flat"
)

// Coupon is keyed by its code. MaxDiscount of zero means uncapped.
type Coupon struct {
	Code        string     `json:"code" validate:"required,max=32"`
	Type        CouponType `json:"type" validate:"required,oneof=percentage flat"`
	Value       float64    `json:"value" validate:"gt=0"`
	MinOrder    float64    `json:"minOrder" validate:"gte=0"`
	MaxDiscount float64    `json:"maxDiscount,omitempty" validate:"gte=0"`
	IsActive    bool       `json:"isActive"`
	ExpiresAt   time.Time  `json:"expiresAt" validate:"required"`
}

type CouponPatch struct {
	Type        *CouponType `json:"type,omitempty" validate:"omitempty,oneof=percentage flat"`
	Value       *float64    `json:"value,omitempty" validate:"omitempty,gt=0"`
	MinOrder    *float64    `json:"minOrder,omitempty" validate:"omitempty,gte=0"`
	MaxDiscount *float64    `json:"maxDiscount,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool       `json:"isActive,omitempty"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
}

func (p CouponPatch) Apply(c Coupon) Coupon {
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.MinOrder != nil {
		c.MinOrder = *p.MinOrder
	}
	if p.MaxDiscount != nil {
		c.MaxDiscount = *p.MaxDiscount
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.ExpiresAt != nil {
		c.ExpiresAt = *p.ExpiresAt
	}
	return c
}
