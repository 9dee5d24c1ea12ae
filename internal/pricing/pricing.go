// Package pricing computes cart totals and delivery eligibility.
package pricing

import (
	"math"

	"github.com/example/flashpizza/internal/models"
)

// Totals is the derived price breakdown of a cart.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	Total          float64 `json:"total"`
	ItemCount      int     `json:"itemCount"`
}

// Subtotal sums price times quantity over the cart lines.
func Subtotal(lines []models.CartItem) float64 {
	var sum float64
	for _, line := range lines {
		sum += line.Price * float64(line.Quantity)
	}
	return sum
}

// DeliveryCharge is waived once the discounted amount reaches the free threshold.
func DeliveryCharge(subtotal, discount float64, cfg models.StoreConfig) float64 {
	if subtotal-discount >= cfg.FreeDeliveryThreshold {
		return 0
	}
	return cfg.DeliveryCharge
}

// Calculate derives the full breakdown. The discount must already be validated.
func Calculate(lines []models.CartItem, discount float64, cfg models.StoreConfig) Totals {
	subtotal := Subtotal(lines)
	delivery := DeliveryCharge(subtotal, discount, cfg)

	count := 0
	for _, line := range lines {
		count += line.Quantity
	}

	return Totals{
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryCharge: delivery,
		Total:          subtotal - discount + delivery,
		ItemCount:      count,
	}
}

// PercentageDiscount applies value percent to total, capped by maxDiscount when positive.
func PercentageDiscount(total, value, maxDiscount float64) float64 {
	discount := total * value / 100
	if maxDiscount > 0 {
		discount = math.Min(discount, maxDiscount)
	}
	return discount
}

const earthRadiusKm = 6371

// Distance returns the haversine distance between two points in kilometres.
func Distance(a, b models.Location) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports the distance from the store and whether it is deliverable.
func WithinRadius(cfg models.StoreConfig, to models.Location) (float64, bool) {
	d := Distance(cfg.Location, to)
	return d, d <= cfg.MaxDeliveryRadius
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
