package state

import (
	"sort"

	"github.com/example/flashpizza/internal/models"
)

// Menu sort orders.
const (
	SortPriceLow   = "price-low"
	SortPriceHigh  = "price-high"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

// MenuQuery filters the customer menu. Zero values mean no filter.
type MenuQuery struct {
	Category  models.Category
	VegOnly   bool
	MinRating float64
	Sort      string
}

// Menu returns the available items matching q.
func (c *Container) Menu(q MenuQuery) []models.MenuItem {
	return FilterMenu(c.MenuItems(), q)
}

// FilterMenu applies q to items. Without an explicit sort and category the
// items are grouped by category priority.
func FilterMenu(items []models.MenuItem, q MenuQuery) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		if q.Category != "" && item.Category != q.Category {
			continue
		}
		if q.VegOnly && item.Category != models.CategoryVeg && item.Category != models.CategoryBeverages {
			continue
		}
		if q.MinRating > 0 && item.Rating < q.MinRating {
			continue
		}
		out = append(out, item)
	}

	var less func(a, b models.MenuItem) bool
	switch q.Sort {
	case SortPriceLow:
		less = func(a, b models.MenuItem) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b models.MenuItem) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b models.MenuItem) bool { return a.Rating > b.Rating }
	case SortPopularity:
		less = func(a, b models.MenuItem) bool { return a.Popularity > b.Popularity }
	default:
		if q.Category == "" {
			less = func(a, b models.MenuItem) bool { return a.Category.Priority() < b.Category.Priority() }
		}
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// ValidSort reports whether s names a known sort order.
func ValidSort(s string) bool {
	switch s {
	case "", SortPriceLow, SortPriceHigh, SortRating, SortPopularity:
		return true
	}
	return false
}
