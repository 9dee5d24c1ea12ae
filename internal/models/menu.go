package models

// Category is one of the fixed menu sections.
type Category string

const (
	CategoryVeg       Category = "veg"
	CategoryNonVeg    Category = "non-veg"
	CategoryCombos    Category = "combos"
	CategoryBeverages Category = "beverages"
)

// Categories lists the menu sections in display priority order.
var Categories = []Category{CategoryVeg, CategoryNonVeg, CategoryCombos, CategoryBeverages}

// Priority returns the default listing rank of the category.
func (c Category) Priority() int {
	for i, cat := range Categories {
		if cat == c {
			return i + 1
		}
	}
	return len(Categories) + 1
}

type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"gt=0"`
	Image       string   `json:"image"`
	Category    Category `json:"category" validate:"required,oneof=veg non-veg combos beverages"`
	Description string   `json:"description,omitempty"`
	IsAvailable bool     `json:"isAvailable"`
	Rating      float64  `json:"rating,omitempty" validate:"gte=0,lte=5"`
	Popularity  float64  `json:"popularity,omitempty" validate:"gte=0"`
}

// MenuItemPatch carries a partial menu item update. Nil fields are left untouched.
type MenuItemPatch struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Image       *string   `json:"image,omitempty"`
	Category    *Category `json:"category,omitempty" validate:"omitempty,oneof=veg non-veg combos beverages"`
	Description *string   `json:"description,omitempty"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
	Rating      *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Popularity  *float64  `json:"popularity,omitempty" validate:"omitempty,gte=0"`
}

// Apply returns a copy of item with the patch fields written over it.
func (p MenuItemPatch) Apply(item MenuItem) MenuItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.IsAvailable != nil {
		item.IsAvailable = *p.IsAvailable
	}
	if p.Rating != nil {
		item.Rating = *p.Rating
	}
	if p.Popularity != nil {
		item.Popularity = *p.Popularity
	}
	return item
}
