// Package seed holds the built-in dataset written on first run.
package seed

import (
	"time"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/store"
)

var couponExpiry = time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)

// Defaults returns a fresh copy of the default dataset.
func Defaults() store.Defaults {
	cfg := StoreConfig()
	return store.Defaults{
		MenuItems:   MenuItems(),
		Coupons:     Coupons(),
		StoreConfig: &cfg,
	}
}

func StoreConfig() models.StoreConfig {
	return models.StoreConfig{
		Name:                  "Flash Pizza",
		Phone:                 "+919876543210",
		UPIID:                 "flashpizza@upi",
		Location:              models.Location{Lat: 12.9716, Lng: 77.5946},
		MaxDeliveryRadius:     5,
		FreeDeliveryThreshold: 300,
		DeliveryCharge:        35,
		BannerImage:           "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=1200&q=80",
		OfferText:             "🔥 Flat 20% OFF on orders above ₹500!",
		IsOpen:                true,
	}
}

func Coupons() []models.Coupon {
	return []models.Coupon{
		{Code: "FLASH20", Type: models.CouponTypePercentage, Value: 20, MinOrder: 500, MaxDiscount: 150, IsActive: true, ExpiresAt: couponExpiry},
		{Code: "FLAT50", Type: models.CouponTypeFlat, Value: 50, MinOrder: 300, IsActive: true, ExpiresAt: couponExpiry},
		{Code: "WELCOME", Type: models.CouponTypePercentage, Value: 15, MinOrder: 200, MaxDiscount: 100, IsActive: true, ExpiresAt: couponExpiry},
	}
}

func MenuItems() []models.MenuItem {
	const img = "https://images.unsplash.com/"
	return []models.MenuItem{
		{ID: "b1", Name: "Coca-Cola", Price: 60, Image: img + "photo-1554866585-cd94860890b7?w=400&q=80", Category: models.CategoryBeverages, Description: "Chilled 500ml bottle", IsAvailable: true, Rating: 4.5, Popularity: 90},
		{ID: "b2", Name: "Fresh Lime Soda", Price: 49, Image: img + "photo-1513558161293-cdaf765ed2fd?w=400&q=80", Category: models.CategoryBeverages, Description: "Refreshing lime soda with mint", IsAvailable: true, Rating: 4.3, Popularity: 85},
		{ID: "b3", Name: "Mango Shake", Price: 89, Image: img + "photo-1546173159-315724a31696?w=400&q=80", Category: models.CategoryBeverages, Description: "Thick and creamy mango shake", IsAvailable: true, Rating: 4.7, Popularity: 95},

		{ID: "v1", Name: "Margherita Pizza", Price: 199, Image: img + "photo-1574071318508-1cdbab80d002?w=400&q=80", Category: models.CategoryVeg, Description: "Classic tomato sauce with mozzarella cheese", IsAvailable: true, Rating: 4.5, Popularity: 95},
		{ID: "v2", Name: "Paneer Tikka Pizza", Price: 279, Image: img + "photo-1565299624946-b28f40a0ae38?w=400&q=80", Category: models.CategoryVeg, Description: "Spicy paneer with bell peppers and onions", IsAvailable: true, Rating: 4.6, Popularity: 88},
		{ID: "v3", Name: "Veggie Supreme", Price: 299, Image: img + "photo-1571407970349-bc81e7e96d47?w=400&q=80", Category: models.CategoryVeg, Description: "Loaded with fresh vegetables and herbs", IsAvailable: true, Rating: 4.4, Popularity: 82},
		{ID: "v4", Name: "Cheese Burst", Price: 329, Image: img + "photo-1588315029754-2dd089d39a1a?w=400&q=80", Category: models.CategoryVeg, Description: "Extra cheese stuffed crust", IsAvailable: true, Rating: 4.8, Popularity: 98},

		{ID: "nv1", Name: "Chicken Tikka Pizza", Price: 329, Image: img + "photo-1565299507177-b0ac66763828?w=400&q=80", Category: models.CategoryNonVeg, Description: "Tandoori chicken with special spices", IsAvailable: true, Rating: 4.7, Popularity: 92},
		{ID: "nv2", Name: "Pepperoni Classic", Price: 349, Image: img + "photo-1628840042765-356cda07504e?w=400&q=80", Category: models.CategoryNonVeg, Description: "Classic pepperoni with mozzarella", IsAvailable: true, Rating: 4.5, Popularity: 90},
		{ID: "nv3", Name: "BBQ Chicken", Price: 379, Image: img + "photo-1594007654729-407eedc4be65?w=400&q=80", Category: models.CategoryNonVeg, Description: "Smoky BBQ chicken with caramelized onions", IsAvailable: true, Rating: 4.6, Popularity: 87},
		{ID: "nv4", Name: "Meat Feast", Price: 429, Image: img + "photo-1520201163981-8cc95007dd2a?w=400&q=80", Category: models.CategoryNonVeg, Description: "Loaded with chicken, pepperoni & sausage", IsAvailable: true, Rating: 4.8, Popularity: 94},

		{ID: "c1", Name: "Party Pack (2 Medium)", Price: 499, Image: img + "photo-1593560708920-61dd98c46a4e?w=400&q=80", Category: models.CategoryCombos, Description: "2 medium pizzas of your choice", IsAvailable: true, Rating: 4.6, Popularity: 85},
		{ID: "c2", Name: "Family Feast", Price: 799, Image: img + "photo-1606502281004-f86cf1282e29?w=400&q=80", Category: models.CategoryCombos, Description: "2 large pizzas + garlic bread + coke", IsAvailable: true, Rating: 4.7, Popularity: 91},
		{ID: "c3", Name: "Date Night Combo", Price: 599, Image: img + "photo-1513104890138-7c749659a591?w=400&q=80", Category: models.CategoryCombos, Description: "1 large pizza + pasta + 2 drinks", IsAvailable: true, Rating: 4.5, Popularity: 88},
	}
}
