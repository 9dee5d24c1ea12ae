package models

import "sort"

type Banner struct {
	ID       string `json:"id"`
	Image    string `json:"image" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle,omitempty"`
	IsActive bool   `json:"isActive"`
	Order    int    `json:"order"`
}

// StoreConfig is the singleton document of store-wide settings.
type StoreConfig struct {
	Name                  string   `json:"name"`
	Phone                 string   `json:"phone"`
	UPIID                 string   `json:"upiId"`
	Location              Location `json:"location"`
	MaxDeliveryRadius     float64  `json:"maxDeliveryRadius"`
	FreeDeliveryThreshold float64  `json:"freeDeliveryThreshold"`
	DeliveryCharge        float64  `json:"deliveryCharge"`
	BannerImage           string   `json:"bannerImage"`
	OfferText             string   `json:"offerText"`
	IsOpen                bool     `json:"isOpen"`
	Banners               []Banner `json:"banners,omitempty"`
}

// ActiveBanners returns active banners ordered by their order field. With no
// active banner the legacy bannerImage/offerText pair is used when set.
func (c StoreConfig) ActiveBanners() []Banner {
	active := make([]Banner, 0, len(c.Banners))
	for _, b := range c.Banners {
		if b.IsActive {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Order < active[j].Order })

	if len(active) == 0 && c.BannerImage != "" {
		return []Banner{{
			ID:       "legacy",
			Image:    c.BannerImage,
			Title:    c.OfferText,
			IsActive: true,
		}}
	}
	return active
}

type StoreConfigPatch struct {
	Name                  *string   `json:"name,omitempty"`
	Phone                 *string   `json:"phone,omitempty"`
	UPIID                 *string   `json:"upiId,omitempty"`
	Location              *Location `json:"location,omitempty"`
	MaxDeliveryRadius     *float64  `json:"maxDeliveryRadius,omitempty" validate:"omitempty,gt=0"`
	FreeDeliveryThreshold *float64  `json:"freeDeliveryThreshold,omitempty" validate:"omitempty,gte=0"`
	DeliveryCharge        *float64  `json:"deliveryCharge,omitempty" validate:"omitempty,gte=0"`
	BannerImage           *string   `json:"bannerImage,omitempty"`
	OfferText             *string   `json:"offerText,omitempty"`
	IsOpen                *bool     `json:"isOpen,omitempty"`
	Banners               *[]Banner `json:"banners,omitempty" validate:"omitempty,dive"`
}

func (p StoreConfigPatch) Apply(c StoreConfig) StoreConfig {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.UPIID != nil {
		c.UPIID = *p.UPIID
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.MaxDeliveryRadius != nil {
		c.MaxDeliveryRadius = *p.MaxDeliveryRadius
	}
	if p.FreeDeliveryThreshold != nil {
		c.FreeDeliveryThreshold = *p.FreeDeliveryThreshold
	}
	if p.DeliveryCharge != nil {
		c.DeliveryCharge = *p.DeliveryCharge
	}
	if p.BannerImage != nil {
		c.BannerImage = *p.BannerImage
	}
	if p.OfferText != nil {
		c.OfferText = *p.OfferText
	}
	if p.IsOpen != nil {
		c.IsOpen = *p.IsOpen
	}
	if p.Banners != nil {
		c.Banners = append([]Banner(nil), (*p.Banners)...)
	}
	return c
}
