package seed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/seed"
	"github.com/example/flashpizza/internal/utils"
)

func TestDefaults_AreValid(t *testing.T) {
	defaults := seed.Defaults()
	require.NotNil(t, defaults.StoreConfig)

	ids := map[string]bool{}
	for _, item := range defaults.MenuItems {
		assert.NoError(t, utils.Validator().Struct(item), item.ID)
		assert.False(t, ids[item.ID], "duplicate id %s", item.ID)
		ids[item.ID] = true
	}

	for _, c := range defaults.Coupons {
		assert.NoError(t, utils.Validator().Struct(c), c.Code)
	}
	assert.Equal(t, 300.0, defaults.StoreConfig.FreeDeliveryThreshold)
	assert.Equal(t, 35.0, defaults.StoreConfig.DeliveryCharge)
}

func TestDefaults_ReturnsFreshCopies(t *testing.T) {
	a := seed.Defaults()
	a.MenuItems[0].Price = 1
	a.StoreConfig.IsOpen = false

	b := seed.Defaults()
	assert.NotEqual(t, 1.0, b.MenuItems[0].Price)
	assert.True(t, b.StoreConfig.IsOpen)
}

func TestDefaults_CoverEveryCategory(t *testing.T) {
	seen := map[models.Category]bool{}
	for _, item := range seed.MenuItems() {
		seen[item.Category] = true
	}
	for _, cat := range models.Categories {
		assert.True(t, seen[cat], string(cat))
	}
}
