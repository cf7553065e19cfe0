package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/models"
)

func TestDrawVolume(t *testing.T) {
	tests := []struct {
		name                   string
		bottles                int
		open, volume, amount   float64
		wantBottles            int
		wantOpen, wantShortage float64
	}{
		{"served from open bottle", 2, 300, 750, 50, 2, 250, 0},
		{"opens a sealed bottle", 2, 100, 750, 300, 1, 550, 0},
		{"exactly empties open bottle", 1, 50, 750, 50, 1, 0, 0},
		{"opens several bottles", 3, 0, 100, 250, 0, 50, 0},
		{"runs dry", 0, 100, 750, 300, 0, 0, 200},
		{"nothing to draw", 4, 10, 750, 0, 4, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bottles, open, shortage := DrawVolume(tt.bottles, tt.open, tt.volume, tt.amount)
			assert.Equal(t, tt.wantBottles, bottles)
			assert.InDelta(t, tt.wantOpen, open, 0.001)
			assert.InDelta(t, tt.wantShortage, shortage, 0.001)
		})
	}
}

func TestSubmitDecrementsRecipeAndDirectStock(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()

	gin, err := svc.Inventory.Create(ctx, InventoryInput{
		Name: "Gin", StockMode: models.StockModeBottle,
		BottleCount: intPtr(2), OpenBottleML: floatPtr(100), BottleVolumeML: floatPtr(750),
	})
	require.NoError(t, err)
	tonic, err := svc.Inventory.Create(ctx, InventoryInput{Name: "Tônica", StockMode: models.StockModeUnit, StockQuantity: intPtr(10)})
	require.NoError(t, err)
	beer, err := svc.Inventory.Create(ctx, InventoryInput{Name: "Cerveja lata", StockMode: models.StockModeUnit, StockQuantity: intPtr(1)})
	require.NoError(t, err)

	drink, err := svc.Menu.Create(ctx, MenuItemInput{Name: "Gin tônica", Category: "drinks", Price: 32})
	require.NoError(t, err)
	_, err = svc.Inventory.AddRecipe(ctx, drink.ID, RecipeInput{IngredientID: gin.ID, QuantityML: floatPtr(50)})
	require.NoError(t, err)
	_, err = svc.Inventory.AddRecipe(ctx, drink.ID, RecipeInput{IngredientID: tonic.ID, QuantityUnits: intPtr(1)})
	require.NoError(t, err)

	table := createTable(t, db, 1, true)
	session := createSession(t, svc, table.ID, "Ana")

	res, err := svc.Orders.Submit(ctx, SubmitOrderInput{SessionID: session.ID, Items: []SubmitItem{
		{Name: "Gin tônica", UnitPrice: 32, Quantity: 3, Category: "drinks", MenuItemID: uintPtr(drink.ID)},
		{Name: "Cerveja lata", UnitPrice: 9, Quantity: 2, Category: "bebidas", InventoryItemID: uintPtr(beer.ID)},
		{Name: "Fantasma", UnitPrice: 1, Quantity: 1, Category: "x", InventoryItemID: uintPtr(9999)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.StockFailures)
	assert.Len(t, res.Order.OrderItems, 3)

	gin, err = svc.Inventory.Get(ctx, gin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *gin.BottleCount)
	assert.InDelta(t, 700, *gin.OpenBottleML, 0.001)

	tonic, err = svc.Inventory.Get(ctx, tonic.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, *tonic.StockQuantity)

	beer, err = svc.Inventory.Get(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *beer.StockQuantity)

	var movements []models.StockMovement
	require.NoError(t, db.Where("order_id = ?", res.Order.ID).Order("id ASC").Find(&movements).Error)
	require.Len(t, movements, 3)
	assert.Equal(t, models.UnitML, movements[0].Unit)
	assert.InDelta(t, 150, movements[0].Quantity, 0.001)
	assert.InDelta(t, 1600, movements[0].StockBefore, 0.001)
	assert.InDelta(t, 1450, movements[0].StockAfter, 0.001)
	for _, m := range movements {
		assert.Equal(t, models.MovementSale, m.Kind)
	}
}

func TestAdjustRespectsStockMode(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()

	rum, err := svc.Inventory.Create(ctx, InventoryInput{
		Name: "Rum", StockMode: models.StockModeBottle, BottleCount: intPtr(1), BottleVolumeML: floatPtr(1000),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0, *rum.OpenBottleML, 0.001)

	_, err = svc.Inventory.Adjust(ctx, rum.ID, AdjustInput{StockQuantity: intPtr(3)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Inventory.Adjust(ctx, rum.ID, AdjustInput{OpenBottleML: floatPtr(1500)})
	assert.ErrorIs(t, err, ErrValidation)

	rum, err = svc.Inventory.Adjust(ctx, rum.ID, AdjustInput{BottleCount: intPtr(4), OpenBottleML: floatPtr(250), Reason: "contagem"})
	require.NoError(t, err)
	assert.InDelta(t, 4250, rum.StockLevel(), 0.001)

	var movement models.StockMovement
	require.NoError(t, db.Where("inventory_item_id = ? AND kind = ?", rum.ID, models.MovementAdjustment).First(&movement).Error)
	assert.InDelta(t, 3250, movement.Quantity, 0.001)
	assert.Equal(t, "contagem", movement.Reason)
}
