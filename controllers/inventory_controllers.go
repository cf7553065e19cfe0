package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type InventoryController struct {
	Inventory *services.InventoryService
	Stock     *services.StockService
}

func NewInventoryController(svc *services.Container) *InventoryController {
	return &InventoryController{Inventory: svc.Inventory, Stock: svc.Stock}
}

func (ic *InventoryController) List(c *gin.Context) {
	items, err := ic.Inventory.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of inventory items", items)
}

func (ic *InventoryController) Get(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	item, err := ic.Inventory.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory item detail", item)
}

func (ic *InventoryController) Create(c *gin.Context) {
	var req services.InventoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := ic.Inventory.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Inventory item created successfully", item)
}

func (ic *InventoryController) Update(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	var req services.InventoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := ic.Inventory.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory item updated successfully", item)
}

// Adjust -> POST /admin/inventory/:item_id/adjust
func (ic *InventoryController) Adjust(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	var req services.AdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := ic.Inventory.Adjust(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock adjusted", item)
}

func (ic *InventoryController) Movements(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	movements, err := ic.Stock.Movements(c.Request.Context(), id, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock movements", movements)
}

func (ic *InventoryController) LowStock(c *gin.Context) {
	items, err := ic.Inventory.LowStock(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Low stock items", items)
}

// Stale -> GET /admin/inventory/stale?days=
func (ic *InventoryController) Stale(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			utils.RespondError(c, http.StatusBadRequest, errInvalidDays)
			return
		}
		days = v
	}
	stale, err := ic.Inventory.StaleProducts(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stale products", stale)
}

func (ic *InventoryController) Recipes(c *gin.Context) {
	id, ok := idParam(c, "menu_id")
	if !ok {
		return
	}
	recipes, err := ic.Inventory.Recipes(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipes", recipes)
}

func (ic *InventoryController) AddRecipe(c *gin.Context) {
	id, ok := idParam(c, "menu_id")
	if !ok {
		return
	}
	var req services.RecipeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	recipe, err := ic.Inventory.AddRecipe(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Recipe added", recipe)
}

func (ic *InventoryController) DeleteRecipe(c *gin.Context) {
	menuID, ok := idParam(c, "menu_id")
	if !ok {
		return
	}
	recipeID, ok := idParam(c, "recipe_id")
	if !ok {
		return
	}
	if err := ic.Inventory.DeleteRecipe(c.Request.Context(), menuID, recipeID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipe removed", nil)
}
