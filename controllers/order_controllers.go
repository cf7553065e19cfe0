package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/middlewares"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Menu   *services.MenuService
}

func NewOrderController(svc *services.Container) *OrderController {
	return &OrderController{Orders: svc.Orders, Menu: svc.Menu}
}

// priceFromMenu overwrites name, price and category of every line that
// names a menu item with the menu's own values.
func priceFromMenu(ctx context.Context, menu *services.MenuService, items []services.SubmitItem) error {
	for i := range items {
		if items[i].MenuItemID == nil {
			continue
		}
		item, err := menu.Get(ctx, *items[i].MenuItemID)
		if err != nil {
			return err
		}
		if !item.IsAvailable {
			return errMenuItemUnavailable
		}
		items[i].Name = item.Name
		items[i].UnitPrice = item.Price
		items[i].Category = item.Category
		items[i].InventoryItemID = item.InventoryItemID
	}
	return nil
}

// Create -> POST /orders
func (oc *OrderController) Create(c *gin.Context) {
	var req services.SubmitOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := priceFromMenu(c.Request.Context(), oc.Menu, req.Items); err != nil {
		respondServiceError(c, err)
		return
	}
	res, err := oc.Orders.Submit(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order %d created for session %d", res.Order.ID, res.Order.ClientSessionID)
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", res)
}

// Tracking -> GET /orders/:order_id/tracking
func (oc *OrderController) Tracking(c *gin.Context) {
	id, ok := idParam(c, "order_id")
	if !ok {
		return
	}
	tracking, err := oc.Orders.Tracking(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order tracking", tracking)
}

func (oc *OrderController) KitchenQueue(c *gin.Context) {
	orders, err := oc.Orders.KitchenQueue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", orders)
}

// Advance -> POST /admin/orders/:order_id/advance
func (oc *OrderController) Advance(c *gin.Context) {
	id, ok := idParam(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.Advance(c.Request.Context(), id, c.GetString(middlewares.ContextRole))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// UpdateStatus -> PATCH /admin/orders/:order_id/status
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Orders.Transition(c.Request.Context(), id, req.Status, c.GetString(middlewares.ContextRole))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// List -> GET /admin/orders?status=&table_id=&from=&to=
func (oc *OrderController) List(c *gin.Context) {
	filter := services.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	if raw := c.Query("table_id"); raw != "" {
		tableID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errInvalidID)
			return
		}
		filter.TableID = uint(tableID)
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		*dst = &t
	}

	orders, err := oc.Orders.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) Get(c *gin.Context) {
	id, ok := idParam(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
