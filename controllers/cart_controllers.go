package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/cart"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type CartController struct {
	Carts    *services.CartService
	Sessions *services.SessionService
	Menu     *services.MenuService
}

func NewCartController(svc *services.Container) *CartController {
	return &CartController{Carts: svc.Carts, Sessions: svc.Sessions, Menu: svc.Menu}
}

// activeSession loads the path session and rejects closed ones.
func (cc *CartController) activeSession(c *gin.Context) (*models.ClientSession, bool) {
	id, ok := idParam(c, "session_id")
	if !ok {
		return nil, false
	}
	session, err := cc.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if !session.IsActive {
		respondServiceError(c, services.ErrSessionInactive)
		return nil, false
	}
	return session, true
}

func (cc *CartController) Get(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", cc.Carts.Get(session.ID))
}

// AddItem accepts either a menu_item_id or an explicit name, price and
// category.
func (cc *CartController) AddItem(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	var req struct {
		MenuItemID *uint `json:"menu_item_id"`
		cart.Entry
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry := req.Entry
	if req.MenuItemID != nil {
		item, err := cc.Menu.Get(c.Request.Context(), *req.MenuItemID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !item.IsAvailable {
			utils.RespondError(c, http.StatusUnprocessableEntity, errMenuItemUnavailable)
			return
		}
		entry = cart.Entry{
			Name:            item.Name,
			Price:           utils.FormatCurrencyBRL(item.Price),
			Category:        item.Category,
			MenuItemID:      &item.ID,
			InventoryItemID: item.InventoryItemID,
		}
	}

	snap, err := cc.Carts.Add(session.ID, entry)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added to cart", snap)
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := cc.Carts.UpdateQuantity(session.ID, c.Param("line_id"), *req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart updated", snap)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	snap, err := cc.Carts.Remove(session.ID, c.Param("line_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed from cart", snap)
}

// SetDetails -> PUT /sessions/:session_id/cart
func (cc *CartController) SetDetails(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	var req struct {
		Notes        string              `json:"notes"`
		DeliveryType models.DeliveryType `json:"delivery_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := cc.Carts.SetDetails(session.ID, req.Notes, req.DeliveryType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart updated", snap)
}

func (cc *CartController) Clear(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", cc.Carts.Clear(session.ID))
}

// Checkout -> POST /sessions/:session_id/cart/checkout
func (cc *CartController) Checkout(c *gin.Context) {
	session, ok := cc.activeSession(c)
	if !ok {
		return
	}
	res, err := cc.Carts.Checkout(c.Request.Context(), session.ID, session.TableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", res)
}
