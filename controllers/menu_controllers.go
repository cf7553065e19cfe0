package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(svc *services.Container) *MenuController {
	return &MenuController{Menu: svc.Menu}
}

// PublicList -> GET /menu?category=
func (mc *MenuController) PublicList(c *gin.Context) {
	items, err := mc.Menu.List(c.Request.Context(), c.Query("category"), true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", items)
}

// List -> GET /admin/menu includes unavailable items.
func (mc *MenuController) List(c *gin.Context) {
	items, err := mc.Menu.List(c.Request.Context(), c.Query("category"), false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuController) Get(c *gin.Context) {
	id, ok := idParam(c, "menu_id")
	if !ok {
		return
	}
	item, err := mc.Menu.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

func (mc *MenuController) Create(c *gin.Context) {
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := mc.Menu.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created successfully", item)
}

func (mc *MenuController) Update(c *gin.Context) {
	id, ok := idParam(c, "menu_id")
	if !ok {
		return
	}
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := mc.Menu.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", item)
}

func (mc *MenuController) Delete(c *gin.Context) {
	id, ok := idParam(c, "menu_id")
	if !ok {
		return
	}
	if err := mc.Menu.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}
