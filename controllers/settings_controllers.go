package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type SettingsController struct {
	Settings *services.SettingsService
}

func NewSettingsController(svc *services.Container) *SettingsController {
	return &SettingsController{Settings: svc.Settings}
}

func (sc *SettingsController) List(c *gin.Context) {
	settings, err := sc.Settings.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of settings", settings)
}

// Update -> PUT /admin/settings/:key {"value": "30"}
func (sc *SettingsController) Update(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	setting, err := sc.Settings.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Setting %s changed to %s", setting.Key, setting.Value)
	utils.RespondJSON(c, http.StatusOK, "Setting updated", setting)
}
