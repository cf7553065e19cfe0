package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type TableController struct {
	Tables     *services.TableService
	Activities *services.ActivityService
}

func NewTableController(svc *services.Container) *TableController {
	return &TableController{Tables: svc.Tables, Activities: svc.Activity}
}

func (tc *TableController) List(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) Get(c *gin.Context) {
	id, ok := idParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) Create(c *gin.Context) {
	var req services.TableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	table, err := tc.Tables.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("New table created: %d (active=%v)", table.Number, table.IsActive)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) Update(c *gin.Context) {
	id, ok := idParam(c, "table_id")
	if !ok {
		return
	}
	var req services.TableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	table, err := tc.Tables.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

// SetActive -> PUT /admin/tables/:table_id/active {"is_active": bool}
func (tc *TableController) SetActive(c *gin.Context) {
	id, ok := idParam(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	table, err := tc.Tables.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

func (tc *TableController) Delete(c *gin.Context) {
	id, ok := idParam(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Tables.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", nil)
}

// Activity -> GET /admin/tables/activity
func (tc *TableController) Activity(c *gin.Context) {
	tables, threshold, err := tc.Activities.Snapshot(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table activity", gin.H{
		"threshold_minutes": threshold,
		"tables":            tables,
	})
}
