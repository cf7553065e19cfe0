package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(svc *services.Container) *ReservationController {
	return &ReservationController{Reservations: svc.Reservations}
}

// Create -> POST /reservations
func (rc *ReservationController) Create(c *gin.Context) {
	var req services.ReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	reservation, err := rc.Reservations.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

// Availability -> GET /reservations/availability?date=2026-01-31&type=quiosque
func (rc *ReservationController) Availability(c *gin.Context) {
	avail, err := rc.Reservations.Availability(c.Request.Context(), c.Query("date"), models.ReservationType(c.Query("type")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation availability", avail)
}

func (rc *ReservationController) List(c *gin.Context) {
	list, err := rc.Reservations.List(c.Request.Context(), c.Query("date"), models.ReservationType(c.Query("type")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", list)
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.Reservations.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}
