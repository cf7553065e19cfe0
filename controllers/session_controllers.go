package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type SessionController struct {
	Sessions *services.SessionService
	Orders   *services.OrderService
	Carts    *services.CartService
}

func NewSessionController(svc *services.Container) *SessionController {
	return &SessionController{Sessions: svc.Sessions, Orders: svc.Orders, Carts: svc.Carts}
}

// Resolve -> GET /tables/:table_id/session?fingerprint=
func (sc *SessionController) Resolve(c *gin.Context) {
	tableID, ok := idParam(c, "table_id")
	if !ok {
		return
	}
	res := sc.Sessions.Resolve(c.Request.Context(), c.Query("fingerprint"), tableID)
	utils.RespondJSON(c, http.StatusOK, "Session resolved", res)
}

// Create -> POST /tables/:table_id/session
func (sc *SessionController) Create(c *gin.Context) {
	tableID, ok := idParam(c, "table_id")
	if !ok {
		return
	}
	var req services.CreateSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	session, err := sc.Sessions.Create(c.Request.Context(), tableID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session created", session)
}

func (sc *SessionController) Get(c *gin.Context) {
	id, ok := idParam(c, "session_id")
	if !ok {
		return
	}
	session, err := sc.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// ListOrders -> GET /sessions/:session_id/orders
func (sc *SessionController) ListOrders(c *gin.Context) {
	id, ok := idParam(c, "session_id")
	if !ok {
		return
	}
	orders, err := sc.Orders.ListBySession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session orders", orders)
}

// List -> GET /admin/sessions?active=true
func (sc *SessionController) List(c *gin.Context) {
	sessions, err := sc.Sessions.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sessions", sessions)
}

// Deactivate -> DELETE /admin/sessions/:session_id
func (sc *SessionController) Deactivate(c *gin.Context) {
	id, ok := idParam(c, "session_id")
	if !ok {
		return
	}
	session, err := sc.Sessions.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sc.Carts.Forget(id)
	utils.RespondJSON(c, http.StatusOK, "Session deactivated", session)
}
