package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/clubday/middlewares"
	"github.com/yeremiapane/clubday/realtime"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

const customerRole = "customer"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type RealtimeController struct {
	Hub      *realtime.Hub
	Sessions *services.SessionService
}

func NewRealtimeController(svc *services.Container, hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{Hub: hub, Sessions: svc.Sessions}
}

func tablesQuery(c *gin.Context) []string {
	raw := c.Query("tables")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// CustomerFeed -> GET /ws?session_id=&tables=orders
// Only changes belonging to the session are delivered.
func (rc *RealtimeController) CustomerFeed(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("session_id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("session_id is required"))
		return
	}
	session, err := rc.Sessions.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !session.IsActive {
		respondServiceError(c, services.ErrSessionInactive)
		return
	}
	rc.serve(c, realtime.NewSubscription(customerRole, session.ID, tablesQuery(c)...))
}

// StaffFeed -> GET /admin/ws?token=&tables=
func (rc *RealtimeController) StaffFeed(c *gin.Context) {
	rc.serve(c, realtime.NewSubscription(c.GetString(middlewares.ContextRole), 0, tablesQuery(c)...))
}

func (rc *RealtimeController) serve(c *gin.Context, sub realtime.Subscription) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}

	rc.Hub.Register(ws, sub)
	defer rc.Hub.Unregister(ws)

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
