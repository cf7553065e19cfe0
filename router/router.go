package router

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/config"
	"github.com/yeremiapane/clubday/controllers"
	"github.com/yeremiapane/clubday/middlewares"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/realtime"
	"github.com/yeremiapane/clubday/services"
)

func SetupRouter(svc *services.Container, hub *realtime.Hub, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())

	userCtrl := controllers.NewUserController(svc)
	tableCtrl := controllers.NewTableController(svc)
	sessionCtrl := controllers.NewSessionController(svc)
	cartCtrl := controllers.NewCartController(svc)
	orderCtrl := controllers.NewOrderController(svc)
	menuCtrl := controllers.NewMenuController(svc)
	reservationCtrl := controllers.NewReservationController(svc)
	inventoryCtrl := controllers.NewInventoryController(svc)
	settingsCtrl := controllers.NewSettingsController(svc)
	reportCtrl := controllers.NewReportController(svc)
	realtimeCtrl := controllers.NewRealtimeController(svc, hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), userCtrl.Login)

	// -- CUSTOMER (no auth) --
	r.GET("/menu", menuCtrl.PublicList)

	r.GET("/tables/:table_id/session", sessionCtrl.Resolve)
	r.POST("/tables/:table_id/session", sessionCtrl.Create)

	session := r.Group("/sessions/:session_id")
	{
		session.GET("", sessionCtrl.Get)
		session.GET("/orders", sessionCtrl.ListOrders)

		session.GET("/cart", cartCtrl.Get)
		session.PUT("/cart", cartCtrl.SetDetails)
		session.DELETE("/cart", cartCtrl.Clear)
		session.POST("/cart/items", cartCtrl.AddItem)
		session.PATCH("/cart/items/:line_id", cartCtrl.UpdateItem)
		session.DELETE("/cart/items/:line_id", cartCtrl.RemoveItem)
		session.POST("/cart/checkout", cartCtrl.Checkout)
	}

	r.POST("/orders", orderCtrl.Create)
	r.GET("/orders/:order_id/tracking", orderCtrl.Tracking)

	r.POST("/reservations", reservationCtrl.Create)
	r.GET("/reservations/availability", reservationCtrl.Availability)

	r.GET("/ws", realtimeCtrl.CustomerFeed)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	{
		admin.POST("/logout", userCtrl.Logout)
		admin.GET("/profile", userCtrl.Profile)
	}

	staff := admin.Group("")
	staff.Use(middlewares.RequireRoles(models.RoleAdmin, models.RoleKitchen, models.RoleWaiter))
	{
		staff.GET("/ws", realtimeCtrl.StaffFeed)
		staff.GET("/kitchen/queue", orderCtrl.KitchenQueue)
		staff.POST("/orders/:order_id/advance", orderCtrl.Advance)
		staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateStatus)
		staff.GET("/tables/activity", tableCtrl.Activity)
	}

	adminOnly := admin.Group("")
	adminOnly.Use(middlewares.RequireRoles(models.RoleAdmin))
	{
		adminOnly.GET("/users", userCtrl.List)
		adminOnly.POST("/users", userCtrl.Register)

		adminOnly.GET("/tables", tableCtrl.List)
		adminOnly.POST("/tables", tableCtrl.Create)
		adminOnly.GET("/tables/:table_id", tableCtrl.Get)
		adminOnly.PUT("/tables/:table_id", tableCtrl.Update)
		adminOnly.PUT("/tables/:table_id/active", tableCtrl.SetActive)
		adminOnly.DELETE("/tables/:table_id", tableCtrl.Delete)

		adminOnly.GET("/sessions", sessionCtrl.List)
		adminOnly.DELETE("/sessions/:session_id", sessionCtrl.Deactivate)

		adminOnly.GET("/orders", orderCtrl.List)
		adminOnly.GET("/orders/:order_id", orderCtrl.Get)

		adminOnly.GET("/menu", menuCtrl.List)
		adminOnly.POST("/menu", menuCtrl.Create)
		adminOnly.GET("/menu/:menu_id", menuCtrl.Get)
		adminOnly.PUT("/menu/:menu_id", menuCtrl.Update)
		adminOnly.DELETE("/menu/:menu_id", menuCtrl.Delete)
		adminOnly.GET("/menu/:menu_id/recipes", inventoryCtrl.Recipes)
		adminOnly.POST("/menu/:menu_id/recipes", inventoryCtrl.AddRecipe)
		adminOnly.DELETE("/menu/:menu_id/recipes/:recipe_id", inventoryCtrl.DeleteRecipe)

		adminOnly.GET("/inventory", inventoryCtrl.List)
		adminOnly.POST("/inventory", inventoryCtrl.Create)
		adminOnly.GET("/inventory/low-stock", inventoryCtrl.LowStock)
		adminOnly.GET("/inventory/stale", inventoryCtrl.Stale)
		adminOnly.GET("/inventory/:item_id", inventoryCtrl.Get)
		adminOnly.PUT("/inventory/:item_id", inventoryCtrl.Update)
		adminOnly.POST("/inventory/:item_id/adjust", inventoryCtrl.Adjust)
		adminOnly.GET("/inventory/:item_id/movements", inventoryCtrl.Movements)

		adminOnly.GET("/reservations", reservationCtrl.List)
		adminOnly.PATCH("/reservations/:reservation_id/cancel", reservationCtrl.Cancel)

		adminOnly.GET("/settings", settingsCtrl.List)
		adminOnly.PUT("/settings/:key", settingsCtrl.Update)

		adminOnly.GET("/reports/sales", reportCtrl.Sales)
		adminOnly.GET("/reports/sales.pdf", reportCtrl.SalesPDF)
	}

	return r
}
