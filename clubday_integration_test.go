package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/config"
	"github.com/yeremiapane/clubday/database"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/realtime"
	"github.com/yeremiapane/clubday/router"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.InitLogger("warn")
	utils.SetJWTSecret("integration-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t    *testing.T
	base string
}

func (c client) call(method, path string, body interface{}, token string, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedDefaults(db))
	return db
}

func login(t *testing.T, c client, svc *services.Container, role string) string {
	t.Helper()
	_, err := svc.Auth.Register(context.Background(), services.RegisterInput{
		Name:     "Equipe " + role,
		Email:    role + "@club.example",
		Password: "senha-segura",
		Role:     role,
	})
	require.NoError(t, err)

	var res struct {
		Token string `json:"token"`
	}
	code := c.call(http.MethodPost, "/login", map[string]string{
		"email":    role + "@club.example",
		"password": "senha-segura",
	}, "", &res)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, res.Token)
	return res.Token
}

// readOrderUpdate waits for a change message about orderID in the given status.
func readOrderUpdate(t *testing.T, ws *websocket.Conn, orderID uint, status models.OrderStatus) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, raw, err := ws.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event    string       `json:"event"`
			Table    string       `json:"table"`
			RecordID uint         `json:"record_id"`
			Data     models.Order `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		if msg.Table == models.ChangeOrders && msg.RecordID == orderID && msg.Data.Status == status {
			assert.Equal(t, realtime.EventChange, msg.Event)
			return
		}
	}
}

// TestEndToEndOrderFlow covers the main path:
// 0. Customer scans the table and names the session
// 1. Two cart lines are checked out into one order
// 2. Kitchen moves it to preparing then ready, the customer feed follows
// 3. Tracking shows the table delivery message
// 4. Waiter marks it delivered
func TestEndToEndOrderFlow(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{
		JWTTTL:         time.Hour,
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	svc := services.NewContainer(db, cfg)
	hub := realtime.NewHub()
	changes := services.NewChangeMonitor(db, hub, time.Hour)

	srv := httptest.NewServer(router.SetupRouter(svc, hub, cfg))
	defer srv.Close()
	c := client{t: t, base: srv.URL}

	kitchen := login(t, c, svc, models.RoleKitchen)
	waiter := login(t, c, svc, models.RoleWaiter)

	table := models.Table{Number: 12, Name: "Piscina", IsActive: true}
	require.NoError(t, db.Create(&table).Error)

	// 0. Session
	var resolution struct {
		NeedsName bool `json:"needs_name"`
	}
	code := c.call(http.MethodGet, fmt.Sprintf("/tables/%d/session?fingerprint=device-ana", table.ID), nil, "", &resolution)
	require.Equal(t, http.StatusOK, code)
	require.True(t, resolution.NeedsName)

	var session models.ClientSession
	code = c.call(http.MethodPost, fmt.Sprintf("/tables/%d/session", table.ID), map[string]string{
		"fingerprint": "device-ana",
		"client_name": "Ana",
	}, "", &session)
	require.Equal(t, http.StatusCreated, code)
	require.NotZero(t, session.ID)

	// 1. Cart and checkout
	cartPath := fmt.Sprintf("/sessions/%d/cart", session.ID)
	code = c.call(http.MethodPost, cartPath+"/items", map[string]string{"name": "Cerveja", "price": "R$ 12,00", "category": "Bebidas"}, "", nil)
	require.Equal(t, http.StatusOK, code)
	code = c.call(http.MethodPost, cartPath+"/items", map[string]string{"name": "Cerveja", "price": "R$ 12,00", "category": "Bebidas"}, "", nil)
	require.Equal(t, http.StatusOK, code)
	code = c.call(http.MethodPost, cartPath+"/items", map[string]string{"name": "Isca de peixe", "price": "R$ 39,90", "category": "Porções"}, "", nil)
	require.Equal(t, http.StatusOK, code)

	var result struct {
		Order models.Order `json:"order"`
	}
	code = c.call(http.MethodPost, cartPath+"/checkout", nil, "", &result)
	require.Equal(t, http.StatusCreated, code)
	order := result.Order
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.OrderItems, 2)
	assert.InDelta(t, 63.9, order.Total(), 0.001)

	var queue []models.Order
	code = c.call(http.MethodGet, "/admin/kitchen/queue", nil, kitchen, &queue)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, queue, 1)
	assert.Equal(t, order.ID, queue[0].ID)

	// customer feed, scoped to the session
	changes.ProcessPending(context.Background())
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/ws?session_id=%d&tables=orders", session.ID)
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// 2. Kitchen
	advance := fmt.Sprintf("/admin/orders/%d/advance", order.ID)
	code = c.call(http.MethodPost, advance, nil, kitchen, nil)
	require.Equal(t, http.StatusOK, code)
	changes.ProcessPending(context.Background())
	readOrderUpdate(t, ws, order.ID, models.OrderStatusPreparing)

	code = c.call(http.MethodPost, advance, nil, kitchen, nil)
	require.Equal(t, http.StatusOK, code)
	changes.ProcessPending(context.Background())
	readOrderUpdate(t, ws, order.ID, models.OrderStatusReady)

	// 3. Tracking
	var tracking services.Tracking
	code = c.call(http.MethodGet, fmt.Sprintf("/orders/%d/tracking", order.ID), nil, "", &tracking)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.OrderStatusReady, tracking.Status)
	assert.Equal(t, models.StatusMessage(models.OrderStatusReady, models.DeliveryTable), tracking.Message)
	assert.Equal(t, "R$ 63,90", tracking.TotalFormatted)

	// 4. Waiter
	code = c.call(http.MethodPost, advance, nil, kitchen, nil)
	assert.Equal(t, http.StatusForbidden, code)
	var delivered models.Order
	code = c.call(http.MethodPost, advance, nil, waiter, &delivered)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)
	assert.NotNil(t, delivered.DeliveredAt)

	code = c.call(http.MethodGet, "/admin/kitchen/queue", nil, kitchen, &queue)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, queue)
}
