package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
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

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	svc    *services.Container
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("controllers-test-secret")

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

	cfg := &config.Config{
		JWTTTL:         time.Hour,
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	svc := services.NewContainer(db, cfg)
	return &testServer{
		t:      t,
		db:     db,
		svc:    svc,
		router: router.SetupRouter(svc, realtime.NewHub(), cfg),
	}
}

// do sends a JSON request and decodes the response envelope.
func (s *testServer) do(method, path string, body interface{}, token string) (int, map[string]interface{}) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	}
	return w.Code, response
}

// staffToken registers a staff account with the given role and signs a token for it.
func (s *testServer) staffToken(role string) string {
	s.t.Helper()
	user, err := s.svc.Auth.Register(context.Background(), services.RegisterInput{
		Name:     "Equipe " + role,
		Email:    role + "@club.example",
		Password: "senha-segura",
		Role:     role,
	})
	require.NoError(s.t, err)
	token, err := utils.GenerateToken(user.ID, user.Role, time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) createTable(number int) models.Table {
	s.t.Helper()
	table := models.Table{Number: number, Name: "Mesa", IsActive: true}
	require.NoError(s.t, s.db.Create(&table).Error)
	return table
}

func data(response map[string]interface{}) map[string]interface{} {
	d, _ := response["data"].(map[string]interface{})
	return d
}

func list(response map[string]interface{}) []interface{} {
	d, _ := response["data"].([]interface{})
	return d
}

func idOf(m map[string]interface{}) uint {
	v, _ := m["id"].(float64)
	return uint(v)
}
