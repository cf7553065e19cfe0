package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/config"
	"github.com/yeremiapane/clubday/database"
	"github.com/yeremiapane/clubday/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func setupContainer(t *testing.T) (*Container, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewContainer(db, &config.Config{JWTTTL: time.Hour}), db
}

func createTable(t *testing.T, db *gorm.DB, number int, active bool) models.Table {
	t.Helper()
	table := models.Table{Number: number, Name: "Mesa", IsActive: active}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func createSession(t *testing.T, svc *Container, tableID uint, name string) *models.ClientSession {
	t.Helper()
	session, err := svc.Sessions.Create(context.Background(), tableID, CreateSessionInput{
		Fingerprint: "fp-" + name,
		ClientName:  name,
	})
	require.NoError(t, err)
	return session
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func uintPtr(v uint) *uint        { return &v }
