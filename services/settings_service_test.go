package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
)

func TestSettingsDefaultsAndUpdates(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()

	assert.Equal(t, 40, svc.Settings.InactivityThreshold(ctx))
	assert.Equal(t, 30, svc.Settings.StaleProductDays(ctx))

	_, err := svc.Settings.Set(ctx, models.SettingInactivityThreshold, "abc")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Settings.Set(ctx, models.SettingInactivityThreshold, "25")
	require.NoError(t, err)
	assert.Equal(t, 25, svc.Settings.InactivityThreshold(ctx))

	// a corrupted value falls back to the default
	require.NoError(t, db.Model(&models.Setting{}).Where("setting_key = ?", models.SettingStaleProductDays).
		Update("value", "-3").Error)
	assert.Equal(t, 30, svc.Settings.StaleProductDays(ctx))

	settings, err := svc.Settings.List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
}

func TestAuthRegisterLoginLogout(t *testing.T) {
	svc, _ := setupContainer(t)
	ctx := context.Background()
	utils.SetJWTSecret("services-test")

	_, err := svc.Auth.Register(ctx, RegisterInput{Name: "Cozinha", Email: "not-an-email", Password: "segredo123", Role: "kitchen"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Auth.Register(ctx, RegisterInput{Name: "Cozinha", Email: "chef@club.test", Password: "segredo123", Role: "chef"})
	assert.ErrorIs(t, err, ErrValidation)

	user, err := svc.Auth.Register(ctx, RegisterInput{Name: "Cozinha", Email: "Chef@Club.test", Password: "segredo123", Role: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "chef@club.test", user.Email)

	_, err = svc.Auth.Login(ctx, "chef@club.test", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Auth.Login(ctx, "ninguem@club.test", "segredo123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Auth.Login(ctx, "chef@club.test", "segredo123")
	require.NoError(t, err)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	claims, err := utils.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleKitchen, claims.Role)

	require.NoError(t, svc.Auth.Logout(res.Token))
	_, err = utils.ParseToken(res.Token)
	assert.ErrorIs(t, err, utils.ErrTokenBlacklisted)
}
