package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/cart"
	"github.com/yeremiapane/clubday/models"
)

func TestResolveUnknownDeviceNeedsName(t *testing.T) {
	svc, db := setupContainer(t)
	table := createTable(t, db, 1, true)

	res := svc.Sessions.Resolve(context.Background(), "new-device", table.ID)
	assert.True(t, res.NeedsName)
	assert.Nil(t, res.Session)

	res = svc.Sessions.Resolve(context.Background(), "", table.ID)
	assert.True(t, res.NeedsName)
}

func TestResolveFailsSoftlyOnStoreErrors(t *testing.T) {
	svc, db := setupContainer(t)
	table := createTable(t, db, 1, true)
	require.NoError(t, db.Migrator().DropTable(&models.ClientSession{}))

	res := svc.Sessions.Resolve(context.Background(), "fp", table.ID)
	assert.True(t, res.NeedsName)
}

func TestCreateSession(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()
	table := createTable(t, db, 1, true)

	_, err := svc.Sessions.Create(ctx, table.ID, CreateSessionInput{Fingerprint: "fp", ClientName: "  A "})
	assert.ErrorIs(t, err, ErrValidation)
	var count int64
	require.NoError(t, db.Model(&models.ClientSession{}).Count(&count).Error)
	assert.Zero(t, count)

	session, err := svc.Sessions.Create(ctx, table.ID, CreateSessionInput{Fingerprint: "fp", ClientName: "  Ana "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", session.ClientName)
	assert.True(t, session.IsActive)

	again, err := svc.Sessions.Create(ctx, table.ID, CreateSessionInput{Fingerprint: "fp", ClientName: "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, again.ID)

	res := svc.Sessions.Resolve(ctx, "fp", table.ID)
	assert.False(t, res.NeedsName)
	require.NotNil(t, res.Session)
	assert.Equal(t, session.ID, res.Session.ID)

	_, err = svc.Sessions.Deactivate(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, svc.Sessions.Resolve(ctx, "fp", table.ID).NeedsName)
}

func TestCreateSessionRequiresActiveTable(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()
	closed := createTable(t, db, 9, false)

	_, err := svc.Sessions.Create(ctx, closed.ID, CreateSessionInput{Fingerprint: "fp", ClientName: "Ana"})
	assert.ErrorIs(t, err, ErrTableInactive)

	_, err = svc.Sessions.Create(ctx, 4242, CreateSessionInput{Fingerprint: "fp", ClientName: "Ana"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanupIdle(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()
	table := createTable(t, db, 1, true)

	old := createSession(t, svc, table.ID, "Ana")
	fresh := createSession(t, svc, table.ID, "Bruno")
	require.NoError(t, db.Model(&models.ClientSession{}).Where("id = ?", old.ID).
		Update("last_activity_at", time.Now().Add(-13*time.Hour)).Error)

	closed, err := svc.Sessions.CleanupIdle(ctx, 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []uint{old.ID}, closed)

	got, err := svc.Sessions.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	got, err = svc.Sessions.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestJanitorSweepDropsClosedSessionCarts(t *testing.T) {
	svc, db := setupContainer(t)
	table := createTable(t, db, 1, true)

	old := createSession(t, svc, table.ID, "Ana")
	fresh := createSession(t, svc, table.ID, "Bruno")
	require.NoError(t, db.Model(&models.ClientSession{}).Where("id = ?", old.ID).
		Update("last_activity_at", time.Now().Add(-13*time.Hour)).Error)

	for _, id := range []uint{old.ID, fresh.ID} {
		_, err := svc.Carts.Add(id, cart.Entry{Name: "Água", Price: "R$ 4,00"})
		require.NoError(t, err)
	}

	NewJanitor(svc.Sessions, svc.Carts, 12*time.Hour, time.Hour).Sweep(context.Background())

	_, kept := svc.Carts.carts[old.ID]
	assert.False(t, kept)
	assert.Equal(t, 1, svc.Carts.Get(fresh.ID).TotalItems)
}
