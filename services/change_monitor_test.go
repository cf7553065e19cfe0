package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/realtime"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []realtime.Message
}

func (p *recordingPublisher) Publish(msg realtime.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *recordingPublisher) byTable(table string) []realtime.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Message
	for _, m := range p.messages {
		if m.Table == table {
			out = append(out, m)
		}
	}
	return out
}

func TestChangeMonitorPublishesOutbox(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()
	pub := &recordingPublisher{}
	monitor := NewChangeMonitor(db, pub, 0)

	table := createTable(t, db, 1, true)
	session := createSession(t, svc, table.ID, "Ana")
	res, err := svc.Orders.Submit(ctx, SubmitOrderInput{SessionID: session.ID, Items: sampleItems()})
	require.NoError(t, err)

	handled := monitor.ProcessPending(ctx)
	assert.Positive(t, handled)
	assert.Zero(t, monitor.ProcessPending(ctx))

	var pending int64
	require.NoError(t, db.Model(&models.DBChange{}).Where("processed = ?", false).Count(&pending).Error)
	assert.Zero(t, pending)

	tables := pub.byTable(models.ChangeTables)
	require.Len(t, tables, 1)
	assert.Equal(t, models.ActionInsert, tables[0].Action)
	assert.Equal(t, table.ID, tables[0].RecordID)

	orders := pub.byTable(models.ChangeOrders)
	require.NotEmpty(t, orders)
	assert.Equal(t, res.Order.ID, orders[0].RecordID)
	assert.Equal(t, session.ID, orders[0].SessionID)
	order, ok := orders[0].Data.(models.Order)
	require.True(t, ok)
	assert.Len(t, order.OrderItems, 2)

	_, err = svc.Orders.Advance(ctx, res.Order.ID, models.RoleKitchen)
	require.NoError(t, err)
	monitor.ProcessPending(ctx)
	orders = pub.byTable(models.ChangeOrders)
	last := orders[len(orders)-1]
	assert.Equal(t, models.ActionUpdate, last.Action)
	assert.Equal(t, models.OrderStatusPreparing, last.Data.(models.Order).Status)
}

func TestChangeMonitorEndToEndThroughHub(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()
	hub := realtime.NewHub()
	monitor := NewChangeMonitor(db, hub, 0)

	table := createTable(t, db, 1, true)
	ana := createSession(t, svc, table.ID, "Ana")
	bruno := createSession(t, svc, table.ID, "Bruno")

	anaConn := &countingConn{}
	brunoConn := &countingConn{}
	hub.Register(anaConn, realtime.NewSubscription("customer", ana.ID, models.ChangeOrders))
	hub.Register(brunoConn, realtime.NewSubscription("customer", bruno.ID, models.ChangeOrders))
	monitor.ProcessPending(ctx)

	_, err := svc.Orders.Submit(ctx, SubmitOrderInput{SessionID: ana.ID, Items: sampleItems()})
	require.NoError(t, err)
	monitor.ProcessPending(ctx)

	assert.Equal(t, 1, anaConn.writes)
	assert.Zero(t, brunoConn.writes)
}

type countingConn struct {
	writes int
}

func (c *countingConn) WriteMessage(int, []byte) error {
	c.writes++
	return nil
}

func (c *countingConn) SetWriteDeadline(time.Time) error { return nil }

func (c *countingConn) Close() error { return nil }

func TestActivityMonitorRefreshPublishesSnapshot(t *testing.T) {
	svc, db := setupContainer(t)
	pub := &recordingPublisher{}
	createTable(t, db, 1, true)

	NewActivityMonitor(svc.Activity, pub, 0).Refresh(context.Background())

	msgs := pub.byTable(realtime.TableActivityFeed)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.EventTableActivity, msgs[0].Event)
	assert.Zero(t, msgs[0].SessionID)
}
