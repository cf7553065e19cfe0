package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/realtime"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

const changeBatchSize = 100

// Publisher receives change feed messages.
type Publisher interface {
	Publish(msg realtime.Message)
}

// ChangeMonitor drains the db_changes outbox and publishes each change with
// the current state of the changed row.
type ChangeMonitor struct {
	db       *gorm.DB
	hub      Publisher
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewChangeMonitor(db *gorm.DB, hub Publisher, interval time.Duration) *ChangeMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &ChangeMonitor{
		db:       db,
		hub:      hub,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go runEvery(cm.interval, cm.stop, cm.done, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cm.interval*5)
		defer cancel()
		cm.ProcessPending(ctx)
	})
}

func (cm *ChangeMonitor) Stop() {
	close(cm.stop)
	<-cm.done
}

// ProcessPending publishes one batch of unprocessed changes and returns how
// many were handled.
func (cm *ChangeMonitor) ProcessPending(ctx context.Context) int {
	var changes []models.DBChange
	if err := cm.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(changeBatchSize).
		Find(&changes).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching changes: %v", err)
		return 0
	}
	if len(changes) == 0 {
		return 0
	}

	for _, change := range changes {
		cm.hub.Publish(cm.message(ctx, change))
	}

	ids := lo.Map(changes, func(c models.DBChange, _ int) uint { return c.ID })
	if err := cm.db.WithContext(ctx).Model(&models.DBChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		utils.ErrorLogger.Printf("Error marking changes as processed: %v", err)
		return 0
	}

	utils.InfoLogger.Debugf("Processed %d changes", len(changes))
	return len(changes)
}

func (cm *ChangeMonitor) message(ctx context.Context, change models.DBChange) realtime.Message {
	msg := realtime.Message{
		Event:    realtime.EventChange,
		Table:    change.Entity,
		Action:   change.ActionType,
		RecordID: change.RecordID,
		Data:     map[string]uint{"id": change.RecordID},
	}
	if change.ActionType == models.ActionDelete {
		return msg
	}

	db := cm.db.WithContext(ctx)
	var err error
	switch change.Entity {
	case models.ChangeOrders:
		var order models.Order
		if err = db.Preload("OrderItems").First(&order, change.RecordID).Error; err == nil {
			msg.Data = order
			msg.SessionID = order.ClientSessionID
		}
	case models.ChangeClientSessions:
		var session models.ClientSession
		if err = db.First(&session, change.RecordID).Error; err == nil {
			msg.Data = session
			msg.SessionID = session.ID
		}
	case models.ChangeTables:
		var table models.Table
		if err = db.First(&table, change.RecordID).Error; err == nil {
			msg.Data = table
		}
	case models.ChangeInventoryItems:
		var item models.InventoryItem
		if err = db.First(&item, change.RecordID).Error; err == nil {
			msg.Data = item
		}
	case models.ChangeReservations:
		var reservation models.Reservation
		if err = db.First(&reservation, change.RecordID).Error; err == nil {
			msg.Data = reservation
		}
	}
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"table":     change.Entity,
			"record_id": change.RecordID,
		}).Warnf("Error fetching changed row: %v", err)
	}
	return msg
}

// runEvery calls fn on every tick until stop is closed, then closes done.
func runEvery(interval time.Duration, stop <-chan struct{}, done chan<- struct{}, fn func()) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-stop:
			return
		}
	}
}
