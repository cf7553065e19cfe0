package services

import (
	"context"
	"time"

	"github.com/yeremiapane/clubday/realtime"
	"github.com/yeremiapane/clubday/utils"
)

// ActivityMonitor recomputes table activity on an interval and pushes it to
// staff clients.
type ActivityMonitor struct {
	activity *ActivityService
	hub      Publisher
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewActivityMonitor(activity *ActivityService, hub Publisher, interval time.Duration) *ActivityMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ActivityMonitor{
		activity: activity,
		hub:      hub,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *ActivityMonitor) Start() {
	go runEvery(m.interval, m.stop, m.done, func() {
		m.Refresh(context.Background())
	})
}

func (m *ActivityMonitor) Stop() {
	close(m.stop)
	<-m.done
}

// Refresh publishes one activity snapshot. Errors are logged only.
func (m *ActivityMonitor) Refresh(ctx context.Context) {
	tables, threshold, err := m.activity.Snapshot(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error computing table activity: %v", err)
		return
	}
	m.hub.Publish(realtime.Message{
		Event: realtime.EventTableActivity,
		Table: realtime.TableActivityFeed,
		Data: map[string]interface{}{
			"threshold_minutes": threshold,
			"tables":            tables,
		},
	})
}

// Janitor closes idle client sessions and drops their carts.
type Janitor struct {
	sessions *SessionService
	carts    *CartService
	idle     time.Duration
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewJanitor(sessions *SessionService, carts *CartService, idle, interval time.Duration) *Janitor {
	return &Janitor{
		sessions: sessions,
		carts:    carts,
		idle:     idle,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	go runEvery(j.interval, j.stop, j.done, func() {
		j.Sweep(context.Background())
	})
}

// Sweep runs one cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) {
	closed, err := j.sessions.CleanupIdle(ctx, j.idle)
	if err != nil {
		utils.ErrorLogger.Printf("Error cleaning idle sessions: %v", err)
	}
	for _, id := range closed {
		j.carts.Forget(id)
	}
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
