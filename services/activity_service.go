package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/yeremiapane/clubday/models"
	"gorm.io/gorm"
)

type TableActivityStatus string

const (
	TableInactive  TableActivityStatus = "inactive"
	TableFree      TableActivityStatus = "free"
	TableAttention TableActivityStatus = "attention"
	TableActive    TableActivityStatus = "active"
)

// DeriveTableStatus applies the activity rules in priority order. A nil
// minutesSinceOrder means the seated client has not ordered yet.
func DeriveTableStatus(isActive, seated bool, minutesSinceOrder *int, threshold int) TableActivityStatus {
	switch {
	case !isActive:
		return TableInactive
	case !seated:
		return TableFree
	case minutesSinceOrder == nil || *minutesSinceOrder >= threshold:
		return TableAttention
	default:
		return TableActive
	}
}

type TableActivity struct {
	TableID           uint                `json:"table_id"`
	Number            int                 `json:"number"`
	Name              string              `json:"name"`
	Status            TableActivityStatus `json:"status"`
	ClientNames       []string            `json:"client_names"`
	ActiveSessions    int                 `json:"active_sessions"`
	MinutesSinceOrder *int                `json:"minutes_since_order"`
	LastOrderAt       *time.Time          `json:"last_order_at"`
}

type ActivityService struct {
	db       *gorm.DB
	settings *SettingsService
	now      func() time.Time
}

func NewActivityService(db *gorm.DB, settings *SettingsService) *ActivityService {
	return &ActivityService{db: db, settings: settings, now: time.Now}
}

// Snapshot derives every table's status. The threshold is read on each
// call.
func (s *ActivityService) Snapshot(ctx context.Context) ([]TableActivity, int, error) {
	threshold := s.settings.InactivityThreshold(ctx)
	db := s.db.WithContext(ctx)

	var tables []models.Table
	if err := db.Order("number ASC").Find(&tables).Error; err != nil {
		return nil, threshold, err
	}

	var sessions []models.ClientSession
	if err := db.Where("is_active = ?", true).Find(&sessions).Error; err != nil {
		return nil, threshold, err
	}
	byTable := lo.GroupBy(sessions, func(cs models.ClientSession) uint { return cs.TableID })

	sessionIDs := lo.Map(sessions, func(cs models.ClientSession, _ int) uint { return cs.ID })
	lastOrder := make(map[uint]time.Time)
	if len(sessionIDs) > 0 {
		var orders []models.Order
		if err := db.Select("id", "table_id", "client_session_id", "created_at").
			Where("client_session_id IN ?", sessionIDs).
			Find(&orders).Error; err != nil {
			return nil, threshold, err
		}
		for _, o := range orders {
			if o.CreatedAt.After(lastOrder[o.TableID]) {
				lastOrder[o.TableID] = o.CreatedAt
			}
		}
	}

	now := s.now()
	out := make([]TableActivity, 0, len(tables))
	for _, t := range tables {
		seated := byTable[t.ID]
		row := TableActivity{
			TableID:        t.ID,
			Number:         t.Number,
			Name:           t.Name,
			ActiveSessions: len(seated),
			ClientNames:    lo.Map(seated, func(cs models.ClientSession, _ int) string { return cs.ClientName }),
		}
		if at, ok := lastOrder[t.ID]; ok {
			minutes := int(now.Sub(at).Minutes())
			row.MinutesSinceOrder = &minutes
			row.LastOrderAt = &at
		}
		row.Status = DeriveTableStatus(t.IsActive, len(seated) > 0, row.MinutesSinceOrder, threshold)
		out = append(out, row)
	}
	return out, threshold, nil
}
