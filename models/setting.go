package models

import "time"

const (
	SettingInactivityThreshold = "inactivity_threshold_minutes"
	SettingStaleProductDays    = "stale_product_days"
)

// DefaultSettings are seeded on first start.
var DefaultSettings = map[string]string{
	SettingInactivityThreshold: "40",
	SettingStaleProductDays:    "30",
}

type Setting struct {
	Key       string    `gorm:"column:setting_key;primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
