package services

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

// SessionService resolves device fingerprints to customer sessions.
type SessionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db, now: time.Now}
}

// Resolution is the answer to "who is this device at this table".
type Resolution struct {
	NeedsName bool                  `json:"needs_name"`
	Session   *models.ClientSession `json:"session"`
}

type CreateSessionInput struct {
	Fingerprint string `json:"fingerprint"`
	ClientName  string `json:"client_name"`
}

func (in CreateSessionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Fingerprint, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.ClientName, validation.Required, validation.Length(2, 100)),
	)
}

func (s *SessionService) findActive(ctx context.Context, fingerprint string, tableID uint) (*models.ClientSession, error) {
	var session models.ClientSession
	err := s.db.WithContext(ctx).
		Where("device_fingerprint = ? AND table_id = ? AND is_active = ?", fingerprint, tableID, true).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Resolve never fails: a miss or a lookup error both mean the caller must
// ask for a name.
func (s *SessionService) Resolve(ctx context.Context, fingerprint string, tableID uint) Resolution {
	if strings.TrimSpace(fingerprint) == "" || tableID == 0 {
		return Resolution{NeedsName: true}
	}
	session, err := s.findActive(ctx, fingerprint, tableID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"table_id": tableID,
			}).Warnf("Session lookup failed: %v", err)
		}
		return Resolution{NeedsName: true}
	}
	return Resolution{Session: session}
}

// Create opens a session for the device at the table, or returns the one
// already active for that pair.
func (s *SessionService) Create(ctx context.Context, tableID uint, in CreateSessionInput) (*models.ClientSession, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.Fingerprint = strings.TrimSpace(in.Fingerprint)
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, tableID).Error; err != nil {
		return nil, notFound("table", err)
	}
	if !table.IsActive {
		return nil, ErrTableInactive
	}

	if existing, err := s.findActive(ctx, in.Fingerprint, tableID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.now()
	session := models.ClientSession{
		ClientName:        in.ClientName,
		DeviceFingerprint: in.Fingerprint,
		TableID:           tableID,
		IsActive:          true,
		LastActivityAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Session %d opened for %q at table %d", session.ID, session.ClientName, tableID)
	return &session, nil
}

func (s *SessionService) Get(ctx context.Context, id uint) (*models.ClientSession, error) {
	var session models.ClientSession
	if err := s.db.WithContext(ctx).Preload("Table").First(&session, id).Error; err != nil {
		return nil, notFound("session", err)
	}
	return &session, nil
}

func (s *SessionService) List(ctx context.Context, activeOnly bool) ([]models.ClientSession, error) {
	var sessions []models.ClientSession
	q := s.db.WithContext(ctx).Preload("Table").Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionService) Deactivate(ctx context.Context, id uint) (*models.ClientSession, error) {
	var session models.ClientSession
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, notFound("session", err)
	}
	if !session.IsActive {
		return &session, nil
	}
	if err := s.db.WithContext(ctx).Model(&session).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	session.IsActive = false
	utils.InfoLogger.Printf("Session %d deactivated", session.ID)
	return &session, nil
}

// Touch records activity on a session. Errors are logged only.
func (s *SessionService) Touch(ctx context.Context, id uint) {
	session := models.ClientSession{ID: id}
	if err := s.db.WithContext(ctx).Model(&session).Update("last_activity_at", s.now()).Error; err != nil {
		utils.ErrorLogger.Printf("Error touching session %d: %v", id, err)
	}
}

// CleanupIdle deactivates active sessions idle for longer than idle and
// returns the IDs it closed.
func (s *SessionService) CleanupIdle(ctx context.Context, idle time.Duration) ([]uint, error) {
	cutoff := s.now().Add(-idle)

	var stale []models.ClientSession
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND last_activity_at < ?", true, cutoff).
		Find(&stale).Error; err != nil {
		return nil, err
	}

	var closed []uint
	for i := range stale {
		if err := s.db.WithContext(ctx).Model(&stale[i]).Update("is_active", false).Error; err != nil {
			utils.ErrorLogger.Printf("Error closing idle session %d: %v", stale[i].ID, err)
			continue
		}
		closed = append(closed, stale[i].ID)
	}
	if len(closed) > 0 {
		utils.InfoLogger.Printf("Closed %d idle sessions", len(closed))
	}
	return closed, nil
}
