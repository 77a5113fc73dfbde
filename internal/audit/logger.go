package audit

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

// Actions recorded against an appointment.
const (
	ActionAppointmentCreated = "appointment_created"
	ActionAppointmentUpdated = "appointment_updated"
	ActionAppointmentDeleted = "appointment_deleted"
	ActionInvitesSent        = "invites_sent"
	ActionInvitesResent      = "invites_resent"
	ActionInviteResponded    = "invite_responded"
	ActionStatusChanged      = "status_changed"
	ActionInvitesExpired     = "invites_expired"
)

type Query struct {
	AppointmentID string
	Action        string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// Store persists audit rows.
type Store interface {
	Save(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, q Query) ([]models.AuditLog, int64, error)
}

type Logger struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Logger {
	return &Logger{store: store, now: time.Now}
}

func (l *Logger) Log(
	ctx context.Context,
	appointmentID string,
	actorID string,
	action string,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		AppointmentID: appointmentID,
		ActorID:       actorID,
		Action:        action,
		Metadata:      metaJSON,
		CreatedAt:     l.now().UTC(),
	}

	return l.store.Save(ctx, &entry)
}

func (l *Logger) List(ctx context.Context, q Query) ([]models.AuditLog, int64, error) {
	return l.store.List(ctx, q)
}

// ======================================================
// GORM
// ======================================================

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) List(ctx context.Context, q Query) ([]models.AuditLog, int64, error) {
	tx := s.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("appointment_id = ?", q.AppointmentID)

	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at < ?", *q.To)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order("created_at DESC").Order("id DESC").Offset(q.Offset)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var logs []models.AuditLog
	if err := tx.Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// ======================================================
// MEMORY
// ======================================================

type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	logs   []models.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *MemoryStore) List(_ context.Context, q Query) ([]models.AuditLog, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.AuditLog
	for _, l := range s.logs {
		if l.AppointmentID != q.AppointmentID {
			continue
		}
		if q.Action != "" && l.Action != q.Action {
			continue
		}
		if q.From != nil && l.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !l.CreatedAt.Before(*q.To) {
			continue
		}
		matched = append(matched, l)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return []models.AuditLog{}, total, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	return matched, total, nil
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
