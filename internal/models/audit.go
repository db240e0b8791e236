package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrImmutable is returned when code tries to update or delete an
// append-only row.
var ErrImmutable = errors.New("models: row is append-only")

// ActivityLog is an append-only audit record of a single mutation.
// EntityID is a plain reference; the entity may no longer exist.
type ActivityLog struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	UserID     string         `gorm:"size:36;not null;index" json:"userId"`
	Action     string         `gorm:"size:32;not null;index" json:"action"`
	EntityType string         `gorm:"size:16;not null;index:idx_activity_entity" json:"entityType"`
	EntityID   string         `gorm:"size:36;not null;index:idx_activity_entity" json:"entityId"`
	Changes    datatypes.JSON `json:"changes"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (a *ActivityLog) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }
func (a *ActivityLog) BeforeDelete(tx *gorm.DB) error { return ErrImmutable }

// Snapshot is an immutable copy of the whole process map.
type Snapshot struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Data        datatypes.JSON `json:"data,omitempty"`
	CreatedByID string         `gorm:"size:36;not null;index" json:"createdById"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
}

func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s *Snapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }
func (s *Snapshot) BeforeDelete(tx *gorm.DB) error { return ErrImmutable }
