package models

import (
	"time"

	"gorm.io/gorm"
)

// Section groups components. Order is unique across all sections.
type Section struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Order       int       `gorm:"column:sort_order;uniqueIndex;not null" json:"order"`
	Color       *string   `gorm:"size:32" json:"color"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Components []Component `gorm:"foreignKey:SectionID" json:"components,omitempty"`
}

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
