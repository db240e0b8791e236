package models

import (
	"time"

	"gorm.io/gorm"
)

// Metric is a measured value on a component. Target and Current are free
// text, usually a number with a unit ("45", "2hrs", "98%").
type Metric struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ComponentID string    `gorm:"size:36;not null;uniqueIndex:idx_metric_component_order" json:"componentId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Target      *string   `gorm:"size:64" json:"target"`
	Current     *string   `gorm:"size:64" json:"current"`
	Unit        *string   `gorm:"size:32" json:"unit"`
	Order       int       `gorm:"column:sort_order;not null;uniqueIndex:idx_metric_component_order" json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (m *Metric) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
