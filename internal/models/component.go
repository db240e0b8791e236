package models

import (
	"time"

	"gorm.io/gorm"
)

// Component is a single tracked process step.
type Component struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	SectionID    string       `gorm:"size:36;not null;index" json:"sectionId"`
	OwnerID      string       `gorm:"size:36;not null;index" json:"ownerId"`
	Tool         *string      `gorm:"size:255" json:"tool"`
	HealthStatus HealthStatus `gorm:"size:8;default:GRAY;index" json:"healthStatus"`
	CurrentState *string      `gorm:"type:text" json:"currentState"`
	TargetState  *string      `gorm:"type:text" json:"targetState"`
	PositionX    float64      `gorm:"default:0" json:"positionX"`
	PositionY    float64      `gorm:"default:0" json:"positionY"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Section  *Section  `gorm:"foreignKey:SectionID" json:"section,omitempty"`
	Owner    *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Metrics  []Metric  `gorm:"foreignKey:ComponentID" json:"metrics,omitempty"`
	Todos    []Todo    `gorm:"foreignKey:ComponentID" json:"todos,omitempty"`
	Issues   []Issue   `gorm:"foreignKey:ComponentID" json:"issues,omitempty"`
	Ideas    []Idea    `gorm:"foreignKey:ComponentID" json:"ideas,omitempty"`
	Comments []Comment `gorm:"foreignKey:ComponentID" json:"comments,omitempty"`

	OutgoingConnections []Connection `gorm:"foreignKey:FromComponentID" json:"outgoingConnections,omitempty"`
	IncomingConnections []Connection `gorm:"foreignKey:ToComponentID" json:"incomingConnections,omitempty"`
}

func (c *Component) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Connection is a directed data-flow edge between two components.
type Connection struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	FromComponentID string    `gorm:"size:36;not null;index" json:"fromComponentId"`
	ToComponentID   string    `gorm:"size:36;not null;index" json:"toComponentId"`
	Label           string    `gorm:"size:255" json:"label"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	FromComponent *Component `gorm:"foreignKey:FromComponentID" json:"fromComponent,omitempty"`
	ToComponent   *Component `gorm:"foreignKey:ToComponentID" json:"toComponent,omitempty"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
