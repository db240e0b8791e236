package models

import (
	"time"

	"gorm.io/gorm"
)

// Todo is an action item on a component.
type Todo struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	ComponentID string     `gorm:"size:36;not null;index" json:"componentId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	AssigneeID  *string    `gorm:"size:36;index" json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Component *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
	Assignee  *User      `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Issue is a reported problem on a component.
type Issue struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	ComponentID  string      `gorm:"size:36;not null;index" json:"componentId"`
	Title        string      `gorm:"size:255;not null" json:"title"`
	Description  *string     `gorm:"type:text" json:"description"`
	Priority     Priority    `gorm:"size:4;default:P2;index" json:"priority"`
	Status       IssueStatus `gorm:"size:16;default:OPEN;index" json:"status"`
	ReportedByID string      `gorm:"size:36;not null" json:"reportedById"`
	ResolvedAt   *time.Time  `json:"resolvedAt"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	Component  *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
	ReportedBy *User      `gorm:"foreignKey:ReportedByID" json:"reportedBy,omitempty"`
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Idea is an improvement suggestion on a component.
type Idea struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ComponentID   string    `gorm:"size:36;not null;index" json:"componentId"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   *string   `gorm:"type:text" json:"description"`
	SubmittedByID string    `gorm:"size:36;not null" json:"submittedById"`
	Votes         int       `gorm:"default:0" json:"votes"`
	Implemented   bool      `gorm:"default:false;index" json:"implemented"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Component   *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
	SubmittedBy *User      `gorm:"foreignKey:SubmittedByID" json:"submittedBy,omitempty"`
}

func (i *Idea) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Comment is a free-text note on a component.
type Comment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ComponentID string    `gorm:"size:36;not null;index" json:"componentId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorID    string    `gorm:"size:36;not null;index" json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Component *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
	Author    *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
