// Package activity records and reads the append-only audit trail.
//
// Record must be called with the same transaction handle as the mutation it
// describes, so the entity change and its audit row land together or not at all.
package activity

import (
	"encoding/json"
	"fmt"

	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entity types recorded in the log.
const (
	EntityComponent = "component"
	EntityTodo      = "todo"
	EntityIssue     = "issue"
	EntityIdea      = "idea"
	EntityMetric    = "metric"
	EntityComment   = "comment"
	EntitySection   = "section"
	EntitySnapshot  = "snapshot"
)

// EntityTypes is the fixed vocabulary of entity types.
var EntityTypes = []string{
	EntityComponent, EntityTodo, EntityIssue, EntityIdea,
	EntityMetric, EntityComment, EntitySection, EntitySnapshot,
}

// ValidEntityType reports whether t is in the vocabulary.
func ValidEntityType(t string) bool {
	for _, e := range EntityTypes {
		if e == t {
			return true
		}
	}
	return false
}

// Action verbs.
const (
	ActionCreated              = "created"
	ActionUpdated              = "updated"
	ActionDeleted              = "deleted"
	ActionCompleted            = "completed"
	ActionUncompleted          = "uncompleted"
	ActionStatusChanged        = "status_changed"
	ActionMarkedImplemented    = "marked_implemented"
	ActionMarkedNotImplemented = "marked_not_implemented"
	ActionConnected            = "connected"
	ActionDisconnected         = "disconnected"
)

// Entry describes one mutation to record.
type Entry struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Changes    map[string]any
}

// Record appends an audit row using tx. Any error must abort tx.
func Record(tx *gorm.DB, e Entry) (*models.ActivityLog, error) {
	if e.UserID == "" {
		return nil, apperr.Unauthenticatedf("activity: acting user is required")
	}
	if !ValidEntityType(e.EntityType) {
		return nil, apperr.Validationf("activity: unknown entity type %q", e.EntityType)
	}
	if e.Action == "" {
		return nil, apperr.Validationf("activity: action is required")
	}
	if e.EntityID == "" {
		return nil, apperr.Validationf("activity: entity id is required")
	}

	changes, err := encodeChanges(e.Changes)
	if err != nil {
		return nil, fmt.Errorf("activity: encode changes for %s %s: %w", e.EntityType, e.EntityID, err)
	}

	row := models.ActivityLog{
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Changes:    changes,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("activity: record %s %s %s: %w", e.Action, e.EntityType, e.EntityID, err)
	}
	return &row, nil
}

func encodeChanges(changes map[string]any) (datatypes.JSON, error) {
	if changes == nil {
		return datatypes.JSON("{}"), nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// DecodeChanges unmarshals a stored payload into a map.
func DecodeChanges(raw datatypes.JSON) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("activity: decode changes: %w", err)
	}
	return out, nil
}
