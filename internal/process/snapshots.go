package process

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SnapshotData is the document stored in Snapshot.Data.
type SnapshotData struct {
	Sections []models.Section `json:"sections"`
}

// loadTree reads every section with its components and their attached
// entities, in display order.
func loadTree(tx *gorm.DB) ([]models.Section, error) {
	var sections []models.Section
	err := tx.
		Preload("Components", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Components.Owner").
		Preload("Components.Metrics", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Preload("Components.Todos", func(tx *gorm.DB) *gorm.DB { return tx.Order("completed ASC, due_date ASC, created_at DESC") }).
		Preload("Components.Issues", func(tx *gorm.DB) *gorm.DB { return tx.Order("priority ASC, created_at DESC") }).
		Preload("Components.Ideas", func(tx *gorm.DB) *gorm.DB { return tx.Order("implemented ASC, votes DESC, created_at DESC") }).
		Preload("Components.Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		Preload("Components.Todos.Assignee").
		Preload("Components.Issues.ReportedBy").
		Preload("Components.Ideas.SubmittedBy").
		Preload("Components.Comments.Author").
		Preload("Components.OutgoingConnections").
		Order("sort_order ASC").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("process: load tree: %w", err)
	}
	return sections, nil
}

// CreateSnapshot stores a copy of the whole process map under name.
func CreateSnapshot(ctx context.Context, db *gorm.DB, actor Actor, name string) (*models.Snapshot, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("snapshot name is required")
	}

	var snap models.Snapshot
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		sections, err := loadTree(tx)
		if err != nil {
			return err
		}
		count := 0
		for _, s := range sections {
			count += len(s.Components)
		}
		data, err := json.Marshal(SnapshotData{Sections: sections})
		if err != nil {
			return fmt.Errorf("process: encode snapshot: %w", err)
		}
		snap = models.Snapshot{
			Name:        name,
			Data:        datatypes.JSON(data),
			CreatedByID: actor.UserID,
		}
		if err := tx.Create(&snap).Error; err != nil {
			return fmt.Errorf("process: create snapshot: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntitySnapshot, snap.ID, map[string]any{
			"name":           snap.Name,
			"componentCount": count,
		})
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListSnapshots returns snapshot summaries, newest first, without data.
func ListSnapshots(ctx context.Context, db *gorm.DB) ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	err := db.WithContext(ctx).
		Select("id", "name", "created_by_id", "created_at").
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("process: list snapshots: %w", err)
	}
	return snaps, nil
}

// GetSnapshot returns a snapshot including its data.
func GetSnapshot(ctx context.Context, db *gorm.DB, id string) (*models.Snapshot, error) {
	return load[models.Snapshot](db.WithContext(ctx).Preload("CreatedBy"), "snapshot", id)
}

// DecodeSnapshot unpacks a snapshot's data document.
func DecodeSnapshot(s *models.Snapshot) (*SnapshotData, error) {
	var data SnapshotData
	if len(s.Data) == 0 {
		return &data, nil
	}
	if err := json.Unmarshal(s.Data, &data); err != nil {
		return nil, fmt.Errorf("process: decode snapshot %s: %w", s.ID, err)
	}
	return &data, nil
}
