package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/gorm"
)

type CreateConnectionOpts struct {
	FromComponentID string `json:"fromComponentId"`
	ToComponentID   string `json:"toComponentId"`
	Label           string `json:"label"`
}

// ListConnections returns connections touching componentID in either
// direction, or every connection when componentID is empty.
func ListConnections(ctx context.Context, db *gorm.DB, componentID string) ([]models.Connection, error) {
	q := db.WithContext(ctx).Model(&models.Connection{})
	if componentID != "" {
		q = q.Where("from_component_id = ? OR to_component_id = ?", componentID, componentID)
	}
	var conns []models.Connection
	err := q.Preload("FromComponent", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") }).
		Preload("ToComponent", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") }).
		Order("created_at ASC").
		Find(&conns).Error
	if err != nil {
		return nil, fmt.Errorf("process: list connections: %w", err)
	}
	return conns, nil
}

// CreateConnection links two components. The audit row is written against
// the source component.
func CreateConnection(ctx context.Context, db *gorm.DB, actor Actor, opts CreateConnectionOpts) (*models.Connection, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if opts.FromComponentID == "" || opts.ToComponentID == "" {
		return nil, apperr.Validationf("missing required fields: fromComponentId, toComponentId")
	}
	if opts.FromComponentID == opts.ToComponentID {
		return nil, apperr.Validationf("a component cannot connect to itself")
	}

	conn := models.Connection{
		FromComponentID: opts.FromComponentID,
		ToComponentID:   opts.ToComponentID,
		Label:           strings.TrimSpace(opts.Label),
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Component](tx, "component", opts.FromComponentID); err != nil {
			return err
		}
		if err := mustExist[models.Component](tx, "component", opts.ToComponentID); err != nil {
			return err
		}
		if err := tx.Create(&conn).Error; err != nil {
			return fmt.Errorf("process: create connection: %w", err)
		}
		return record(tx, actor, activity.ActionConnected, activity.EntityComponent, conn.FromComponentID, map[string]any{
			"connectionId":  conn.ID,
			"toComponentId": conn.ToComponentID,
			"label":         conn.Label,
		})
	})
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// DeleteConnection removes a connection.
func DeleteConnection(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		conn, err := load[models.Connection](tx, "connection", id)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Connection{}).Error; err != nil {
			return fmt.Errorf("process: delete connection %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDisconnected, activity.EntityComponent, conn.FromComponentID, map[string]any{
			"connectionId":  conn.ID,
			"toComponentId": conn.ToComponentID,
			"label":         conn.Label,
		})
	})
}
