package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/opt"
	"gorm.io/gorm"
)

// ComponentFilters holds optional filters for listing components.
type ComponentFilters struct {
	SectionID    string
	HealthStatus models.HealthStatus
}

// CreateComponentOpts holds parameters for creating a component.
type CreateComponentOpts struct {
	Title        string              `json:"title"`
	SectionID    string              `json:"sectionId"`
	OwnerID      string              `json:"ownerId"`
	Tool         *string             `json:"tool"`
	HealthStatus models.HealthStatus `json:"healthStatus"`
	CurrentState *string             `json:"currentState"`
	TargetState  *string             `json:"targetState"`
	PositionX    float64             `json:"positionX"`
	PositionY    float64             `json:"positionY"`
}

// ComponentPatch is a partial update of a component.
type ComponentPatch struct {
	Title        opt.Value[string]              `json:"title"`
	SectionID    opt.Value[string]              `json:"sectionId"`
	OwnerID      opt.Value[string]              `json:"ownerId"`
	Tool         opt.Value[*string]             `json:"tool"`
	HealthStatus opt.Value[models.HealthStatus] `json:"healthStatus"`
	CurrentState opt.Value[*string]             `json:"currentState"`
	TargetState  opt.Value[*string]             `json:"targetState"`
	PositionX    opt.Value[float64]             `json:"positionX"`
	PositionY    opt.Value[float64]             `json:"positionY"`
}

// ListComponents returns components ordered by section order, then creation time.
func ListComponents(ctx context.Context, db *gorm.DB, filters ComponentFilters) ([]models.Component, error) {
	if filters.HealthStatus != "" && !filters.HealthStatus.Valid() {
		return nil, apperr.Validationf("invalid health status %q", filters.HealthStatus)
	}
	q := db.WithContext(ctx).Model(&models.Component{}).
		Joins("JOIN sections ON sections.id = components.section_id")
	if filters.SectionID != "" {
		q = q.Where("components.section_id = ?", filters.SectionID)
	}
	if filters.HealthStatus != "" {
		q = q.Where("components.health_status = ?", filters.HealthStatus)
	}

	var components []models.Component
	err := q.Preload("Section").
		Preload("Owner").
		Preload("Metrics", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Order("sections.sort_order ASC, components.created_at ASC").
		Find(&components).Error
	if err != nil {
		return nil, fmt.Errorf("process: list components: %w", err)
	}
	return components, nil
}

// GetComponent returns a component with every attached entity.
func GetComponent(ctx context.Context, db *gorm.DB, id string) (*models.Component, error) {
	tx := db.WithContext(ctx).
		Preload("Section").
		Preload("Owner").
		Preload("Metrics", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Preload("Todos", func(tx *gorm.DB) *gorm.DB { return tx.Order("completed ASC, due_date ASC, created_at DESC") }).
		Preload("Todos.Assignee").
		Preload("Issues", func(tx *gorm.DB) *gorm.DB { return tx.Order("priority ASC, created_at DESC") }).
		Preload("Issues.ReportedBy").
		Preload("Ideas", func(tx *gorm.DB) *gorm.DB { return tx.Order("implemented ASC, votes DESC, created_at DESC") }).
		Preload("Ideas.SubmittedBy").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		Preload("Comments.Author").
		Preload("OutgoingConnections").
		Preload("IncomingConnections")
	return load[models.Component](tx, "component", id)
}

// CreateComponent adds a component to a section.
func CreateComponent(ctx context.Context, db *gorm.DB, actor Actor, opts CreateComponentOpts) (*models.Component, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(opts.Title)
	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if opts.SectionID == "" {
		missing = append(missing, "sectionId")
	}
	if opts.OwnerID == "" {
		missing = append(missing, "ownerId")
	}
	if len(missing) > 0 {
		return nil, apperr.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	status := opts.HealthStatus
	if status == "" {
		status = models.HealthGray
	}
	if !status.Valid() {
		return nil, apperr.Validationf("invalid health status %q", opts.HealthStatus)
	}

	component := models.Component{
		Title:        title,
		SectionID:    opts.SectionID,
		OwnerID:      opts.OwnerID,
		Tool:         opts.Tool,
		HealthStatus: status,
		CurrentState: opts.CurrentState,
		TargetState:  opts.TargetState,
		PositionX:    opts.PositionX,
		PositionY:    opts.PositionY,
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Section](tx, "section", opts.SectionID); err != nil {
			return err
		}
		if err := mustExist[models.User](tx, "owner", opts.OwnerID); err != nil {
			return err
		}
		if err := tx.Create(&component).Error; err != nil {
			return fmt.Errorf("process: create component: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntityComponent, component.ID, map[string]any{
			"title":     component.Title,
			"sectionId": component.SectionID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// UpdateComponent applies a partial update. The persisted health status is
// whatever the caller sets; it is never derived here.
func UpdateComponent(ctx context.Context, db *gorm.DB, actor Actor, id string, in ComponentPatch) (*models.Component, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if title, ok := in.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return nil, apperr.Validationf("component title cannot be empty")
	}
	if s, ok := in.HealthStatus.Get(); ok && !s.Valid() {
		return nil, apperr.Validationf("invalid health status %q", s)
	}
	if s, ok := in.SectionID.Get(); ok && s == "" {
		return nil, apperr.Validationf("component sectionId cannot be empty")
	}
	if o, ok := in.OwnerID.Get(); ok && o == "" {
		return nil, apperr.Validationf("component ownerId cannot be empty")
	}

	var component *models.Component
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		component, err = load[models.Component](tx, "component", id)
		if err != nil {
			return err
		}
		if s, ok := in.SectionID.Get(); ok {
			if err := mustExist[models.Section](tx, "section", s); err != nil {
				return err
			}
		}
		if o, ok := in.OwnerID.Get(); ok {
			if err := mustExist[models.User](tx, "owner", o); err != nil {
				return err
			}
		}

		p := newPatch()
		if title, ok := in.Title.Get(); ok {
			p.set("title", "title", strings.TrimSpace(title))
		}
		apply(p, in.SectionID, "section_id", "sectionId")
		apply(p, in.OwnerID, "owner_id", "ownerId")
		apply(p, in.Tool, "tool", "tool")
		apply(p, in.HealthStatus, "health_status", "healthStatus")
		apply(p, in.CurrentState, "current_state", "currentState")
		apply(p, in.TargetState, "target_state", "targetState")
		apply(p, in.PositionX, "position_x", "positionX")
		apply(p, in.PositionY, "position_y", "positionY")
		if p.empty() {
			return nil
		}
		if err := p.update(tx, component, id); err != nil {
			return err
		}
		return record(tx, actor, activity.ActionUpdated, activity.EntityComponent, id, p.changes)
	})
	if err != nil {
		return nil, err
	}
	return component, nil
}

// DeleteComponent removes a component together with its metrics, todos,
// issues, ideas, comments, and connections in either direction.
func DeleteComponent(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		component, err := load[models.Component](tx, "component", id)
		if err != nil {
			return err
		}
		for _, child := range []any{&models.Metric{}, &models.Todo{}, &models.Issue{}, &models.Idea{}, &models.Comment{}} {
			if err := tx.Where("component_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("process: delete %T of component %s: %w", child, id, err)
			}
		}
		if err := tx.Where("from_component_id = ? OR to_component_id = ?", id, id).Delete(&models.Connection{}).Error; err != nil {
			return fmt.Errorf("process: delete connections of component %s: %w", id, err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Component{}).Error; err != nil {
			return fmt.Errorf("process: delete component %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntityComponent, id, map[string]any{
			"title": component.Title,
		})
	})
}
