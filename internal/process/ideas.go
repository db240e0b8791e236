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

type IdeaFilters struct {
	ComponentID string
	Implemented *bool
}

type CreateIdeaOpts struct {
	ComponentID string  `json:"componentId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// IdeaPatch is a partial update of an idea.
type IdeaPatch struct {
	Title       opt.Value[string]  `json:"title"`
	Description opt.Value[*string] `json:"description"`
	Votes       opt.Value[int]     `json:"votes"`
	Implemented opt.Value[bool]    `json:"implemented"`
}

// ListIdeas returns pending ideas first, most voted first.
func ListIdeas(ctx context.Context, db *gorm.DB, filters IdeaFilters) ([]models.Idea, error) {
	q := db.WithContext(ctx).Model(&models.Idea{})
	if filters.ComponentID != "" {
		q = q.Where("component_id = ?", filters.ComponentID)
	}
	if filters.Implemented != nil {
		q = q.Where("implemented = ?", *filters.Implemented)
	}
	var ideas []models.Idea
	err := q.Preload("SubmittedBy").
		Preload("Component", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") }).
		Order("implemented ASC, votes DESC, created_at DESC").
		Find(&ideas).Error
	if err != nil {
		return nil, fmt.Errorf("process: list ideas: %w", err)
	}
	return ideas, nil
}

// CreateIdea submits an idea as the acting user with zero votes.
func CreateIdea(ctx context.Context, db *gorm.DB, actor Actor, opts CreateIdeaOpts) (*models.Idea, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(opts.Title)
	if opts.ComponentID == "" || title == "" {
		return nil, apperr.Validationf("missing required fields: componentId, title")
	}

	idea := models.Idea{
		ComponentID:   opts.ComponentID,
		Title:         title,
		Description:   opts.Description,
		SubmittedByID: actor.UserID,
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Component](tx, "component", opts.ComponentID); err != nil {
			return err
		}
		if err := tx.Create(&idea).Error; err != nil {
			return fmt.Errorf("process: create idea: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntityIdea, idea.ID, map[string]any{
			"title":       idea.Title,
			"componentId": idea.ComponentID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// UpdateIdea applies a partial update. Flipping Implemented is logged as
// marked_implemented or marked_not_implemented.
func UpdateIdea(ctx context.Context, db *gorm.DB, actor Actor, id string, in IdeaPatch) (*models.Idea, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if title, ok := in.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return nil, apperr.Validationf("idea title cannot be empty")
	}
	if v, ok := in.Votes.Get(); ok && v < 0 {
		return nil, apperr.Validationf("votes must be non-negative, got %d", v)
	}

	var idea *models.Idea
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		idea, err = load[models.Idea](tx, "idea", id)
		if err != nil {
			return err
		}

		p := newPatch()
		if title, ok := in.Title.Get(); ok {
			p.set("title", "title", strings.TrimSpace(title))
		}
		apply(p, in.Description, "description", "description")
		apply(p, in.Votes, "votes", "votes")
		apply(p, in.Implemented, "implemented", "implemented")
		if p.empty() {
			return nil
		}

		var next *bool
		if v, ok := in.Implemented.Get(); ok {
			next = &v
		}
		action := activity.IdeaVerb(idea.Implemented, next)
		if err := p.update(tx, idea, id); err != nil {
			return err
		}
		return record(tx, actor, action, activity.EntityIdea, id, p.changes)
	})
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// DeleteIdea removes an idea.
func DeleteIdea(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		idea, err := load[models.Idea](tx, "idea", id)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Idea{}).Error; err != nil {
			return fmt.Errorf("process: delete idea %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntityIdea, id, map[string]any{
			"title": idea.Title,
			"votes": idea.Votes,
		})
	})
}
