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

// PreviewLength bounds the comment text copied into audit payloads.
const PreviewLength = 100

type CreateCommentOpts struct {
	ComponentID string `json:"componentId"`
	Content     string `json:"content"`
}

// ListComments returns a component's comments, newest first.
func ListComments(ctx context.Context, db *gorm.DB, componentID string) ([]models.Comment, error) {
	q := db.WithContext(ctx).Model(&models.Comment{})
	if componentID != "" {
		q = q.Where("component_id = ?", componentID)
	}
	var comments []models.Comment
	if err := q.Preload("Author").Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("process: list comments: %w", err)
	}
	return comments, nil
}

// CreateComment posts a comment authored by the acting user.
func CreateComment(ctx context.Context, db *gorm.DB, actor Actor, opts CreateCommentOpts) (*models.Comment, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if opts.ComponentID == "" || strings.TrimSpace(opts.Content) == "" {
		return nil, apperr.Validationf("missing required fields: componentId, content")
	}

	comment := models.Comment{
		ComponentID: opts.ComponentID,
		Content:     opts.Content,
		AuthorID:    actor.UserID,
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Component](tx, "component", opts.ComponentID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("process: create comment: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntityComment, comment.ID, map[string]any{
			"componentId":    comment.ComponentID,
			"contentPreview": activity.Preview(comment.Content, PreviewLength),
		})
	})
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Preload("Author").Where("id = ?", comment.ID).Take(&comment).Error; err != nil {
		return nil, fmt.Errorf("process: reload comment %s: %w", comment.ID, err)
	}
	return &comment, nil
}

// canEditComment lets authors edit their own comments and writers edit any.
func canEditComment(actor Actor, c *models.Comment) error {
	if c.AuthorID == actor.UserID || actor.Role.CanWrite() {
		return nil
	}
	return apperr.Unauthorizedf("insufficient permissions: only the author or a manager may change this comment")
}

// UpdateComment replaces a comment's content.
func UpdateComment(ctx context.Context, db *gorm.DB, actor Actor, id, content string) (*models.Comment, error) {
	if err := actor.authenticated(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validationf("comment content cannot be empty")
	}

	var comment *models.Comment
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		comment, err = load[models.Comment](tx, "comment", id)
		if err != nil {
			return err
		}
		if err := canEditComment(actor, comment); err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("id = ?", id).Update("content", content).Error; err != nil {
			return fmt.Errorf("process: update comment %s: %w", id, err)
		}
		if err := tx.Preload("Author").Where("id = ?", id).Take(comment).Error; err != nil {
			return fmt.Errorf("process: reload comment %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionUpdated, activity.EntityComment, id, map[string]any{
			"contentPreview": activity.Preview(content, PreviewLength),
		})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment.
func DeleteComment(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.authenticated(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		comment, err := load[models.Comment](tx, "comment", id)
		if err != nil {
			return err
		}
		if err := canEditComment(actor, comment); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("process: delete comment %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntityComment, id, map[string]any{
			"componentId":    comment.ComponentID,
			"contentPreview": activity.Preview(comment.Content, PreviewLength),
		})
	})
}
