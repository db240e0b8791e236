package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/opt"
	"gorm.io/gorm"
)

// IssueFilters holds optional filters for listing issues.
type IssueFilters struct {
	ComponentID string
	Status      models.IssueStatus
	Priority    models.Priority
}

type CreateIssueOpts struct {
	ComponentID string          `json:"componentId"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Priority    models.Priority `json:"priority"`
}

// IssuePatch is a partial update of an issue.
type IssuePatch struct {
	Title       opt.Value[string]             `json:"title"`
	Description opt.Value[*string]            `json:"description"`
	Priority    opt.Value[models.Priority]    `json:"priority"`
	Status      opt.Value[models.IssueStatus] `json:"status"`
}

// ListIssues returns issues by priority, newest first within a priority.
func ListIssues(ctx context.Context, db *gorm.DB, filters IssueFilters) ([]models.Issue, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, apperr.Validationf("invalid issue status %q", filters.Status)
	}
	if filters.Priority != "" && !filters.Priority.Valid() {
		return nil, apperr.Validationf("invalid priority %q", filters.Priority)
	}
	q := db.WithContext(ctx).Model(&models.Issue{})
	if filters.ComponentID != "" {
		q = q.Where("component_id = ?", filters.ComponentID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	var issues []models.Issue
	err := q.Preload("ReportedBy").
		Preload("Component", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") }).
		Order("priority ASC, created_at DESC").
		Find(&issues).Error
	if err != nil {
		return nil, fmt.Errorf("process: list issues: %w", err)
	}
	return issues, nil
}

// CreateIssue reports an issue on a component as the acting user.
func CreateIssue(ctx context.Context, db *gorm.DB, actor Actor, opts CreateIssueOpts) (*models.Issue, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(opts.Title)
	if opts.ComponentID == "" || title == "" {
		return nil, apperr.Validationf("missing required fields: componentId, title")
	}
	priority := opts.Priority
	if priority == "" {
		priority = models.PriorityP2
	}
	if !priority.Valid() {
		return nil, apperr.Validationf("invalid priority %q", opts.Priority)
	}

	issue := models.Issue{
		ComponentID:  opts.ComponentID,
		Title:        title,
		Description:  opts.Description,
		Priority:     priority,
		Status:       models.IssueOpen,
		ReportedByID: actor.UserID,
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Component](tx, "component", opts.ComponentID); err != nil {
			return err
		}
		if err := tx.Create(&issue).Error; err != nil {
			return fmt.Errorf("process: create issue: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntityIssue, issue.ID, map[string]any{
			"title":       issue.Title,
			"priority":    issue.Priority,
			"componentId": issue.ComponentID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue applies a partial update. Entering RESOLVED stamps
// ResolvedAt; leaving it clears ResolvedAt. A status change is logged as
// status_changed with oldStatus and newStatus.
func UpdateIssue(ctx context.Context, db *gorm.DB, actor Actor, id string, in IssuePatch) (*models.Issue, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if title, ok := in.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return nil, apperr.Validationf("issue title cannot be empty")
	}
	if pr, ok := in.Priority.Get(); ok && !pr.Valid() {
		return nil, apperr.Validationf("invalid priority %q", pr)
	}
	if st, ok := in.Status.Get(); ok && !st.Valid() {
		return nil, apperr.Validationf("invalid issue status %q", st)
	}

	var issue *models.Issue
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		issue, err = load[models.Issue](tx, "issue", id)
		if err != nil {
			return err
		}

		p := newPatch()
		if title, ok := in.Title.Get(); ok {
			p.set("title", "title", strings.TrimSpace(title))
		}
		apply(p, in.Description, "description", "description")
		apply(p, in.Priority, "priority", "priority")
		apply(p, in.Status, "status", "status")

		var next *models.IssueStatus
		if st, ok := in.Status.Get(); ok {
			next = &st
		}
		oldStatus := issue.Status
		action := activity.StatusVerb(oldStatus, next)
		if action == activity.ActionStatusChanged {
			switch {
			case *next == models.IssueResolved:
				now := time.Now()
				p.set("resolved_at", "resolvedAt", &now)
			case oldStatus == models.IssueResolved:
				p.set("resolved_at", "resolvedAt", (*time.Time)(nil))
			}
		}
		if p.empty() {
			return nil
		}
		if err := p.update(tx, issue, id); err != nil {
			return err
		}
		if action == activity.ActionStatusChanged {
			p.changes["oldStatus"] = oldStatus
			p.changes["newStatus"] = *next
		}
		return record(tx, actor, action, activity.EntityIssue, id, p.changes)
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// DeleteIssue removes an issue.
func DeleteIssue(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		issue, err := load[models.Issue](tx, "issue", id)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Issue{}).Error; err != nil {
			return fmt.Errorf("process: delete issue %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntityIssue, id, map[string]any{
			"title":    issue.Title,
			"priority": issue.Priority,
		})
	})
}
