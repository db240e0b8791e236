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

// TodoFilters holds optional filters for listing todos.
type TodoFilters struct {
	ComponentID string
	Completed   *bool
	AssigneeID  string
}

type CreateTodoOpts struct {
	ComponentID string     `json:"componentId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

// TodoPatch is a partial update of a todo.
type TodoPatch struct {
	Title       opt.Value[string]     `json:"title"`
	Description opt.Value[*string]    `json:"description"`
	AssigneeID  opt.Value[*string]    `json:"assigneeId"`
	DueDate     opt.Value[*time.Time] `json:"dueDate"`
	Completed   opt.Value[bool]       `json:"completed"`
}

// ListTodos returns open todos first, then by due date, newest first within ties.
func ListTodos(ctx context.Context, db *gorm.DB, filters TodoFilters) ([]models.Todo, error) {
	q := db.WithContext(ctx).Model(&models.Todo{})
	if filters.ComponentID != "" {
		q = q.Where("component_id = ?", filters.ComponentID)
	}
	if filters.Completed != nil {
		q = q.Where("completed = ?", *filters.Completed)
	}
	if filters.AssigneeID != "" {
		q = q.Where("assignee_id = ?", filters.AssigneeID)
	}
	var todos []models.Todo
	err := q.Preload("Assignee").
		Preload("Component", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") }).
		Order("completed ASC, due_date ASC, created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("process: list todos: %w", err)
	}
	return todos, nil
}

// CreateTodo adds a todo to a component.
func CreateTodo(ctx context.Context, db *gorm.DB, actor Actor, opts CreateTodoOpts) (*models.Todo, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(opts.Title)
	if opts.ComponentID == "" || title == "" {
		return nil, apperr.Validationf("missing required fields: componentId, title")
	}
	if opts.AssigneeID != nil && *opts.AssigneeID == "" {
		opts.AssigneeID = nil
	}

	todo := models.Todo{
		ComponentID: opts.ComponentID,
		Title:       title,
		Description: opts.Description,
		AssigneeID:  opts.AssigneeID,
		DueDate:     opts.DueDate,
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Component](tx, "component", opts.ComponentID); err != nil {
			return err
		}
		if todo.AssigneeID != nil {
			if err := mustExist[models.User](tx, "assignee", *todo.AssigneeID); err != nil {
				return err
			}
		}
		if err := tx.Create(&todo).Error; err != nil {
			return fmt.Errorf("process: create todo: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntityTodo, todo.ID, map[string]any{
			"title":       todo.Title,
			"componentId": todo.ComponentID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies a partial update. Flipping Completed sets or clears
// CompletedAt and is logged as completed or uncompleted.
func UpdateTodo(ctx context.Context, db *gorm.DB, actor Actor, id string, in TodoPatch) (*models.Todo, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if title, ok := in.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return nil, apperr.Validationf("todo title cannot be empty")
	}

	var todo *models.Todo
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		todo, err = load[models.Todo](tx, "todo", id)
		if err != nil {
			return err
		}
		if a, ok := in.AssigneeID.Get(); ok && a != nil && *a != "" {
			if err := mustExist[models.User](tx, "assignee", *a); err != nil {
				return err
			}
		}

		p := newPatch()
		if title, ok := in.Title.Get(); ok {
			p.set("title", "title", strings.TrimSpace(title))
		}
		apply(p, in.Description, "description", "description")
		if a, ok := in.AssigneeID.Get(); ok {
			if a != nil && *a == "" {
				a = nil
			}
			p.set("assignee_id", "assigneeId", a)
		}
		apply(p, in.DueDate, "due_date", "dueDate")
		apply(p, in.Completed, "completed", "completed")

		var next *bool
		if c, ok := in.Completed.Get(); ok {
			next = &c
		}
		action := activity.TodoVerb(todo.Completed, next)
		switch action {
		case activity.ActionCompleted:
			now := time.Now()
			p.set("completed_at", "completedAt", &now)
		case activity.ActionUncompleted:
			p.set("completed_at", "completedAt", (*time.Time)(nil))
		}
		if p.empty() {
			return nil
		}
		if err := p.update(tx, todo, id); err != nil {
			return err
		}
		return record(tx, actor, action, activity.EntityTodo, id, p.changes)
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// DeleteTodo removes a todo.
func DeleteTodo(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		todo, err := load[models.Todo](tx, "todo", id)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Todo{}).Error; err != nil {
			return fmt.Errorf("process: delete todo %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntityTodo, id, map[string]any{
			"title": todo.Title,
		})
	})
}
