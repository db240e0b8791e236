// Package process implements the tracked-entity operations of the process
// map. Every mutation runs in one transaction that also writes its audit row.
//
// Each operation takes the storage handle explicitly. Mutations take the
// acting user; checks run in the order authorize, validate, resolve
// references, write, record.
package process

import (
	"context"
	"errors"
	"fmt"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/opt"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID string
	Role   models.Role
}

// authenticated fails when no user is present.
func (a Actor) authenticated() error {
	if a.UserID == "" {
		return apperr.Unauthenticatedf("authentication required")
	}
	return nil
}

// canWrite fails unless the actor may modify tracked entities.
func (a Actor) canWrite() error {
	if err := a.authenticated(); err != nil {
		return err
	}
	if !a.Role.CanWrite() {
		return apperr.Unauthorizedf("insufficient permissions: role %s is read-only", a.roleName())
	}
	return nil
}

func (a Actor) roleName() string {
	if a.Role == "" {
		return "(none)"
	}
	return string(a.Role)
}

// inTx runs fn in a transaction bound to ctx.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// load fetches one row by id, mapping a miss to NotFound.
func load[T any](tx *gorm.DB, what, id string) (*T, error) {
	var row T
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("%s not found: %s", what, id)
		}
		return nil, fmt.Errorf("process: get %s %s: %w", what, id, err)
	}
	return &row, nil
}

// mustExist fails with NotFound when no row of T has the given id.
func mustExist[T any](tx *gorm.DB, what, id string) error {
	var n int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("process: check %s %s: %w", what, id, err)
	}
	if n == 0 {
		return apperr.NotFoundf("%s not found: %s", what, id)
	}
	return nil
}

// record writes the audit row for a mutation inside tx.
func record(tx *gorm.DB, actor Actor, action, entityType, entityID string, changes map[string]any) error {
	_, err := activity.Record(tx, activity.Entry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
	})
	return err
}

// patch accumulates the column updates and the audit payload for a partial update.
type patch struct {
	columns map[string]any
	changes map[string]any
}

func newPatch() *patch {
	return &patch{columns: map[string]any{}, changes: map[string]any{}}
}

func (p *patch) empty() bool { return len(p.columns) == 0 }

// set records a supplied field. field is the name callers used; column is
// the database column.
func (p *patch) set(column, field string, v any) {
	p.columns[column] = v
	p.changes[field] = v
}

// apply adds v to p when it was supplied.
func apply[T any](p *patch, v opt.Value[T], column, field string) {
	if val, ok := v.Get(); ok {
		p.set(column, field, val)
	}
}

// update writes p to the row identified by model and reloads it.
func (p *patch) update(tx *gorm.DB, model any, id string) error {
	if p.empty() {
		return nil
	}
	if err := tx.Model(model).Where("id = ?", id).Updates(p.columns).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Validationf("update of %s conflicts with an existing record", id)
		}
		return fmt.Errorf("process: update %s: %w", id, err)
	}
	return tx.Where("id = ?", id).Take(model).Error
}

// isDuplicate reports a unique index violation. The order checks run before
// the write, so this only fires when a concurrent writer took the slot.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ptr returns nil for an empty string.
func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
