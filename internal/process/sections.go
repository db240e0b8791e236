package process

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/opt"
	"gorm.io/gorm"
)

// CreateSectionOpts holds parameters for creating a section. A nil Order
// takes the next free position after the current maximum.
type CreateSectionOpts struct {
	Name        string  `json:"name"`
	Order       *int    `json:"order"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

// SectionPatch is a partial update of a section.
type SectionPatch struct {
	Name        opt.Value[string]  `json:"name"`
	Order       opt.Value[int]     `json:"order"`
	Color       opt.Value[*string] `json:"color"`
	Description opt.Value[*string] `json:"description"`
}

// ListSections returns all sections in display order with their components.
func ListSections(ctx context.Context, db *gorm.DB) ([]models.Section, error) {
	var sections []models.Section
	err := db.WithContext(ctx).
		Preload("Components", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Components.Owner").
		Preload("Components.Metrics", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Order("sort_order ASC").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("process: list sections: %w", err)
	}
	return sections, nil
}

// GetSection returns one section with its components.
func GetSection(ctx context.Context, db *gorm.DB, id string) (*models.Section, error) {
	tx := db.WithContext(ctx).
		Preload("Components", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Components.Owner")
	return load[models.Section](tx, "section", id)
}

// nextSectionOrder returns max(order)+1, or 0 when there are no sections.
func nextSectionOrder(tx *gorm.DB) (int, error) {
	var max sql.NullInt64
	if err := tx.Model(&models.Section{}).Select("MAX(sort_order)").Row().Scan(&max); err != nil {
		return 0, fmt.Errorf("process: next section order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// sectionOrderTaken reports whether another section already uses order.
func sectionOrderTaken(tx *gorm.DB, order int, exceptID string) (bool, error) {
	q := tx.Model(&models.Section{}).Where("sort_order = ?", order)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("process: check section order %d: %w", order, err)
	}
	return n > 0, nil
}

// CreateSection adds a section. An order already in use is a validation failure.
func CreateSection(ctx context.Context, db *gorm.DB, actor Actor, opts CreateSectionOpts) (*models.Section, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, apperr.Validationf("missing required field: name")
	}
	if opts.Order != nil && *opts.Order < 0 {
		return nil, apperr.Validationf("section order must be non-negative")
	}

	section := models.Section{Name: name, Color: opts.Color, Description: opts.Description}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if opts.Order != nil {
			section.Order = *opts.Order
		} else {
			next, err := nextSectionOrder(tx)
			if err != nil {
				return err
			}
			section.Order = next
		}
		taken, err := sectionOrderTaken(tx, section.Order, "")
		if err != nil {
			return err
		}
		if taken {
			return apperr.Validationf("section with order %d already exists", section.Order)
		}

		if err := tx.Create(&section).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Validationf("section with order %d already exists", section.Order)
			}
			return fmt.Errorf("process: create section: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntitySection, section.ID, map[string]any{
			"name":  section.Name,
			"order": section.Order,
		})
	})
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateSection applies a partial update. Moving to an order held by another
// section is a validation failure.
func UpdateSection(ctx context.Context, db *gorm.DB, actor Actor, id string, in SectionPatch) (*models.Section, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if name, ok := in.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return nil, apperr.Validationf("section name cannot be empty")
	}
	if order, ok := in.Order.Get(); ok && order < 0 {
		return nil, apperr.Validationf("section order must be non-negative")
	}

	var section *models.Section
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		section, err = load[models.Section](tx, "section", id)
		if err != nil {
			return err
		}
		if order, ok := in.Order.Get(); ok && order != section.Order {
			taken, err := sectionOrderTaken(tx, order, id)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Validationf("section with order %d already exists", order)
			}
		}

		p := newPatch()
		if name, ok := in.Name.Get(); ok {
			p.set("name", "name", strings.TrimSpace(name))
		}
		apply(p, in.Order, "sort_order", "order")
		apply(p, in.Color, "color", "color")
		apply(p, in.Description, "description", "description")
		if p.empty() {
			return nil
		}
		if err := p.update(tx, section, id); err != nil {
			return err
		}
		return record(tx, actor, activity.ActionUpdated, activity.EntitySection, id, p.changes)
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

// DeleteSection removes an empty section. Sections that still hold
// components cannot be deleted.
func DeleteSection(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		section, err := load[models.Section](tx, "section", id)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Component{}).Where("section_id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("process: count components in section %s: %w", id, err)
		}
		if n > 0 {
			return apperr.Validationf("section %q still has %d components", section.Name, n)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Section{}).Error; err != nil {
			return fmt.Errorf("process: delete section %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntitySection, id, map[string]any{
			"name":  section.Name,
			"order": section.Order,
		})
	})
}
