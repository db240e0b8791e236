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

// CreateMetricOpts holds parameters for creating a metric. A nil Order
// takes max(order)+1 among the component's metrics, or 0 for the first.
type CreateMetricOpts struct {
	ComponentID string  `json:"componentId"`
	Name        string  `json:"name"`
	Target      *string `json:"target"`
	Current     *string `json:"current"`
	Unit        *string `json:"unit"`
	Order       *int    `json:"order"`
}

// MetricPatch is a partial update of a metric.
type MetricPatch struct {
	Name    opt.Value[string]  `json:"name"`
	Target  opt.Value[*string] `json:"target"`
	Current opt.Value[*string] `json:"current"`
	Unit    opt.Value[*string] `json:"unit"`
	Order   opt.Value[int]     `json:"order"`
}

// ListMetrics returns metrics, optionally for one component, in order.
func ListMetrics(ctx context.Context, db *gorm.DB, componentID string) ([]models.Metric, error) {
	q := db.WithContext(ctx).Model(&models.Metric{})
	if componentID != "" {
		q = q.Where("component_id = ?", componentID)
	}
	var metrics []models.Metric
	if err := q.Order("component_id ASC, sort_order ASC").Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("process: list metrics: %w", err)
	}
	return metrics, nil
}

func nextMetricOrder(tx *gorm.DB, componentID string) (int, error) {
	var max sql.NullInt64
	err := tx.Model(&models.Metric{}).
		Where("component_id = ?", componentID).
		Select("MAX(sort_order)").
		Row().Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("process: next metric order for %s: %w", componentID, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func metricOrderTaken(tx *gorm.DB, componentID string, order int, exceptID string) (bool, error) {
	q := tx.Model(&models.Metric{}).Where("component_id = ? AND sort_order = ?", componentID, order)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("process: check metric order %d: %w", order, err)
	}
	return n > 0, nil
}

// CreateMetric adds a metric to a component.
func CreateMetric(ctx context.Context, db *gorm.DB, actor Actor, opts CreateMetricOpts) (*models.Metric, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.Name)
	if opts.ComponentID == "" || name == "" {
		return nil, apperr.Validationf("missing required fields: componentId, name")
	}
	if opts.Order != nil && *opts.Order < 0 {
		return nil, apperr.Validationf("metric order must be non-negative")
	}

	metric := models.Metric{
		ComponentID: opts.ComponentID,
		Name:        name,
		Target:      opts.Target,
		Current:     opts.Current,
		Unit:        opts.Unit,
	}
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist[models.Component](tx, "component", opts.ComponentID); err != nil {
			return err
		}
		if opts.Order != nil {
			taken, err := metricOrderTaken(tx, opts.ComponentID, *opts.Order, "")
			if err != nil {
				return err
			}
			if taken {
				return apperr.Validationf("metric with order %d already exists on component", *opts.Order)
			}
			metric.Order = *opts.Order
		} else {
			next, err := nextMetricOrder(tx, opts.ComponentID)
			if err != nil {
				return err
			}
			metric.Order = next
		}
		if err := tx.Create(&metric).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Validationf("metric with order %d already exists on component", metric.Order)
			}
			return fmt.Errorf("process: create metric: %w", err)
		}
		return record(tx, actor, activity.ActionCreated, activity.EntityMetric, metric.ID, map[string]any{
			"name":        metric.Name,
			"componentId": metric.ComponentID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

// UpdateMetric applies a partial update.
func UpdateMetric(ctx context.Context, db *gorm.DB, actor Actor, id string, in MetricPatch) (*models.Metric, error) {
	if err := actor.canWrite(); err != nil {
		return nil, err
	}
	if name, ok := in.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return nil, apperr.Validationf("metric name cannot be empty")
	}
	if order, ok := in.Order.Get(); ok && order < 0 {
		return nil, apperr.Validationf("metric order must be non-negative")
	}

	var metric *models.Metric
	err := inTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		metric, err = load[models.Metric](tx, "metric", id)
		if err != nil {
			return err
		}
		if order, ok := in.Order.Get(); ok && order != metric.Order {
			taken, err := metricOrderTaken(tx, metric.ComponentID, order, id)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Validationf("metric with order %d already exists on component", order)
			}
		}

		p := newPatch()
		if name, ok := in.Name.Get(); ok {
			p.set("name", "name", strings.TrimSpace(name))
		}
		apply(p, in.Target, "target", "target")
		apply(p, in.Current, "current", "current")
		apply(p, in.Unit, "unit", "unit")
		apply(p, in.Order, "sort_order", "order")
		if p.empty() {
			return nil
		}
		if err := p.update(tx, metric, id); err != nil {
			return err
		}
		return record(tx, actor, activity.ActionUpdated, activity.EntityMetric, id, p.changes)
	})
	if err != nil {
		return nil, err
	}
	return metric, nil
}

// DeleteMetric removes a metric.
func DeleteMetric(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if err := actor.canWrite(); err != nil {
		return err
	}
	return inTx(ctx, db, func(tx *gorm.DB) error {
		metric, err := load[models.Metric](tx, "metric", id)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Metric{}).Error; err != nil {
			return fmt.Errorf("process: delete metric %s: %w", id, err)
		}
		return record(tx, actor, activity.ActionDeleted, activity.EntityMetric, id, map[string]any{
			"name": metric.Name,
		})
	})
}
