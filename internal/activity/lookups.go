package activity

import (
	"context"

	"github.com/zulandar/processmap/internal/models"
	"gorm.io/gorm"
)

// fieldLookup builds a LookupFunc that selects id plus one display column.
func fieldLookup[T any](column string, value func(*T) (string, any)) LookupFunc {
	return func(ctx context.Context, db *gorm.DB, id string) (map[string]any, error) {
		var row T
		if err := db.WithContext(ctx).Select("id", column).Where("id = ?", id).Take(&row).Error; err != nil {
			return nil, err
		}
		rowID, display := value(&row)
		return map[string]any{"id": rowID, column: display}, nil
	}
}

func defaultLookups() map[string]LookupFunc {
	return map[string]LookupFunc{
		EntityComponent: fieldLookup("title", func(c *models.Component) (string, any) { return c.ID, c.Title }),
		EntityTodo:      fieldLookup("title", func(t *models.Todo) (string, any) { return t.ID, t.Title }),
		EntityIssue:     fieldLookup("title", func(i *models.Issue) (string, any) { return i.ID, i.Title }),
		EntityIdea:      fieldLookup("title", func(i *models.Idea) (string, any) { return i.ID, i.Title }),
		EntityMetric:    fieldLookup("name", func(m *models.Metric) (string, any) { return m.ID, m.Name }),
		EntityComment:   fieldLookup("content", func(c *models.Comment) (string, any) { return c.ID, c.Content }),
		EntitySection:   fieldLookup("name", func(s *models.Section) (string, any) { return s.ID, s.Name }),
		EntitySnapshot:  fieldLookup("name", func(s *models.Snapshot) (string, any) { return s.ID, s.Name }),
	}
}
