package process

import (
	"context"
	"fmt"

	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/health"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/gorm"
)

// RecentActivityLimit is how many log rows Stats includes.
const RecentActivityLimit = 10

// Stats is the dashboard summary.
type Stats struct {
	OverallHealth      int                         `json:"overallHealth"`
	TotalComponents    int                         `json:"totalComponents"`
	ComponentsByHealth map[models.HealthStatus]int `json:"componentsByHealth"`
	ActiveTodos        int64                       `json:"activeTodos"`
	OpenIssues         int64                       `json:"openIssues"`
	PendingIdeas       int64                       `json:"pendingIdeas"`
	RecentActivity     []activity.Row              `json:"recentActivity"`
}

// DashboardStats summarizes persisted health and open work. The overall
// score is computed from each component's persisted status.
func DashboardStats(ctx context.Context, db *gorm.DB, reader *activity.Reader) (*Stats, error) {
	q := db.WithContext(ctx)

	var statuses []models.HealthStatus
	if err := q.Model(&models.Component{}).Pluck("health_status", &statuses).Error; err != nil {
		return nil, fmt.Errorf("process: stats: component health: %w", err)
	}

	st := &Stats{
		OverallHealth:      health.OverallScore(statuses),
		TotalComponents:    len(statuses),
		ComponentsByHealth: health.Breakdown(statuses),
	}
	counts := []struct {
		dst   *int64
		model any
		where string
		arg   any
	}{
		{&st.ActiveTodos, &models.Todo{}, "completed = ?", false},
		{&st.OpenIssues, &models.Issue{}, "status <> ?", models.IssueResolved},
		{&st.PendingIdeas, &models.Idea{}, "implemented = ?", false},
	}
	for _, c := range counts {
		if err := q.Model(c.model).Where(c.where, c.arg).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("process: stats: count %T: %w", c.model, err)
		}
	}

	if reader != nil {
		page, err := reader.List(ctx, activity.Query{Limit: RecentActivityLimit})
		if err != nil {
			return nil, fmt.Errorf("process: stats: recent activity: %w", err)
		}
		st.RecentActivity = page.Activities
	}
	return st, nil
}
