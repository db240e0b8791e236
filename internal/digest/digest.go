// Package digest builds a periodic health summary of the process map and
// delivers it to chat webhooks. It only reads from the database.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/processmap/internal/health"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/gorm"
)

// Window is the period activity is counted over.
const Window = 24 * time.Hour

// Drift is a component whose metrics disagree with its persisted health.
type Drift struct {
	ComponentID string
	Title       string
	Persisted   models.HealthStatus
	Computed    models.HealthStatus
}

// Report holds the digest figures at one point in time.
type Report struct {
	GeneratedAt     time.Time
	PeriodStart     time.Time
	TotalComponents int
	OverallScore    int
	Breakdown       map[models.HealthStatus]int
	Drift           []Drift
	OpenIssues      int64
	CriticalIssues  int64
	ActiveTodos     int64
	OverdueTodos    int64
	PendingIdeas    int64
	ActivityCount   int64
}

// Build gathers the report for the Window ending at now.
func Build(ctx context.Context, db *gorm.DB, now time.Time) (*Report, error) {
	q := db.WithContext(ctx)
	report := &Report{GeneratedAt: now, PeriodStart: now.Add(-Window)}

	var components []models.Component
	if err := q.Preload("Metrics").Order("title ASC").Find(&components).Error; err != nil {
		return nil, fmt.Errorf("digest: load components: %w", err)
	}
	statuses := make([]models.HealthStatus, len(components))
	for i, c := range components {
		statuses[i] = c.HealthStatus
		// BLUE is set by hand and never derived, so it cannot drift.
		if c.HealthStatus == models.HealthBlue {
			continue
		}
		computed := health.Classify(health.FromMetrics(c.Metrics))
		if computed != c.HealthStatus {
			report.Drift = append(report.Drift, Drift{
				ComponentID: c.ID,
				Title:       c.Title,
				Persisted:   c.HealthStatus,
				Computed:    computed,
			})
		}
	}
	report.TotalComponents = len(components)
	report.OverallScore = health.OverallScore(statuses)
	report.Breakdown = health.Breakdown(statuses)

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&report.OpenIssues, &models.Issue{}, "status <> ?", []any{models.IssueResolved}},
		{&report.CriticalIssues, &models.Issue{}, "status <> ? AND priority = ?", []any{models.IssueResolved, models.PriorityP1}},
		{&report.ActiveTodos, &models.Todo{}, "completed = ?", []any{false}},
		{&report.OverdueTodos, &models.Todo{}, "completed = ? AND due_date IS NOT NULL AND due_date < ?", []any{false, now}},
		{&report.PendingIdeas, &models.Idea{}, "implemented = ?", []any{false}},
		{&report.ActivityCount, &models.ActivityLog{}, "created_at >= ? AND created_at < ?", []any{report.PeriodStart, now}},
	}
	for _, c := range counts {
		if err := q.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("digest: count %T: %w", c.model, err)
		}
	}
	return report, nil
}
