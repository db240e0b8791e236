package dashboard

import (
	"context"

	"github.com/zulandar/processmap/internal/health"
	"github.com/zulandar/processmap/internal/layout"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/process"
	"gorm.io/gorm"
)

// componentView is a component with its advisory computed health next to
// the persisted one.
type componentView struct {
	models.Component
	ComputedHealth models.HealthStatus `json:"computedHealth"`
}

func viewOf(c models.Component) componentView {
	return componentView{Component: c, ComputedHealth: health.Classify(health.FromMetrics(c.Metrics))}
}

func viewsOf(cs []models.Component) []componentView {
	out := make([]componentView, len(cs))
	for i, c := range cs {
		out[i] = viewOf(c)
	}
	return out
}

type sectionView struct {
	models.Section
	Components     []componentView `json:"components"`
	ComponentCount int             `json:"componentCount"`
}

func sectionViewOf(s models.Section) sectionView {
	return sectionView{Section: s, Components: viewsOf(s.Components), ComponentCount: len(s.Components)}
}

// ProcessMap is the full board: sections with components plus the
// flowchart graph.
type ProcessMap struct {
	Sections []sectionView `json:"sections"`
	Graph    layout.Graph  `json:"graph"`
}

func loadProcessMap(ctx context.Context, db *gorm.DB) (*ProcessMap, error) {
	sections, err := process.ListSections(ctx, db)
	if err != nil {
		return nil, err
	}
	conns, err := process.ListConnections(ctx, db, "")
	if err != nil {
		return nil, err
	}
	views := make([]sectionView, len(sections))
	for i, s := range sections {
		views[i] = sectionViewOf(s)
	}
	ls, links := layout.FromModels(sections, conns)
	return &ProcessMap{Sections: views, Graph: layout.Compute(ls, links)}, nil
}

type metricReading struct {
	MetricID string  `json:"metricId"`
	Name     string  `json:"name"`
	Current  *string `json:"current"`
	Target   *string `json:"target"`
	Meets    bool    `json:"meetsTarget"`
}

// ComponentHealth compares persisted and computed health for one component.
type ComponentHealth struct {
	ComponentID string              `json:"componentId"`
	Persisted   models.HealthStatus `json:"persisted"`
	Computed    models.HealthStatus `json:"computed"`
	Matches     bool                `json:"matches"`
	Readings    []metricReading     `json:"readings"`
}

func componentHealth(ctx context.Context, db *gorm.DB, id string) (*ComponentHealth, error) {
	c, err := process.GetComponent(ctx, db, id)
	if err != nil {
		return nil, err
	}
	readings := health.FromMetrics(c.Metrics)
	out := &ComponentHealth{
		ComponentID: c.ID,
		Persisted:   c.HealthStatus,
		Computed:    health.Classify(readings),
		Readings:    make([]metricReading, len(c.Metrics)),
	}
	out.Matches = out.Persisted == out.Computed
	for i, m := range c.Metrics {
		out.Readings[i] = metricReading{
			MetricID: m.ID,
			Name:     m.Name,
			Current:  m.Current,
			Target:   m.Target,
			Meets:    health.MeetsTarget(readings[i]),
		}
	}
	return out, nil
}
