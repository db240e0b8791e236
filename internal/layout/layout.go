// Package layout positions process map components as a flowchart.
//
// Sections stack vertically in order. Within a section components fill a
// grid of Columns per row, left to right.
package layout

import (
	"github.com/zulandar/processmap/internal/models"
)

const (
	StartX     = 150.0
	StartY     = 100.0
	HSpacing   = 280.0
	VSpacing   = 180.0
	SectionGap = 80.0
	Columns    = 4
)

// EdgeKind distinguishes implicit flow edges from stored connections.
type EdgeKind string

const (
	EdgeFlow       EdgeKind = "flow"
	EdgeConnection EdgeKind = "connection"
)

// Component is one node input.
type Component struct {
	ID     string
	Title  string
	Health models.HealthStatus
}

// Section is an ordered group of components.
type Section struct {
	ID         string
	Name       string
	Color      string
	Components []Component
}

// Link is a stored connection between two components.
type Link struct {
	ID    string
	From  string
	To    string
	Label string
}

type Node struct {
	ID        string              `json:"id"`
	SectionID string              `json:"sectionId"`
	Title     string              `json:"title"`
	Health    models.HealthStatus `json:"healthStatus"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
}

type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Label  string   `json:"label,omitempty"`
	Kind   EdgeKind `json:"kind"`
}

// Band is the vertical extent of one section.
type Band struct {
	SectionID string  `json:"sectionId"`
	Name      string  `json:"name"`
	Color     string  `json:"color,omitempty"`
	Y         float64 `json:"y"`
	Height    float64 `json:"height"`
}

type Graph struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Sections []Band `json:"sections"`
}

// Compute lays out sections in the order given. Links whose endpoints are
// not laid out are dropped.
func Compute(sections []Section, links []Link) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}, Sections: []Band{}}
	placed := make(map[string]bool)

	y := StartY
	for _, s := range sections {
		for i, c := range s.Components {
			row, col := i/Columns, i%Columns
			g.Nodes = append(g.Nodes, Node{
				ID:        c.ID,
				SectionID: s.ID,
				Title:     c.Title,
				Health:    c.Health,
				X:         StartX + float64(col)*HSpacing,
				Y:         y + float64(row)*VSpacing,
			})
			placed[c.ID] = true
			if i > 0 {
				prev := s.Components[i-1].ID
				g.Edges = append(g.Edges, Edge{
					ID:     "flow-" + prev + "-" + c.ID,
					Source: prev,
					Target: c.ID,
					Kind:   EdgeFlow,
				})
			}
		}
		rows := (len(s.Components) + Columns - 1) / Columns
		height := float64(rows) * VSpacing
		g.Sections = append(g.Sections, Band{SectionID: s.ID, Name: s.Name, Color: s.Color, Y: y, Height: height})
		y += height + SectionGap
	}

	for _, l := range links {
		if !placed[l.From] || !placed[l.To] {
			continue
		}
		g.Edges = append(g.Edges, Edge{ID: l.ID, Source: l.From, Target: l.To, Label: l.Label, Kind: EdgeConnection})
	}
	return g
}

// FromModels converts loaded sections and connections into layout input.
func FromModels(sections []models.Section, conns []models.Connection) ([]Section, []Link) {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		ls := Section{ID: s.ID, Name: s.Name}
		if s.Color != nil {
			ls.Color = *s.Color
		}
		for _, c := range s.Components {
			ls.Components = append(ls.Components, Component{ID: c.ID, Title: c.Title, Health: c.HealthStatus})
		}
		out = append(out, ls)
	}
	links := make([]Link, 0, len(conns))
	for _, c := range conns {
		links = append(links, Link{ID: c.ID, From: c.FromComponentID, To: c.ToComponentID, Label: c.Label})
	}
	return out, links
}
