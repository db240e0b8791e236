package digest

import (
	"fmt"
	"strings"

	"github.com/zulandar/processmap/internal/models"
)

// Color constants for message severity.
const (
	ColorSuccess = "#36a64f"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Message is a digest formatted for chat.
type Message struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// Field is a key-value pair shown alongside the message.
type Field struct {
	Name  string
	Value string
	Short bool
}

// maxDriftLines caps how many drifting components are listed by name.
const maxDriftLines = 10

func scoreColor(score int) string {
	switch {
	case score >= 80:
		return ColorSuccess
	case score >= 50:
		return ColorWarning
	default:
		return ColorError
	}
}

// Format renders r as a chat message.
func Format(r *Report) Message {
	var lines []string
	lines = append(lines, fmt.Sprintf("**Overall health**: %d/100 across %d components", r.OverallScore, r.TotalComponents))

	var parts []string
	for _, s := range models.HealthStatuses {
		if n := r.Breakdown[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(s))))
		}
	}
	if len(parts) > 0 {
		lines = append(lines, "**Status**: "+strings.Join(parts, ", "))
	}

	work := fmt.Sprintf("**Work**: %d open issues", r.OpenIssues)
	if r.CriticalIssues > 0 {
		work += fmt.Sprintf(" (%d P1)", r.CriticalIssues)
	}
	work += fmt.Sprintf(", %d active todos", r.ActiveTodos)
	if r.OverdueTodos > 0 {
		work += fmt.Sprintf(" (%d overdue)", r.OverdueTodos)
	}
	work += fmt.Sprintf(", %d pending ideas", r.PendingIdeas)
	lines = append(lines, work)
	lines = append(lines, fmt.Sprintf("**Activity**: %d changes since %s", r.ActivityCount, r.PeriodStart.Format("Jan 2 15:04")))

	if len(r.Drift) > 0 {
		lines = append(lines, "")
		lines = append(lines, "**Metrics disagree with status**:")
		for i, d := range r.Drift {
			if i == maxDriftLines {
				lines = append(lines, fmt.Sprintf("  …and %d more", len(r.Drift)-maxDriftLines))
				break
			}
			lines = append(lines, fmt.Sprintf("  %s: set %s, metrics say %s", d.Title, d.Persisted, d.Computed))
		}
	}

	fields := []Field{
		{Name: "Score", Value: fmt.Sprintf("%d", r.OverallScore), Short: true},
		{Name: "Components", Value: fmt.Sprintf("%d", r.TotalComponents), Short: true},
		{Name: "Open issues", Value: fmt.Sprintf("%d", r.OpenIssues), Short: true},
		{Name: "Active todos", Value: fmt.Sprintf("%d", r.ActiveTodos), Short: true},
	}
	if len(r.Drift) > 0 {
		fields = append(fields, Field{Name: "Drifting", Value: fmt.Sprintf("%d", len(r.Drift)), Short: true})
	}

	return Message{
		Title:  "Process Health Digest, " + r.GeneratedAt.Format("Mon Jan 2"),
		Body:   strings.Join(lines, "\n"),
		Color:  scoreColor(r.OverallScore),
		Fields: fields,
	}
}
