package models

// HealthStatus is the traffic-light classification carried by a component.
type HealthStatus string

const (
	HealthRed    HealthStatus = "RED"
	HealthYellow HealthStatus = "YELLOW"
	HealthGreen  HealthStatus = "GREEN"
	HealthGray   HealthStatus = "GRAY"
	// HealthBlue marks work in progress or planned. It is only ever set by
	// a user, never derived from metrics.
	HealthBlue HealthStatus = "BLUE"
)

// HealthStatuses lists every status in display order.
var HealthStatuses = []HealthStatus{HealthRed, HealthYellow, HealthGreen, HealthGray, HealthBlue}

// Valid reports whether s is a known health status.
func (s HealthStatus) Valid() bool {
	switch s {
	case HealthRed, HealthYellow, HealthGreen, HealthGray, HealthBlue:
		return true
	}
	return false
}

// Priority ranks an issue from P1 (most urgent) to P4.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3, PriorityP4:
		return true
	}
	return false
}

// IssueStatus is the lifecycle state of an issue.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "OPEN"
	IssueInProgress IssueStatus = "IN_PROGRESS"
	IssueResolved   IssueStatus = "RESOLVED"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved:
		return true
	}
	return false
}

// Role is a user's permission level.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleViewer  Role = "VIEWER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may create, update, or delete tracked entities.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleManager
}
