package entity

import "time"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type ProjectSettings struct {
	AllowGuestAccess bool `json:"allowGuestAccess"`
	RequireApproval  bool `json:"requireApproval"`
	AutoAssignTasks  bool `json:"autoAssignTasks"`
}

type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      ProjectStatus   `json:"status"`
	Priority    Priority        `json:"priority"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Budget      *float64        `json:"budget,omitempty"`
	Progress    int             `json:"progress"`
	OwnerID     string          `json:"owner"`
	Team        []string        `json:"team"`
	Managers    []string        `json:"managers"`
	Tags        []string        `json:"tags"`
	Color       string          `json:"color"`
	IsPublic    bool            `json:"isPublic"`
	Settings    ProjectSettings `json:"settings"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ApplyEndDate marks a project completed once its end date has passed.
func (p *Project) ApplyEndDate(now time.Time) {
	if p.EndDate != nil && !p.EndDate.After(now) && p.Status != ProjectCompleted {
		p.Status = ProjectCompleted
	}
}

// VisibleTo reports whether the user may read the project.
func (p *Project) VisibleTo(u *User) bool {
	if p.IsPublic {
		return true
	}
	if u == nil {
		return false
	}
	if u.Role == RoleAdmin || p.OwnerID == u.ID {
		return true
	}
	return contains(p.Team, u.ID) || contains(p.Managers, u.ID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
