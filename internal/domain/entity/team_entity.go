package entity

import "time"

type TeamVisibility string

const (
	TeamPublic   TeamVisibility = "public"
	TeamPrivate  TeamVisibility = "private"
	TeamInternal TeamVisibility = "internal"
)

type TeamMember struct {
	UserID   string    `json:"user"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type TeamSettings struct {
	AllowMemberInvite     bool           `json:"allowMemberInvite"`
	RequireApprovalToJoin bool           `json:"requireApprovalToJoin"`
	Visibility            TeamVisibility `json:"visibility"`
}

type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	LeadID      string       `json:"lead"`
	Members     []TeamMember `json:"members"`
	Projects    []string     `json:"projects"`
	Department  string       `json:"department,omitempty"`
	IsActive    bool         `json:"isActive"`
	Settings    TeamSettings `json:"settings"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t *Team) MemberCount() int { return len(t.Members) }
