package application

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/domain/apperr"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	repo "github.com/oksasatya/project-management-api/internal/domain/repository"
	"github.com/oksasatya/project-management-api/pkg/helpers"
)

const (
	CodeInvalidTeam = "invalid_team"

	maxTeamNameLen        = 100
	maxTeamDescriptionLen = 500

	memberRoleLead   = "lead"
	memberRoleMember = "member"
)

type TeamService struct {
	Teams  repo.TeamRepository
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewTeamService(teams repo.TeamRepository, logger *logrus.Logger) *TeamService {
	return &TeamService{Teams: teams, Logger: logger, Now: time.Now}
}

type CreateTeamInput struct {
	Name        string
	Description string
	Members     []string
	Projects    []string
	Department  string
	Settings    *entity.TeamSettings
}

// Create stores a team led by lead. The lead is always the first member.
func (s *TeamService) Create(ctx context.Context, lead *entity.User, in CreateTeamInput) (*entity.Team, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	t := &entity.Team{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		LeadID:      lead.ID,
		Projects:    cleanList(in.Projects),
		Department:  strings.TrimSpace(in.Department),
		IsActive:    true,
		Settings: entity.TeamSettings{
			AllowMemberInvite: true,
			Visibility:        entity.TeamInternal,
		},
	}
	if in.Settings != nil {
		t.Settings = *in.Settings
		if t.Settings.Visibility == "" {
			t.Settings.Visibility = entity.TeamInternal
		}
	}

	switch {
	case t.Name == "" || utf8.RuneCountInString(t.Name) > maxTeamNameLen:
		return nil, apperr.New(apperr.KindBadRequest, CodeInvalidTeam, "team name must be 1-100 characters")
	case utf8.RuneCountInString(t.Description) > maxTeamDescriptionLen:
		return nil, apperr.New(apperr.KindBadRequest, CodeInvalidTeam, "description must be at most 500 characters")
	}
	switch t.Settings.Visibility {
	case entity.TeamPublic, entity.TeamPrivate, entity.TeamInternal:
	default:
		return nil, apperr.New(apperr.KindBadRequest, CodeInvalidTeam, "invalid team visibility")
	}

	t.Members = append(t.Members, entity.TeamMember{UserID: lead.ID, Role: memberRoleLead, JoinedAt: now})
	for _, id := range cleanList(in.Members) {
		if id == lead.ID {
			continue
		}
		t.Members = append(t.Members, entity.TeamMember{UserID: id, Role: memberRoleMember, JoinedAt: now})
	}

	if err := s.Teams.Create(ctx, t); err != nil {
		helpers.LogError(s.Logger, "create team failed", err, logrus.Fields{"lead_id": lead.ID})
		return nil, apperr.Internal("store_unavailable", err)
	}
	helpers.LogInfo(s.Logger, "team created", logrus.Fields{"team_id": t.ID, "members": t.MemberCount()})
	return t, nil
}

// ListForUser returns the teams the user leads or belongs to.
func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]*entity.Team, error) {
	teams, err := s.Teams.ListForUser(ctx, userID)
	if err != nil {
		helpers.LogError(s.Logger, "list teams failed", err, logrus.Fields{"user_id": userID})
		return nil, apperr.Internal("store_unavailable", err)
	}
	return teams, nil
}
