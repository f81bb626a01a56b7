package repository

import (
	"context"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	// ListVisibleTo returns projects the user owns, manages, belongs to, or that are public.
	ListVisibleTo(ctx context.Context, userID string) ([]*entity.Project, error)
}

type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.Task, error)
}

type TeamRepository interface {
	Create(ctx context.Context, t *entity.Team) error
	ListForUser(ctx context.Context, userID string) ([]*entity.Team, error)
}
