package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/domain/repository"
)

const projectColumns = `id::text, name, description, status, priority, start_date, end_date, budget, progress,
	owner_id::text, team, managers, tags, color, is_public, settings, created_at, updated_at`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	p := &entity.Project{}
	var status, priority string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &status, &priority, &p.StartDate, &p.EndDate, &p.Budget,
		&p.Progress, &p.OwnerID, &p.Team, &p.Managers, &p.Tags, &p.Color, &p.IsPublic, &p.Settings,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	p.Status = entity.ProjectStatus(status)
	p.Priority = entity.Priority(priority)
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (name, description, status, priority, start_date, end_date, budget, progress,
			owner_id, team, managers, tags, color, is_public, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::uuid, $10, $11, $12, $13, $14, $15)
		RETURNING id::text, created_at, updated_at
	`, p.Name, p.Description, string(p.Status), string(p.Priority), p.StartDate, p.EndDate, p.Budget, p.Progress,
		p.OwnerID, nonNil(p.Team), nonNil(p.Managers), nonNil(p.Tags), p.Color, p.IsPublic, p.Settings)

	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	pid, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, pid))
}

func (r *ProjectRepository) ListVisibleTo(ctx context.Context, userID string) ([]*entity.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE owner_id = $1 OR $2 = ANY(team) OR $2 = ANY(managers) OR is_public
		ORDER BY created_at DESC
	`, idParam(userID), userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*entity.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, project_id, assignee_id, reporter_id, due_date,
			estimated_hours, actual_hours, tags, parent_id, position)
		VALUES ($1, $2, $3, $4, $5::uuid, $6, $7::uuid, $8, $9, $10, $11, $12,
			COALESCE((SELECT MAX(position) + 1 FROM tasks WHERE project_id = $5::uuid), 0))
		RETURNING id::text, position, created_at, updated_at
	`, t.Title, t.Description, string(t.Status), string(t.Priority), t.ProjectID, t.AssigneeID, t.ReporterID,
		t.DueDate, t.EstimatedHours, t.ActualHours, nonNil(t.Tags), t.ParentID)

	return mapErr(row.Scan(&t.ID, &t.Position, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Task, error) {
	pid, ok := parseID(projectID)
	if !ok {
		return []*entity.Task{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, title, description, status, priority, project_id::text, assignee_id, reporter_id::text,
			due_date, estimated_hours, actual_hours, tags, parent_id, position, created_at, updated_at
		FROM tasks
		WHERE project_id = $1
		ORDER BY position
	`, pid)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*entity.Task, 0)
	for rows.Next() {
		t := &entity.Task{}
		var status, priority string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.ProjectID, &t.AssigneeID,
			&t.ReporterID, &t.DueDate, &t.EstimatedHours, &t.ActualHours, &t.Tags, &t.ParentID, &t.Position,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		t.Status = entity.TaskStatus(status)
		t.Priority = entity.Priority(priority)
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) Create(ctx context.Context, t *entity.Team) error {
	members := t.Members
	if members == nil {
		members = []entity.TeamMember{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (name, description, lead_id, members, projects, department, is_active, settings)
		VALUES ($1, $2, $3::uuid, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at, updated_at
	`, t.Name, t.Description, t.LeadID, members, nonNil(t.Projects), t.Department, t.IsActive, t.Settings)

	return mapErr(row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TeamRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Team, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, description, lead_id::text, members, projects, department, is_active, settings,
			created_at, updated_at
		FROM teams
		WHERE lead_id = $1 OR members @> jsonb_build_array(jsonb_build_object('user', $2::text))
		ORDER BY name
	`, idParam(userID), userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*entity.Team, 0)
	for rows.Next() {
		t := &entity.Team{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LeadID, &t.Members, &t.Projects, &t.Department,
			&t.IsActive, &t.Settings, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

var (
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
	_ repository.TaskRepository    = (*TaskRepository)(nil)
	_ repository.TeamRepository    = (*TeamRepository)(nil)
)
