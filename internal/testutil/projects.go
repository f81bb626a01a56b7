package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/domain/repository"
)

// ProjectRepo is an in-memory ProjectRepository with unique project names.
type ProjectRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Project
	Err   error
}

func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{items: map[string]*entity.Project{}}
}

func cloneProject(p *entity.Project) *entity.Project {
	c := *p
	c.Team = append([]string(nil), p.Team...)
	c.Managers = append([]string(nil), p.Managers...)
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func (r *ProjectRepo) Create(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.items {
		if existing.Name == p.Name {
			return repository.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.items[p.ID] = cloneProject(p)
	return nil
}

func (r *ProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProject(p), nil
}

func (r *ProjectRepo) ListVisibleTo(_ context.Context, userID string) ([]*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	viewer := &entity.User{ID: userID}
	out := make([]*entity.Project, 0)
	for _, p := range r.items {
		if p.VisibleTo(viewer) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TaskRepo is an in-memory TaskRepository.
type TaskRepo struct {
	mu    sync.Mutex
	items []*entity.Task
	Err   error
}

func NewTaskRepo() *TaskRepo { return &TaskRepo{} }

func (r *TaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	c := *t
	r.items = append(r.items, &c)
	return nil
}

func (r *TaskRepo) ListByProject(_ context.Context, projectID string) ([]*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*entity.Task, 0)
	for _, t := range r.items {
		if t.ProjectID == projectID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

// TeamRepo is an in-memory TeamRepository.
type TeamRepo struct {
	mu    sync.Mutex
	items []*entity.Team
	Err   error
}

func NewTeamRepo() *TeamRepo { return &TeamRepo{} }

func (r *TeamRepo) Create(_ context.Context, t *entity.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	c := *t
	c.Members = append([]entity.TeamMember(nil), t.Members...)
	r.items = append(r.items, &c)
	return nil
}

func (r *TeamRepo) ListForUser(_ context.Context, userID string) ([]*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*entity.Team, 0)
	for _, t := range r.items {
		member := t.LeadID == userID
		for _, m := range t.Members {
			if m.UserID == userID {
				member = true
			}
		}
		if member {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProjectRepository = (*ProjectRepo)(nil)
	_ repository.TaskRepository    = (*TaskRepo)(nil)
	_ repository.TeamRepository    = (*TeamRepo)(nil)
)
