package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
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
	CodeInvalidProject   = "invalid_project"
	CodeProjectNameTaken = "project_name_taken"
	CodeProjectNotFound  = "project_not_found"
	CodeProjectForbidden = "project_forbidden"
	CodeLoginRequired    = "authentication_required"
	CodeInvalidTask      = "invalid_task"
	CodeInvalidQuery     = "invalid_query"

	defaultProjectColor = "#3B82F6"
	maxProjectNameLen   = 100
	maxDescriptionLen   = 1000
	maxTaskTitleLen     = 200
	defaultSearchSize   = 10
	maxSearchSize       = 50
)

var colorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ProjectIndexer keeps a full-text index of projects.
type ProjectIndexer interface {
	Index(ctx context.Context, p *entity.Project) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// SummaryGenerator turns a prompt into prose.
type SummaryGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ProjectService struct {
	Projects repo.ProjectRepository
	Tasks    repo.TaskRepository
	Index    ProjectIndexer
	AI       SummaryGenerator
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewProjectService(projects repo.ProjectRepository, tasks repo.TaskRepository, index ProjectIndexer, ai SummaryGenerator, logger *logrus.Logger) *ProjectService {
	return &ProjectService{Projects: projects, Tasks: tasks, Index: index, AI: ai, Logger: logger, Now: time.Now}
}

func (s *ProjectService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *ProjectService) internal(msg string, err error, fields logrus.Fields) error {
	helpers.LogError(s.Logger, msg, err, fields)
	return apperr.Internal("store_unavailable", err)
}

func invalidProject(msg string) error {
	return apperr.New(apperr.KindBadRequest, CodeInvalidProject, msg)
}

type CreateProjectInput struct {
	Name        string
	Description string
	Status      entity.ProjectStatus
	Priority    entity.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
	Progress    int
	Team        []string
	Managers    []string
	Tags        []string
	Color       string
	IsPublic    bool
	Settings    entity.ProjectSettings
}

func validProjectStatus(s entity.ProjectStatus) bool {
	switch s {
	case entity.ProjectPlanning, entity.ProjectActive, entity.ProjectOnHold, entity.ProjectCompleted, entity.ProjectCancelled:
		return true
	}
	return false
}

func validPriority(p entity.Priority) bool {
	switch p {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh, entity.PriorityCritical:
		return true
	}
	return false
}

// Create validates and stores a project owned by owner, then indexes it for
// search. Index failures are logged only.
func (s *ProjectService) Create(ctx context.Context, owner *entity.User, in CreateProjectInput) (*entity.Project, error) {
	now := s.now()
	p := &entity.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   now,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		Progress:    in.Progress,
		OwnerID:     owner.ID,
		Team:        cleanList(in.Team),
		Managers:    cleanList(in.Managers),
		Tags:        cleanList(in.Tags),
		Color:       strings.TrimSpace(in.Color),
		IsPublic:    in.IsPublic,
		Settings:    in.Settings,
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if p.Status == "" {
		p.Status = entity.ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = entity.PriorityMedium
	}
	if p.Color == "" {
		p.Color = defaultProjectColor
	}

	switch {
	case p.Name == "" || utf8.RuneCountInString(p.Name) > maxProjectNameLen:
		return nil, invalidProject("project name must be 1-100 characters")
	case utf8.RuneCountInString(p.Description) > maxDescriptionLen:
		return nil, invalidProject("description must be at most 1000 characters")
	case !validProjectStatus(p.Status):
		return nil, invalidProject("invalid project status")
	case !validPriority(p.Priority):
		return nil, invalidProject("invalid priority")
	case p.EndDate != nil && !p.EndDate.After(p.StartDate):
		return nil, invalidProject("end date must be after start date")
	case p.Progress < 0 || p.Progress > 100:
		return nil, invalidProject("progress must be between 0 and 100")
	case p.Budget != nil && *p.Budget < 0:
		return nil, invalidProject("budget must not be negative")
	case !colorRe.MatchString(p.Color):
		return nil, invalidProject("color must be a hex color")
	}
	p.ApplyEndDate(now)

	if err := s.Projects.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.New(apperr.KindConflict, CodeProjectNameTaken, "project name already exists")
		}
		return nil, s.internal("create project failed", err, logrus.Fields{"owner_id": owner.ID})
	}
	if s.Index != nil {
		if err := s.Index.Index(ctx, p); err != nil {
			helpers.LogWarn(s.Logger, "index project failed", err, logrus.Fields{"project_id": p.ID})
		}
	}
	helpers.LogInfo(s.Logger, "project created", logrus.Fields{"project_id": p.ID, "owner_id": owner.ID})
	return p, nil
}

func (s *ProjectService) ListVisible(ctx context.Context, viewer *entity.User) ([]*entity.Project, error) {
	ps, err := s.Projects.ListVisibleTo(ctx, viewer.ID)
	if err != nil {
		return nil, s.internal("list projects failed", err, logrus.Fields{"user_id": viewer.ID})
	}
	now := s.now()
	for _, p := range ps {
		p.ApplyEndDate(now)
	}
	return ps, nil
}

// Get returns a project the viewer may read. viewer may be nil for anonymous
// callers, who only see public projects.
func (s *ProjectService) Get(ctx context.Context, id string, viewer *entity.User) (*entity.Project, error) {
	p, err := s.Projects.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, CodeProjectNotFound, "project not found")
	}
	if err != nil {
		return nil, s.internal("load project failed", err, logrus.Fields{"project_id": id})
	}
	if !p.VisibleTo(viewer) {
		if viewer == nil {
			return nil, apperr.New(apperr.KindUnauthorized, CodeLoginRequired, "authentication required")
		}
		return nil, apperr.New(apperr.KindForbidden, CodeProjectForbidden, "you do not have access to this project")
	}
	p.ApplyEndDate(s.now())
	return p, nil
}

// Search matches projects by name, description and tags. Without a search
// index it falls back to filtering the viewer's visible projects.
func (s *ProjectService) Search(ctx context.Context, viewer *entity.User, query string, size int) ([]*entity.Project, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.New(apperr.KindBadRequest, CodeInvalidQuery, "search query is required")
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}

	if s.Index == nil {
		return s.searchVisible(ctx, viewer, query, size)
	}
	ids, err := s.Index.Search(ctx, query, size)
	if err != nil {
		helpers.LogWarn(s.Logger, "search index unavailable, falling back", err, nil)
		return s.searchVisible(ctx, viewer, query, size)
	}
	out := make([]*entity.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Projects.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, s.internal("load project failed", err, logrus.Fields{"project_id": id})
		}
		if p.VisibleTo(viewer) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProjectService) searchVisible(ctx context.Context, viewer *entity.User, query string, size int) ([]*entity.Project, error) {
	ps, err := s.ListVisible(ctx, viewer)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]*entity.Project, 0)
	for _, p := range ps {
		if matchesProject(p, q) {
			out = append(out, p)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

func matchesProject(p *entity.Project, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.EqualFold(t, q) {
			return true
		}
	}
	return false
}

// TaskView is a task with its derived overdue flag.
type TaskView struct {
	*entity.Task
	IsOverdue bool `json:"isOverdue"`
}

type CreateTaskInput struct {
	Title          string
	Description    string
	Status         entity.TaskStatus
	Priority       entity.Priority
	AssigneeID     string
	DueDate        *time.Time
	EstimatedHours *float64
	Tags           []string
	ParentID       string
}

func validTaskStatus(s entity.TaskStatus) bool {
	switch s {
	case entity.TaskTodo, entity.TaskInProgress, entity.TaskReview, entity.TaskCompleted, entity.TaskCancelled:
		return true
	}
	return false
}

func (s *ProjectService) CreateTask(ctx context.Context, viewer *entity.User, projectID string, in CreateTaskInput) (TaskView, error) {
	if _, err := s.Get(ctx, projectID, viewer); err != nil {
		return TaskView{}, err
	}
	t := &entity.Task{
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Status:         in.Status,
		Priority:       in.Priority,
		ProjectID:      projectID,
		AssigneeID:     in.AssigneeID,
		ReporterID:     viewer.ID,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		Tags:           cleanList(in.Tags),
		ParentID:       in.ParentID,
	}
	if t.Status == "" {
		t.Status = entity.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = entity.PriorityMedium
	}
	switch {
	case t.Title == "" || utf8.RuneCountInString(t.Title) > maxTaskTitleLen:
		return TaskView{}, apperr.New(apperr.KindBadRequest, CodeInvalidTask, "task title must be 1-200 characters")
	case utf8.RuneCountInString(t.Description) > maxDescriptionLen:
		return TaskView{}, apperr.New(apperr.KindBadRequest, CodeInvalidTask, "description must be at most 1000 characters")
	case !validTaskStatus(t.Status):
		return TaskView{}, apperr.New(apperr.KindBadRequest, CodeInvalidTask, "invalid task status")
	case !validPriority(t.Priority):
		return TaskView{}, apperr.New(apperr.KindBadRequest, CodeInvalidTask, "invalid priority")
	case t.EstimatedHours != nil && *t.EstimatedHours < 0:
		return TaskView{}, apperr.New(apperr.KindBadRequest, CodeInvalidTask, "estimated hours must not be negative")
	}

	if err := s.Tasks.Create(ctx, t); err != nil {
		return TaskView{}, s.internal("create task failed", err, logrus.Fields{"project_id": projectID})
	}
	return TaskView{Task: t, IsOverdue: t.IsOverdue(s.now())}, nil
}

func (s *ProjectService) ListTasks(ctx context.Context, viewer *entity.User, projectID string) ([]TaskView, error) {
	if _, err := s.Get(ctx, projectID, viewer); err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.internal("list tasks failed", err, logrus.Fields{"project_id": projectID})
	}
	now := s.now()
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskView{Task: t, IsOverdue: t.IsOverdue(now)})
	}
	return out, nil
}

type ProjectSummary struct {
	ProjectID      string                    `json:"projectId"`
	ProjectName    string                    `json:"projectName"`
	TotalTasks     int                       `json:"totalTasks"`
	CompletedTasks int                       `json:"completedTasks"`
	OverdueTasks   int                       `json:"overdueTasks"`
	ByStatus       map[entity.TaskStatus]int `json:"byStatus"`
	ByPriority     map[entity.Priority]int   `json:"byPriority"`
	Summary        string                    `json:"summary"`
	Generated      bool                      `json:"generated"`
}

// Summary reports task statistics for a project and, when a generator is
// configured, an AI-written overview. Generator failures leave Generated false.
func (s *ProjectService) Summary(ctx context.Context, viewer *entity.User, projectID string) (*ProjectSummary, error) {
	p, err := s.Get(ctx, projectID, viewer)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.internal("list tasks failed", err, logrus.Fields{"project_id": projectID})
	}

	now := s.now()
	sum := &ProjectSummary{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		TotalTasks:  len(tasks),
		ByStatus:    map[entity.TaskStatus]int{},
		ByPriority:  map[entity.Priority]int{},
	}
	for _, t := range tasks {
		sum.ByStatus[t.Status]++
		sum.ByPriority[t.Priority]++
		if t.Status == entity.TaskCompleted {
			sum.CompletedTasks++
		}
		if t.IsOverdue(now) {
			sum.OverdueTasks++
		}
	}
	sum.Summary = fallbackSummary(p, sum)

	if s.AI == nil {
		return sum, nil
	}
	text, err := s.AI.Generate(ctx, summaryPrompt(p, tasks, now))
	if err != nil {
		helpers.LogWarn(s.Logger, "generate project summary failed", err, logrus.Fields{"project_id": p.ID})
		return sum, nil
	}
	if text = strings.TrimSpace(text); text != "" {
		sum.Summary = text
		sum.Generated = true
	}
	return sum, nil
}

func fallbackSummary(p *entity.Project, sum *ProjectSummary) string {
	return fmt.Sprintf("%s is %s at %d%% progress with %d of %d tasks completed and %d overdue.",
		p.Name, p.Status, p.Progress, sum.CompletedTasks, sum.TotalTasks, sum.OverdueTasks)
}

func summaryPrompt(p *entity.Project, tasks []*entity.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString("Analyze the following project and its tasks and write a concise, professional summary for a weekly report.\n")
	b.WriteString("Cover overall progress and status, key accomplishments from completed tasks, immediate priorities from pending tasks, and risks such as overdue work.\n\n")
	fmt.Fprintf(&b, "Project: %s\nDescription: %s\nStatus: %s\nProgress: %d%%\nPriority: %s\n", p.Name, p.Description, p.Status, p.Progress, p.Priority)
	if p.EndDate != nil {
		fmt.Fprintf(&b, "Due: %s\n", p.EndDate.Format("2006-01-02"))
	}

	sorted := append([]*entity.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	b.WriteString("\nTasks:\n")
	for _, t := range sorted {
		fmt.Fprintf(&b, "- [%s] %s (priority: %s", t.Status, t.Title, t.Priority)
		if t.DueDate != nil {
			fmt.Fprintf(&b, ", due: %s", t.DueDate.Format("2006-01-02"))
		}
		if t.IsOverdue(now) {
			b.WriteString(", overdue")
		}
		b.WriteString(")\n")
	}
	return b.String()
}
