package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KrakenByte/mission-accomplishable/internal/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNoActiveProject = errors.New("no active project")
)

// Persister saves and restores the registry.
type Persister interface {
	Save(ctx context.Context, reg *model.Registry) error
	Load(ctx context.Context, reg *model.Registry) (int, error)
	Visited(ctx context.Context) (bool, error)
	MarkVisited(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Board is the whole registry as returned to clients.
type Board struct {
	ActiveProjectID string                `json:"activeProjectId"`
	Projects        []model.ProjectRecord `json:"projects"`
}

// NewTaskInput describes a task to add. Zero values take the task defaults.
type NewTaskInput struct {
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Priority *int    `json:"priority"`
	DueDate  *string `json:"dueDate"`
}

// BoardService owns the registry. Every call runs under one lock, in the
// order it arrives, and every mutation is saved before the call returns.
// Results are records, never live entities.
type BoardService struct {
	mu       sync.Mutex
	registry *model.Registry
	store    Persister
	logger   *zap.Logger
}

func NewBoardService(store Persister, logger *zap.Logger) *BoardService {
	return &BoardService{
		registry: model.NewRegistry(),
		store:    store,
		logger:   logger,
	}
}

func (s *BoardService) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.registry); err != nil {
		s.logger.Error("save failed", zap.Error(err))
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// rejected reports a validation failure on the diagnostic channel and wraps
// it for the caller.
func (s *BoardService) rejected(err error, fields ...zap.Field) error {
	s.logger.Warn("rejected change", append(fields, zap.Error(err))...)
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (s *BoardService) project(id string) (*model.Project, error) {
	p, ok := s.registry.Project(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrProjectNotFound, id)
	}
	return p, nil
}

func (s *BoardService) task(projectID, taskID string) (*model.Project, *model.Task, error) {
	p, err := s.project(projectID)
	if err != nil {
		return nil, nil, err
	}
	t := p.Task(taskID)
	if t == nil {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrTaskNotFound, taskID)
	}
	return p, t, nil
}

func (s *BoardService) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Board{
		ActiveProjectID: s.registry.ActiveID(),
		Projects:        make([]model.ProjectRecord, 0, s.registry.Len()),
	}
	for _, p := range s.registry.Projects() {
		b.Projects = append(b.Projects, p.Record())
	}
	return b
}

func (s *BoardService) GetProject(id string) (model.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return model.ProjectRecord{}, err
	}
	return p.Record(), nil
}

func (s *BoardService) ActiveProject() (model.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.registry.Active()
	if !ok {
		return model.ProjectRecord{}, ErrNoActiveProject
	}
	return p.Record(), nil
}

// CreateProject registers a new project and makes it active. Blank names are
// rejected.
func (s *BoardService) CreateProject(ctx context.Context, name, description string) (model.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return model.ProjectRecord{}, s.rejected(errors.New("project name is empty"))
	}
	p := s.registry.NewProject(name, description)
	s.registry.SetActive(p.ID())
	s.logger.Info("project created", zap.String("project_id", p.ID()), zap.String("name", name))

	return p.Record(), s.save(ctx)
}

func (s *BoardService) UpdateProject(ctx context.Context, id, name, description string) (model.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return model.ProjectRecord{}, err
	}
	p.Update(name, description)
	return p.Record(), s.save(ctx)
}

func (s *BoardService) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Remove(id) {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, id)
	}
	s.logger.Info("project deleted", zap.String("project_id", id), zap.String("active_id", s.registry.ActiveID()))
	return s.save(ctx)
}

// Reset removes every project and deletes the stored board. First-run
// seeding does not come back.
func (s *BoardService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	n := s.registry.Len()
	s.registry.Clear()
	s.logger.Info("board reset", zap.Int("projects", n))
	return nil
}

// ActivateProject switches the active project. The active id is not part of
// the stored blob, so nothing is saved.
func (s *BoardService) ActivateProject(id string) (model.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return model.ProjectRecord{}, err
	}
	s.registry.SetActive(id)
	return p.Record(), nil
}

func (s *BoardService) GetTask(projectID, taskID string) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	return t.Record(), nil
}

// AddTask appends a task to the project. An empty status means pending and
// a nil priority means the default; other values go through the task
// constructor fallbacks. A due date that does not parse is rejected.
func (s *BoardService) AddTask(ctx context.Context, projectID string, in NewTaskInput) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(projectID)
	if err != nil {
		return model.TaskRecord{}, err
	}

	status := model.StatusPending
	if in.Status != "" {
		status = model.Status(in.Status)
	}
	priority := model.DefaultPriority
	if in.Priority != nil {
		priority = *in.Priority
	}
	var due *time.Time
	if in.DueDate != nil && *in.DueDate != "" {
		d, err := model.ParseDueDate(*in.DueDate)
		if err != nil {
			return model.TaskRecord{}, s.rejected(err, zap.String("project_id", projectID))
		}
		due = &d
	}

	t := model.NewTask(in.Title, status, priority, due)
	if err := p.AddTask(t); err != nil {
		return model.TaskRecord{}, err
	}
	return t.Record(), s.save(ctx)
}

// UpdateTask applies a partial update. Accepted fields are kept and saved
// even when another field is rejected; the rejection is still returned.
func (s *BoardService) UpdateTask(ctx context.Context, projectID, taskID string, u model.TaskUpdate) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	updateErr := t.Update(u)
	if updateErr != nil {
		updateErr = s.rejected(updateErr, zap.String("task_id", taskID))
	}
	if err := s.save(ctx); err != nil {
		return t.Record(), err
	}
	return t.Record(), updateErr
}

// RemoveTask deletes a task. Unknown task ids are not an error.
func (s *BoardService) RemoveTask(ctx context.Context, projectID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(projectID)
	if err != nil {
		return err
	}
	if !p.RemoveTask(taskID) {
		return nil
	}
	return s.save(ctx)
}

func (s *BoardService) ChangeStatus(ctx context.Context, projectID, taskID, status string) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	if err := t.ChangeStatus(model.Status(status)); err != nil {
		return t.Record(), s.rejected(err, zap.String("task_id", taskID), zap.String("value", status))
	}
	return t.Record(), s.save(ctx)
}

// CycleStatus moves the task to the next status in the toggle cycle.
func (s *BoardService) CycleStatus(ctx context.Context, projectID, taskID string) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	if err := t.ChangeStatus(t.Status().Next()); err != nil {
		return t.Record(), err
	}
	return t.Record(), s.save(ctx)
}

func (s *BoardService) ChangePriority(ctx context.Context, projectID, taskID string, priority int) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	if err := t.ChangePriority(priority); err != nil {
		return t.Record(), s.rejected(err, zap.String("task_id", taskID), zap.Int("value", priority))
	}
	return t.Record(), s.save(ctx)
}

// ChangeDueDate sets the due date from text. Unparseable text leaves the task
// unchanged and is not an error.
func (s *BoardService) ChangeDueDate(ctx context.Context, projectID, taskID, due string) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	if !t.ChangeDueDateString(due) {
		s.logger.Debug("due date ignored", zap.String("task_id", taskID), zap.String("value", due))
		return t.Record(), nil
	}
	return t.Record(), s.save(ctx)
}

// ChangeDueDateAt sets the due date to a point in time. A zero time leaves
// the task unchanged.
func (s *BoardService) ChangeDueDateAt(ctx context.Context, projectID, taskID string, due time.Time) (model.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.task(projectID, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	if !t.ChangeDueDate(due) {
		return t.Record(), nil
	}
	return t.Record(), s.save(ctx)
}

const (
	SortByPriority = "priority"
	SortByStatus   = "status"
)

func (s *BoardService) SortTasks(ctx context.Context, projectID, by string, desc bool) (model.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(projectID)
	if err != nil {
		return model.ProjectRecord{}, err
	}
	switch by {
	case SortByPriority:
		p.SortByPriority(desc)
	case SortByStatus:
		p.SortByStatus()
	default:
		return model.ProjectRecord{}, s.rejected(fmt.Errorf("unknown sort key %q", by))
	}
	return p.Record(), s.save(ctx)
}
