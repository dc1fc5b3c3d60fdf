package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrDuplicateTask = errors.New("duplicate task id")
	ErrTaskNotFound  = errors.New("task not found")
)

// Project owns an ordered list of tasks. The list order is the display order:
// insertion order until a sort is applied.
type Project struct {
	id          string
	name        string
	description string
	tasks       []*Task
}

// NewProject builds an empty project with a fresh id. Use Registry.NewProject
// to build and register in one step.
func NewProject(name, description string) *Project {
	return &Project{
		id:          newID(),
		name:        name,
		description: description,
	}
}

func (p *Project) ID() string          { return p.id }
func (p *Project) Name() string        { return p.name }
func (p *Project) Description() string { return p.description }
func (p *Project) Len() int            { return len(p.tasks) }

// Update overwrites both fields. Empty strings are allowed.
func (p *Project) Update(name, description string) {
	p.name = name
	p.description = description
}

// Tasks returns the tasks in list order. The slice is a copy; the tasks are not.
func (p *Project) Tasks() []*Task {
	return slices.Clone(p.tasks)
}

// AddTask appends t to the end of the list.
func (p *Project) AddTask(t *Task) error {
	if p.Task(t.ID()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.ID())
	}
	p.tasks = append(p.tasks, t)
	return nil
}

// RemoveTask drops the task with the given id. Unknown ids are a no-op; the
// result reports whether anything was removed.
func (p *Project) RemoveTask(id string) bool {
	n := len(p.tasks)
	p.tasks = slices.DeleteFunc(p.tasks, func(t *Task) bool { return t.id == id })
	return len(p.tasks) != n
}

// Task returns the task with the given id, or nil.
func (p *Project) Task(id string) *Task {
	for _, t := range p.tasks {
		if t.id == id {
			return t
		}
	}
	return nil
}

// SortByPriority stable-sorts by priority. Ascending puts priority 1 first.
func (p *Project) SortByPriority(desc bool) {
	slices.SortStableFunc(p.tasks, func(a, b *Task) int {
		if desc {
			return cmp.Compare(b.priority, a.priority)
		}
		return cmp.Compare(a.priority, b.priority)
	})
}

// SortByStatus stable-sorts in-progress first, then pending, then done.
func (p *Project) SortByStatus() {
	slices.SortStableFunc(p.tasks, func(a, b *Task) int {
		return cmp.Compare(a.status.rank(), b.status.rank())
	})
}

func (p *Project) TaskStatus(id string) (Status, error) {
	t := p.Task(id)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.status, nil
}

func (p *Project) SetTaskStatus(id string, s Status) error {
	t := p.Task(id)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.ChangeStatus(s)
}

func (p *Project) TaskPriority(id string) (int, error) {
	t := p.Task(id)
	if t == nil {
		return 0, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.priority, nil
}

func (p *Project) SetTaskPriority(id string, priority int) error {
	t := p.Task(id)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.ChangePriority(priority)
}
