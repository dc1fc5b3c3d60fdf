package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KrakenByte/mission-accomplishable/internal/model"
	"github.com/KrakenByte/mission-accomplishable/internal/persist"
)

const (
	seedProjectName        = "My First Project"
	seedProjectDescription = "A demo project with diverse tasks"
)

type seedTask struct {
	title    string
	status   model.Status
	priority int
	due      time.Duration // offset from now; 0 means no due date
}

var seedTasks = []seedTask{
	{"Buy groceries", model.StatusPending, 2, 24 * time.Hour},
	{"Finish report", model.StatusInProgress, 1, 3 * 24 * time.Hour},
	{"Call plumber", model.StatusDone, 3, -2 * 24 * time.Hour},
	{"Read new book", model.StatusPending, 3, 0},
	{"Workout", model.StatusInProgress, 2, 6 * time.Hour},
}

// Bootstrap loads stored projects and activates the first one when none is
// active. On the very first run, with nothing loaded, it seeds a demo
// project, marks the store as visited and saves. The marker is never
// cleared, so seeding happens at most once per store.
//
// A corrupt blob is logged and skipped: the board starts empty and the next
// save overwrites it.
func (s *BoardService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.Load(ctx, s.registry)
	switch {
	case errors.Is(err, persist.ErrCorrupt):
		s.logger.Error("stored projects ignored", zap.Error(err))
	case err != nil:
		return fmt.Errorf("load board: %w", err)
	}

	if n > 0 {
		if _, ok := s.registry.Active(); !ok {
			if first, ok := s.registry.First(); ok {
				s.registry.SetActive(first.ID())
			}
		}
	}

	visited, err := s.store.Visited(ctx)
	if err != nil {
		return err
	}
	if visited || s.registry.Len() > 0 {
		return nil
	}

	p, err := s.seed(time.Now())
	if err != nil {
		return fmt.Errorf("seed board: %w", err)
	}
	s.registry.SetActive(p.ID())
	s.logger.Info("seeded first project", zap.String("project_id", p.ID()), zap.Int("tasks", p.Len()))

	if err := s.store.MarkVisited(ctx); err != nil {
		return err
	}
	return s.save(ctx)
}

// seed builds the demo project and registers it only once every task is in.
func (s *BoardService) seed(now time.Time) (*model.Project, error) {
	p := model.NewProject(seedProjectName, seedProjectDescription)
	for _, st := range seedTasks {
		var due *time.Time
		if st.due != 0 {
			d := now.Add(st.due)
			due = &d
		}
		if err := p.AddTask(model.NewTask(st.title, st.status, st.priority, due)); err != nil {
			return nil, err
		}
	}
	s.registry.Add(p)
	return p, nil
}
