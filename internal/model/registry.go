package model

import (
	"errors"
	"slices"
)

var ErrProjectNotFound = errors.New("project not found")

// Registry holds every known project keyed by id, in insertion order, plus
// the id of the active project. It is not safe for concurrent use; callers
// serialize access.
type Registry struct {
	projects map[string]*Project
	order    []string
	activeID string
}

func NewRegistry() *Registry {
	return &Registry{projects: make(map[string]*Project)}
}

// NewProject builds a project and registers it.
func (r *Registry) NewProject(name, description string) *Project {
	p := NewProject(name, description)
	r.Add(p)
	return p
}

// Add registers p under its id. Re-adding an id replaces the project in place.
func (r *Registry) Add(p *Project) {
	if _, ok := r.projects[p.id]; !ok {
		r.order = append(r.order, p.id)
	}
	r.projects[p.id] = p
}

// Project looks up a project by id.
func (r *Registry) Project(id string) (*Project, bool) {
	p, ok := r.projects[id]
	return p, ok
}

// Remove deletes a project and its tasks. When it was active, the first
// remaining project becomes active, or none if the registry is now empty.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.projects[id]; !ok {
		return false
	}
	delete(r.projects, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	if r.activeID == id {
		r.activeID = ""
		if first, ok := r.First(); ok {
			r.activeID = first.id
		}
	}
	return true
}

// SetActive points the active project at id. The id is not checked; Active
// reports nothing when it does not resolve.
func (r *Registry) SetActive(id string) {
	r.activeID = id
}

// Clear removes every project and unsets the active one.
func (r *Registry) Clear() {
	clear(r.projects)
	r.order = nil
	r.activeID = ""
}

func (r *Registry) ActiveID() string {
	return r.activeID
}

// Active returns the active project if one is set and still registered.
func (r *Registry) Active() (*Project, bool) {
	if r.activeID == "" {
		return nil, false
	}
	return r.Project(r.activeID)
}

// First returns the earliest registered project.
func (r *Registry) First() (*Project, bool) {
	if len(r.order) == 0 {
		return nil, false
	}
	return r.projects[r.order[0]], true
}

// Projects returns all projects in insertion order.
func (r *Registry) Projects() []*Project {
	out := make([]*Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.projects[id])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
