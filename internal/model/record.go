package model

import (
	"encoding/json"
	"math"
	"time"
)

// timeLayout renders timestamps as ISO-8601 UTC with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z"

// TaskRecord is the persisted and wire form of a Task.
type TaskRecord struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Status    Status         `json:"status"`
	Priority  RecordPriority `json:"priority"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	DueDate   *string        `json:"dueDate"`
}

// ProjectRecord is the persisted and wire form of a Project.
type ProjectRecord struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	List        []TaskRecord `json:"list"`
}

// RecordPriority decodes any JSON value. Anything that is not an integral
// number decodes to 0, which NewTask then replaces with MinPriority.
type RecordPriority int

func (p *RecordPriority) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil || f != math.Trunc(f) {
		*p = 0
		return nil
	}
	*p = RecordPriority(f)
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp with the same rules as ParseDueDate.
func parseTime(s string) (time.Time, bool) {
	t, err := ParseDueDate(s)
	return t, err == nil
}

// Record serializes the task.
func (t *Task) Record() TaskRecord {
	rec := TaskRecord{
		ID:        t.id,
		Title:     t.title,
		Status:    t.status,
		Priority:  RecordPriority(t.priority),
		CreatedAt: formatTime(t.createdAt),
		UpdatedAt: formatTime(t.updatedAt),
	}
	if t.dueDate != nil {
		due := formatTime(*t.dueDate)
		rec.DueDate = &due
	}
	return rec
}

// TaskFromRecord rebuilds a task. Title, status and priority go through
// NewTask and its fallbacks; id and timestamps are copied as stored. A
// timestamp that is not a date keeps the constructor value, and such a due
// date is dropped.
func TaskFromRecord(rec TaskRecord) *Task {
	t := NewTask(rec.Title, rec.Status, int(rec.Priority), nil)
	t.id = rec.ID
	if ts, ok := parseTime(rec.CreatedAt); ok {
		t.createdAt = ts
	}
	if ts, ok := parseTime(rec.UpdatedAt); ok {
		t.updatedAt = ts
	}
	if rec.DueDate != nil {
		if due, ok := parseTime(*rec.DueDate); ok {
			t.dueDate = &due
		}
	}
	return t
}

// Record serializes the project and its tasks in list order.
func (p *Project) Record() ProjectRecord {
	list := make([]TaskRecord, 0, len(p.tasks))
	for _, t := range p.tasks {
		list = append(list, t.Record())
	}
	return ProjectRecord{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		List:        list,
	}
}

// ProjectFromRecord rebuilds a project without registering it. Duplicate
// task ids in the record are rejected.
func ProjectFromRecord(rec ProjectRecord) (*Project, error) {
	p := NewProject(rec.Name, rec.Description)
	p.id = rec.ID
	for _, tr := range rec.List {
		if err := p.AddTask(TaskFromRecord(tr)); err != nil {
			return nil, err
		}
	}
	return p, nil
}
