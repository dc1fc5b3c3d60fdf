package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidDueDate  = errors.New("invalid due date")
)

// now is the clock used for every timestamp; tests replace it.
var now = time.Now

func newID() string {
	return uuid.NewString()
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists the allowed statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Next returns the status that follows s in the toggle cycle
// pending -> in-progress -> done -> pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusPending
	}
}

// rank orders statuses for SortByStatus. Comparison ignores case.
func (s Status) rank() int {
	switch Status(strings.ToLower(string(s))) {
	case StatusInProgress:
		return 1
	case StatusPending:
		return 2
	case StatusDone:
		return 3
	}
	return 4
}

const (
	MinPriority     = 1
	MaxPriority     = 3
	DefaultPriority = MaxPriority
)

func validPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// Task is a single to-do item. Fields are only reachable through methods so
// status and priority always hold allowed values.
type Task struct {
	id        string
	title     string
	status    Status
	priority  int
	createdAt time.Time
	updatedAt time.Time
	dueDate   *time.Time
}

// NewTask builds a task with a fresh id and both timestamps set to now.
// An unknown status falls back to pending and a priority outside
// [MinPriority, MaxPriority] falls back to MinPriority. A nil or zero due
// date means no due date.
func NewTask(title string, status Status, priority int, due *time.Time) *Task {
	if !status.Valid() {
		status = StatusPending
	}
	if !validPriority(priority) {
		priority = MinPriority
	}
	ts := now()
	t := &Task{
		id:        newID(),
		title:     title,
		status:    status,
		priority:  priority,
		createdAt: ts,
		updatedAt: ts,
	}
	if due != nil && !due.IsZero() {
		d := *due
		t.dueDate = &d
	}
	return t
}

func (t *Task) ID() string           { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Status() Status       { return t.status }
func (t *Task) Priority() int        { return t.priority }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// DueDate returns a copy of the due date, or nil when none is set.
func (t *Task) DueDate() *time.Time {
	if t.dueDate == nil {
		return nil
	}
	d := *t.dueDate
	return &d
}

func (t *Task) touch() {
	t.updatedAt = now()
}

// ChangeTitle sets the title. Empty titles are allowed.
func (t *Task) ChangeTitle(title string) {
	t.title = title
	t.touch()
}

// ChangePriority accepts values in [MinPriority, MaxPriority]. Anything else
// returns ErrInvalidPriority and leaves the task untouched.
func (t *Task) ChangePriority(p int) error {
	if !validPriority(p) {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, p)
	}
	t.priority = p
	t.touch()
	return nil
}

// ChangeStatus accepts only the allowed statuses, matched exactly.
func (t *Task) ChangeStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	t.status = s
	t.touch()
	return nil
}

// ChangeDueDate sets the due date. A zero time is not a valid date and the
// call is a no-op. It reports whether the task changed.
func (t *Task) ChangeDueDate(due time.Time) bool {
	if due.IsZero() {
		return false
	}
	t.dueDate = &due
	t.touch()
	return true
}

// ChangeDueDateString parses s with ParseDueDate and applies it. Unparseable
// input is silently ignored.
func (t *Task) ChangeDueDateString(s string) bool {
	due, err := ParseDueDate(s)
	if err != nil {
		return false
	}
	return t.ChangeDueDate(due)
}

// ClearDueDate removes the due date.
func (t *Task) ClearDueDate() {
	t.dueDate = nil
	t.touch()
}

var dueDateLayouts = []struct {
	layout string
	loc    *time.Location
}{
	{time.RFC3339Nano, time.Local},
	{"2006-01-02T15:04:05", time.Local},
	{"2006-01-02T15:04", time.Local},
	{"2006-01-02", time.UTC},
}

// ParseDueDate accepts ISO-8601 timestamps, HTML datetime-local values and
// plain dates. Date-times without a zone are read as local time; a plain
// date is midnight UTC.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDueDate)
	}
	for _, l := range dueDateLayouts {
		if ts, err := time.ParseInLocation(l.layout, s, l.loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
}

// Update applies every field present in u through the matching setter.
// Fields are applied independently: a rejected priority does not undo a new
// title. All rejections are joined into the returned error.
func (t *Task) Update(u TaskUpdate) error {
	var errs []error
	if u.Title != nil {
		t.ChangeTitle(*u.Title)
	}
	if u.Priority != nil {
		p, err := u.Priority.Int()
		if err == nil {
			err = t.ChangePriority(p)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if u.DueDate != nil {
		if *u.DueDate == "" {
			t.ClearDueDate()
		} else if due, err := ParseDueDate(*u.DueDate); err != nil {
			errs = append(errs, err)
		} else {
			t.ChangeDueDate(due)
		}
	}
	return errors.Join(errs...)
}
