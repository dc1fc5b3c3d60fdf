package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(p *Project) []string {
	out := make([]string, 0, p.Len())
	for _, t := range p.Tasks() {
		out = append(out, t.Title())
	}
	return out
}

func projectWith(tasks ...*Task) *Project {
	p := NewProject("Home", "chores")
	for _, t := range tasks {
		_ = p.AddTask(t)
	}
	return p
}

func TestProject_AddAndRemoveTask(t *testing.T) {
	a := NewTask("a", StatusPending, 1, nil)
	b := NewTask("b", StatusPending, 2, nil)
	p := projectWith(a, b)

	assert.Equal(t, []string{"a", "b"}, titles(p))
	assert.Same(t, b, p.Task(b.ID()))
	assert.Nil(t, p.Task("missing"))

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := p.AddTask(a)
		assert.ErrorIs(t, err, ErrDuplicateTask)
		assert.Equal(t, 2, p.Len())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		assert.False(t, p.RemoveTask("missing"))
		assert.Equal(t, []string{"a", "b"}, titles(p))
	})

	t.Run("remove", func(t *testing.T) {
		assert.True(t, p.RemoveTask(a.ID()))
		assert.Equal(t, []string{"b"}, titles(p))
	})
}

func TestProject_Update(t *testing.T) {
	p := NewProject("Home", "x")
	p.Update("", "")
	assert.Equal(t, "", p.Name())
	assert.Equal(t, "", p.Description())
}

func TestProject_SortByPriority(t *testing.T) {
	t.Run("ascending then descending reverses", func(t *testing.T) {
		p := projectWith(
			NewTask("two", StatusPending, 2, nil),
			NewTask("one", StatusPending, 1, nil),
			NewTask("three", StatusPending, 3, nil),
		)

		p.SortByPriority(false)
		asc := titles(p)
		p.SortByPriority(true)
		desc := titles(p)

		assert.Equal(t, []string{"one", "two", "three"}, asc)
		assert.Equal(t, []string{"three", "two", "one"}, desc)
	})

	t.Run("ties keep their order", func(t *testing.T) {
		p := projectWith(
			NewTask("b1", StatusPending, 2, nil),
			NewTask("a1", StatusPending, 1, nil),
			NewTask("b2", StatusPending, 2, nil),
			NewTask("a2", StatusPending, 1, nil),
		)

		p.SortByPriority(false)
		assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, titles(p))

		p.SortByPriority(true)
		assert.Equal(t, []string{"b1", "b2", "a1", "a2"}, titles(p))
	})
}

func TestProject_SortByStatus(t *testing.T) {
	p := projectWith(
		NewTask("done", StatusDone, 3, nil),
		NewTask("pending", StatusPending, 3, nil),
		NewTask("doing", StatusInProgress, 3, nil),
		NewTask("pending2", StatusPending, 3, nil),
	)

	p.SortByStatus()

	assert.Equal(t, []string{"doing", "pending", "pending2", "done"}, titles(p))
}

func TestStatus_RankIgnoresCase(t *testing.T) {
	assert.Equal(t, StatusInProgress.rank(), Status("IN-PROGRESS").rank())
	assert.Equal(t, StatusPending.rank(), Status("Pending").rank())
	assert.Equal(t, StatusDone.rank(), Status("DONE").rank())
	assert.Less(t, Status("In-Progress").rank(), Status("PENDING").rank())
	assert.Less(t, Status("pending").rank(), Status("Done").rank())
}

func TestProject_TaskAccessors(t *testing.T) {
	task := NewTask("t", StatusPending, 3, nil)
	p := projectWith(task)

	s, err := p.TaskStatus(task.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s)

	require.NoError(t, p.SetTaskStatus(task.ID(), StatusDone))
	assert.ErrorIs(t, p.SetTaskStatus(task.ID(), "nope"), ErrInvalidStatus)
	assert.Equal(t, StatusDone, task.Status())

	require.NoError(t, p.SetTaskPriority(task.ID(), 1))
	assert.ErrorIs(t, p.SetTaskPriority(task.ID(), 5), ErrInvalidPriority)
	prio, err := p.TaskPriority(task.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, prio)

	_, err = p.TaskStatus("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = p.TaskPriority("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestProject_RoundTrip(t *testing.T) {
	useFakeClock(t)
	due := time.Date(2024, 7, 4, 18, 30, 15, 123456789, time.UTC)

	for _, n := range []int{0, 1, 4} {
		p := NewProject("Home", "x")
		for i := 0; i < n; i++ {
			var d *time.Time
			if i%2 == 0 {
				d = &due
			}
			task := NewTask("task", Statuses[i%3], 1+i%3, d)
			require.NoError(t, p.AddTask(task))
		}

		data, err := json.Marshal(p.Record())
		require.NoError(t, err)
		var rec ProjectRecord
		require.NoError(t, json.Unmarshal(data, &rec))
		got, err := ProjectFromRecord(rec)
		require.NoError(t, err)

		assert.Equal(t, p.ID(), got.ID())
		assert.Equal(t, p.Name(), got.Name())
		assert.Equal(t, p.Description(), got.Description())
		require.Equal(t, p.Len(), got.Len())
		for i, want := range p.Tasks() {
			have := got.Tasks()[i]
			assert.Equal(t, want.ID(), have.ID())
			assert.Equal(t, want.Title(), have.Title())
			assert.Equal(t, want.Status(), have.Status())
			assert.Equal(t, want.Priority(), have.Priority())
			assert.True(t, want.CreatedAt().Truncate(time.Millisecond).Equal(have.CreatedAt()))
			assert.True(t, want.UpdatedAt().Truncate(time.Millisecond).Equal(have.UpdatedAt()))
			if want.DueDate() == nil {
				assert.Nil(t, have.DueDate())
			} else {
				require.NotNil(t, have.DueDate())
				assert.True(t, want.DueDate().Truncate(time.Millisecond).Equal(*have.DueDate()))
			}
		}
	}
}

func TestTaskRecord_Format(t *testing.T) {
	useFakeClock(t)
	due := time.Date(2024, 1, 2, 3, 4, 5, 6000000, time.FixedZone("X", 3600))
	task := NewTask("t", StatusPending, 2, &due)

	data, err := json.Marshal(task.Record())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2024-01-02T02:04:05.006Z", raw["dueDate"])
	assert.Equal(t, "2024-03-01T12:00:01.000Z", raw["createdAt"])
	assert.Equal(t, float64(2), raw["priority"])

	noDue, err := json.Marshal(NewTask("t", StatusPending, 2, nil).Record())
	require.NoError(t, err)
	assert.Contains(t, string(noDue), `"dueDate":null`)
}

func TestTaskFromRecord_Fallbacks(t *testing.T) {
	var rec TaskRecord
	body := `{"id":"abc","title":"t","status":"bogus","priority":"high",
		"createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"garbage","dueDate":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &rec))

	task := TaskFromRecord(rec)

	assert.Equal(t, "abc", task.ID())
	assert.Equal(t, StatusPending, task.Status())
	assert.Equal(t, MinPriority, task.Priority())
	assert.True(t, task.CreatedAt().Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, task.UpdatedAt().IsZero(), "unreadable timestamp keeps the constructor value")
	assert.Nil(t, task.DueDate())
}

func TestTaskFromRecord_LenientTimestamps(t *testing.T) {
	tests := []struct {
		name        string
		createdAt   string
		dueDate     *string
		wantCreated string
		wantDue     *string
	}{
		{
			name:        "date only due date",
			createdAt:   "2024-01-02T03:04:05.006Z",
			dueDate:     ptr("2024-05-01"),
			wantCreated: "2024-01-02T03:04:05.006Z",
			wantDue:     ptr("2024-05-01T00:00:00.000Z"),
		},
		{
			name:        "garbage createdAt",
			createdAt:   "not-a-date",
			wantCreated: "2024-03-01T12:00:01.000Z",
		},
		{
			name:        "second precision without millis",
			createdAt:   "2024-01-02T03:04:05Z",
			dueDate:     ptr("2024-05-01T10:00:00+02:00"),
			wantCreated: "2024-01-02T03:04:05.000Z",
			wantDue:     ptr("2024-05-01T08:00:00.000Z"),
		},
		{
			name:        "garbage due date dropped",
			createdAt:   "2024-01-02T03:04:05.006Z",
			dueDate:     ptr("someday"),
			wantCreated: "2024-01-02T03:04:05.006Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFakeClock(t)
			rec := TaskRecord{ID: "x", Title: "t", Status: StatusPending, Priority: 2, CreatedAt: tt.createdAt, UpdatedAt: tt.createdAt, DueDate: tt.dueDate}

			got := TaskFromRecord(rec).Record()

			assert.NotContains(t, got.CreatedAt, "0001-01-01")
			assert.Equal(t, tt.wantCreated, got.CreatedAt)
			assert.Equal(t, tt.wantDue, got.DueDate)
		})
	}
}

func TestProjectFromRecord_DuplicateTasks(t *testing.T) {
	rec := ProjectRecord{ID: "p", Name: "n", List: []TaskRecord{{ID: "x", Status: StatusPending, Priority: 1}, {ID: "x", Status: StatusDone, Priority: 2}}}

	_, err := ProjectFromRecord(rec)

	assert.ErrorIs(t, err, ErrDuplicateTask)
}
