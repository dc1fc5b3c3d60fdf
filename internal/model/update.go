package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TaskUpdate is a partial update for Task.Update. A nil field is left alone.
// DueDate pointing at an empty string clears the due date.
type TaskUpdate struct {
	Title    *string
	Priority *PriorityInput
	DueDate  *string
}

// PriorityInput is a priority as submitted by a form: a JSON number or a
// numeric string. It is parsed only when applied.
type PriorityInput string

// Int reads the leading integer of p, so "2.5" and "2 (medium)" are 2.
// Input with no leading digits is ErrInvalidPriority.
func (p PriorityInput) Int() (int, error) {
	s := strings.TrimSpace(string(p))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
	}
	return n, nil
}

// UnmarshalJSON keeps the difference between an absent "dueDate" key and an
// explicit null, which clears the due date.
func (u *TaskUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = TaskUpdate{}

	if v, ok := raw["title"]; ok && !isNull(v) {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			return fmt.Errorf("title: %w", err)
		}
		u.Title = &title
	}

	if v, ok := raw["priority"]; ok && !isNull(v) {
		var p PriorityInput
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			p = PriorityInput(s)
		} else {
			var n json.Number
			if err := json.Unmarshal(v, &n); err != nil {
				return fmt.Errorf("priority: %w", err)
			}
			p = PriorityInput(n.String())
		}
		u.Priority = &p
	}

	if v, ok := raw["dueDate"]; ok {
		var due string
		if !isNull(v) {
			if err := json.Unmarshal(v, &due); err != nil {
				return fmt.Errorf("dueDate: %w", err)
			}
		}
		u.DueDate = &due
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
