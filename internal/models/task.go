package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DateLayout формат due_date на проводе
const DateLayout = "2006-01-02"

type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityUrgent    Priority = "urgent"
)

// Valid сообщает, входит ли приоритет в допустимый набор
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityImportant, PriorityUrgent:
		return true
	}
	return false
}

// Weight порядковый вес: urgent > important > normal, неизвестный = 0
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityImportant:
		return 2
	case PriorityNormal:
		return 1
	}
	return 0
}

type Task struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *string  `json:"due_date"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// HasDueDate: пустая строка считается отсутствием срока
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && strings.TrimSpace(*t.DueDate) != ""
}

// Due разбирает due_date. Принимает дату и полный RFC3339.
func (t Task) Due() (time.Time, bool) {
	if !t.HasDueDate() {
		return time.Time{}, false
	}
	return ParseDate(*t.DueDate)
}

func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// DatePtr возвращает nil для пустой строки
func DatePtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Тело POST /api/tasks
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *string  `json:"due_date"`
	Priority    Priority `json:"priority"`
}

// Тело PUT /api/tasks/{id}. Отсутствующее поле сохраняет старое значение.
type UpdateTaskRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	DueDate     OptionalDate `json:"due_date"`
	Priority    *Priority    `json:"priority,omitempty"`
	Completed   *bool        `json:"completed,omitempty"`
}

// OptionalDate отличает отсутствующее поле от явного null
type OptionalDate struct {
	Set   bool
	Value *string
}

func (d *OptionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	d.Value = DatePtr(s)
	return nil
}

func (d OptionalDate) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*d.Value)
}

// Apply накладывает заданные поля на копию задачи
func (r UpdateTaskRequest) Apply(t Task) Task {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.DueDate.Set {
		t.DueDate = nil
		if r.DueDate.Value != nil {
			t.DueDate = DatePtr(*r.DueDate.Value)
		}
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
	return t
}
