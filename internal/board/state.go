package board

import (
	"slices"
	"strings"

	"taskboard/internal/models"
)

type ModalState int

const (
	ModalClosed ModalState = iota
	ModalCreate
	ModalEdit
)

func (s ModalState) String() string {
	switch s {
	case ModalCreate:
		return "open-create"
	case ModalEdit:
		return "open-edit"
	}
	return "closed"
}

// Form holds the task form fields as the user typed them.
type Form struct {
	Title       string
	Description string
	DueDate     string
	Priority    models.Priority
}

func EmptyForm() Form {
	return Form{Priority: models.PriorityNormal}
}

// FormFromTask fills the form for editing.
func FormFromTask(t models.Task) Form {
	f := Form{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
	}
	if t.DueDate != nil {
		f.DueDate = *t.DueDate
	}
	return f
}

// Trimmed is what gets submitted: title and description trimmed, blank date dropped.
func (f Form) Trimmed() Form {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.DueDate = strings.TrimSpace(f.DueDate)
	if f.Priority == "" {
		f.Priority = models.PriorityNormal
	}
	return f
}

func (f Form) CreateRequest() models.CreateTaskRequest {
	return models.CreateTaskRequest{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     models.DatePtr(f.DueDate),
		Priority:    f.Priority,
	}
}

// Patch is the set of fields an edit submit overwrites. Completion and
// server fields are left alone.
func (f Form) Patch() models.UpdateTaskRequest {
	title, desc, prio := f.Title, f.Description, f.Priority
	return models.UpdateTaskRequest{
		Title:       &title,
		Description: &desc,
		DueDate:     models.OptionalDate{Set: true, Value: models.DatePtr(f.DueDate)},
		Priority:    &prio,
	}
}

// State is everything the view is computed from. Tasks is always the verbatim
// result of the last successful fetch.
type State struct {
	Tasks      []models.Task
	LoadFailed bool
	Sort       SortMode

	Modal     ModalState
	EditingID *int
	Form      Form
}

func NewState(mode SortMode) State {
	return State{Sort: mode, Form: EmptyForm()}
}

func (s State) Find(id int) (models.Task, bool) {
	i := slices.IndexFunc(s.Tasks, func(t models.Task) bool { return t.ID == id })
	if i < 0 {
		return models.Task{}, false
	}
	return s.Tasks[i], true
}

func (s *State) OpenCreate() {
	s.Modal = ModalCreate
	s.EditingID = nil
	s.Form = EmptyForm()
}

// OpenEdit reports false and leaves the state untouched when id is not cached.
func (s *State) OpenEdit(id int) bool {
	task, ok := s.Find(id)
	if !ok {
		return false
	}
	s.Modal = ModalEdit
	s.EditingID = &id
	s.Form = FormFromTask(task)
	return true
}

func (s *State) Close() {
	s.Modal = ModalClosed
	s.EditingID = nil
	s.Form = EmptyForm()
}

// Loaded replaces the cache wholesale.
func (s *State) Loaded(tasks []models.Task) {
	s.Tasks = tasks
	s.LoadFailed = false
}

func (s *State) MarkLoadFailed() {
	s.LoadFailed = true
}

func (s State) clone() State {
	s.Tasks = slices.Clone(s.Tasks)
	if s.EditingID != nil {
		id := *s.EditingID
		s.EditingID = &id
	}
	return s
}
