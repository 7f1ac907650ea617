package board

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

type Placeholder int

const (
	PlaceholderNone Placeholder = iota
	PlaceholderEmpty
	PlaceholderError
)

const (
	EmptyHeading = "No tasks yet"
	EmptyHint    = `Click "Add New Task" to get started!`
	ErrorHeading = "Error loading tasks"
)

// Handler is an action bound to an element of a rendered View.
type Handler func(ctx context.Context) error

type Card struct {
	TaskID      int
	Title       string
	Description string
	DueDate     string
	Priority    string
	Completed   bool

	CheckboxID string
	EditID     string
	DeleteID   string
}

type ModalView struct {
	State     ModalState
	EditingID int
	Heading   string
	Form      Form
}

// View is one complete rendering. Hosts discard the previous View wholesale and
// attach Handlers by element id.
type View struct {
	Seq         uint64
	Sort        SortMode
	Placeholder Placeholder
	Cards       []Card
	Handlers    map[string]Handler
	Modal       ModalView
}

func CheckboxID(taskID int) string { return "checkbox-" + strconv.Itoa(taskID) }
func EditID(taskID int) string     { return "edit-" + strconv.Itoa(taskID) }
func DeleteID(taskID int) string   { return "delete-" + strconv.Itoa(taskID) }

// Render computes the View for s without handlers.
func Render(s State) View {
	v := View{Sort: s.Sort, Modal: modalView(s)}

	switch {
	case s.LoadFailed:
		v.Placeholder = PlaceholderError
		return v
	case len(s.Tasks) == 0:
		v.Placeholder = PlaceholderEmpty
		return v
	}

	for _, t := range Sort(s.Tasks, s.Sort) {
		c := Card{
			TaskID:      t.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    string(t.Priority),
			Completed:   t.Completed,
			CheckboxID:  CheckboxID(t.ID),
			EditID:      EditID(t.ID),
			DeleteID:    DeleteID(t.ID),
		}
		if t.HasDueDate() {
			c.DueDate = *t.DueDate
		}
		v.Cards = append(v.Cards, c)
	}
	return v
}

func modalView(s State) ModalView {
	m := ModalView{State: s.Modal, Form: s.Form}
	switch s.Modal {
	case ModalCreate:
		m.Heading = "Add New Task"
	case ModalEdit:
		m.Heading = "Edit Task"
		if s.EditingID != nil {
			m.EditingID = *s.EditingID
		}
	}
	return m
}

var listTemplate = template.Must(template.New("list").Parse(`
{{- define "card" -}}
<div class="task-card{{if .Completed}} completed{{end}}">
    <div class="task-row">
        <div class="task-title">{{.Title}}</div>
        <div class="task-icons">
            <input type="checkbox" class="task-checkbox" id="{{.CheckboxID}}"{{if .Completed}} checked{{end}} title="Mark as done">
            <button class="icon-btn edit-icon" id="{{.EditID}}" title="Edit">✏️</button>
            <button class="icon-btn delete-icon" id="{{.DeleteID}}" title="Delete">🗑️</button>
        </div>
    </div>
    {{- if .Description}}
    <div class="task-description">{{.Description}}</div>
    {{- end}}
</div>
{{end -}}
{{- if eq .Placeholder 2 -}}
<div class="empty-state"><h3>{{.ErrorHeading}}</h3></div>
{{- else if eq .Placeholder 1 -}}
<div class="empty-state">
    <h3>{{.EmptyHeading}}</h3>
    <p>{{.EmptyHint}}</p>
</div>
{{- else -}}
{{range .Cards}}{{template "card" .}}{{end}}
{{- end}}
`))

type listData struct {
	View
	Placeholder  int
	EmptyHeading string
	EmptyHint    string
	ErrorHeading string
}

// WriteHTML writes the task list markup. Every task field is escaped.
func WriteHTML(w io.Writer, v View) error {
	data := listData{
		View:         v,
		Placeholder:  int(v.Placeholder),
		EmptyHeading: EmptyHeading,
		EmptyHint:    EmptyHint,
		ErrorHeading: ErrorHeading,
	}
	if err := listTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render task list: %w", err)
	}
	return nil
}

func HTML(v View) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
