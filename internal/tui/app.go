// Package tui hosts the board controller in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/board"
	"taskboard/internal/logger"
	"taskboard/internal/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldPriority
	fieldCount
)

var priorities = []models.Priority{models.PriorityNormal, models.PriorityImportant, models.PriorityUrgent}

type viewMsg struct{ view board.View }

type opDoneMsg struct{ err error }

type Model struct {
	ctx  context.Context
	ctrl *board.Controller

	view   board.View
	cursor int
	width  int

	// form inputs are reset only when a different modal opens, so a reload
	// while typing does not wipe them
	formKey  string
	inputs   []textinput.Model
	priority models.Priority
	focus    int

	confirm *confirmMsg
	alert   string
	help    help.Model
}

func New(ctx context.Context, ctrl *board.Controller) Model {
	inputs := make([]textinput.Model, fieldPriority)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 1000
		inputs[i] = in
	}
	inputs[fieldDueDate].Placeholder = "YYYY-MM-DD"
	inputs[fieldDueDate].CharLimit = 10

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		view:     ctrl.View(),
		inputs:   inputs,
		priority: models.PriorityNormal,
		help:     help.New(),
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, store board.Store, mode board.SortMode) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	send := func(msg tea.Msg) { p.Send(msg) }

	ctrl := board.NewController(store, &prompter{send: send, done: ctx.Done()}, board.WithSortMode(mode))
	p = tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	ctrl.SetScreen(board.ScreenFunc(func(v board.View) { send(viewMsg{view: v}) }))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.run(m.ctrl.Load)
}

// run executes a controller call off the event loop. Views reach the model
// through the controller's screen.
func (m Model) run(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case viewMsg:
		return m.applyView(msg.view), nil

	case confirmMsg:
		m.confirm = &msg
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case opDoneMsg:
		if msg.err != nil && !expected(msg.err) {
			logger.Debug(m.ctx, "board operation failed", "err", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func expected(err error) bool {
	return errors.Is(err, board.ErrDeleteDeclined) ||
		errors.Is(err, board.ErrTaskNotFound) ||
		errors.Is(err, board.ErrTitleRequired)
}

func (m Model) applyView(v board.View) Model {
	if v.Seq < m.view.Seq {
		return m
	}
	m.view = v

	if m.cursor >= len(v.Cards) {
		m.cursor = max(len(v.Cards)-1, 0)
	}

	id := ""
	if v.Modal.State != board.ModalClosed {
		id = fmt.Sprintf("%s:%d", v.Modal.State, v.Modal.EditingID)
	}
	if id != m.formKey {
		m.formKey = id
		m = m.loadForm(v.Modal.Form)
	}
	return m
}

func (m Model) loadForm(f board.Form) Model {
	m.inputs[fieldTitle].SetValue(f.Title)
	m.inputs[fieldDescription].SetValue(f.Description)
	m.inputs[fieldDueDate].SetValue(f.DueDate)
	m.priority = f.Priority
	if m.priority == "" {
		m.priority = models.PriorityNormal
	}
	return m.focusField(fieldTitle)
}

func (m Model) focusField(i int) Model {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func (m Model) form() board.Form {
	return board.Form{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		DueDate:     m.inputs[fieldDueDate].Value(),
		Priority:    m.priority,
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return m.quit()
	}

	// Dialogs are modal: they swallow the key that dismisses them.
	if m.confirm != nil {
		switch k {
		case "y", "Y", "enter":
			m.confirm.reply <- true
		case "n", "N", "esc":
			m.confirm.reply <- false
		default:
			return m, nil
		}
		m.confirm = nil
		return m, nil
	}
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	if m.view.Modal.State != board.ModalClosed {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.view.Cards)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Add):
		return m, m.run(func(context.Context) error { m.ctrl.OpenCreate(); return nil })
	case key.Matches(msg, keys.Sort):
		next := m.view.Sort.Next()
		return m, m.run(func(context.Context) error { m.ctrl.SetSortMode(next); return nil })
	case key.Matches(msg, keys.Reload):
		return m, m.run(m.ctrl.Load)
	case key.Matches(msg, keys.Toggle):
		return m, m.trigger(func(c board.Card) string { return c.CheckboxID })
	case key.Matches(msg, keys.Edit):
		return m, m.trigger(func(c board.Card) string { return c.EditID })
	case key.Matches(msg, keys.Delete):
		return m, m.trigger(func(c board.Card) string { return c.DeleteID })
	}
	return m, nil
}

// trigger fires the handler the current view bound to the selected card.
func (m Model) trigger(element func(board.Card) string) tea.Cmd {
	if m.cursor >= len(m.view.Cards) {
		return nil
	}
	h, ok := m.view.Handlers[element(m.view.Cards[m.cursor])]
	if !ok {
		return nil
	}
	return m.run(func(ctx context.Context) error { return h(ctx) })
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, formKeys.Cancel):
		return m, m.run(func(context.Context) error { m.ctrl.Close(); return nil })
	case key.Matches(msg, formKeys.Submit):
		f := m.form()
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Submit(ctx, f) })
	case key.Matches(msg, formKeys.Next):
		return m.focusField((m.focus + 1) % fieldCount), nil
	case key.Matches(msg, formKeys.Prev):
		return m.focusField((m.focus + fieldCount - 1) % fieldCount), nil
	}

	if m.focus == fieldPriority {
		if key.Matches(msg, formKeys.Priority) {
			step := 1
			if k := msg.String(); k == "left" || k == "h" {
				step = -1
			}
			m.priority = cyclePriority(m.priority, step)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		m.confirm.reply <- false
		m.confirm = nil
	}
	return m, tea.Quit
}

func cyclePriority(p models.Priority, step int) models.Priority {
	i := 0
	for j, q := range priorities {
		if q == p {
			i = j
		}
	}
	return priorities[(i+step+len(priorities))%len(priorities)]
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleHeader.Render("Tasks"))
	b.WriteString(styleMuted.Render("  sort: " + m.view.Sort.Label()))
	b.WriteString("\n\n")

	if m.alert != "" {
		b.WriteString(styleAlert.Render("! "+clean(m.alert, 0)) + styleMuted.Render("  (any key)"))
		b.WriteString("\n\n")
	}

	if m.view.Modal.State != board.ModalClosed {
		b.WriteString(m.formView())
	} else {
		b.WriteString(m.listView())
	}

	if m.confirm != nil {
		b.WriteString("\n")
		b.WriteString(styleConfirm.Render(clean(m.confirm.message, 0) + "\n\n" + styleMuted.Render("y: yes   n/esc: no")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) listView() string {
	switch m.view.Placeholder {
	case board.PlaceholderError:
		return styleAlert.Render(board.ErrorHeading) + "\n"
	case board.PlaceholderEmpty:
		return styleHeader.Render(board.EmptyHeading) + "\n" + styleMuted.Render(board.EmptyHint) + "\n"
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for i, c := range m.view.Cards {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		box := "[ ]"
		if c.Completed {
			box = "[x]"
		}

		title := clean(c.Title, width-12)
		switch {
		case c.Completed:
			title = styleDone.Render(title)
		case i == m.cursor:
			title = styleSelected.Render(title)
		}

		meta := priorityStyle(c.Priority).Render(c.Priority)
		if c.DueDate != "" {
			meta += styleMuted.Render(" · due " + clean(c.DueDate, 0))
		}

		fmt.Fprintf(&b, "%s%s %s  %s\n", marker, box, title, meta)
		if c.Description != "" {
			b.WriteString("      " + styleMuted.Render(clean(c.Description, width-8)) + "\n")
		}
	}
	return b.String()
}

func (m Model) formView() string {
	labels := []string{"Title", "Description", "Due date"}

	var b strings.Builder
	b.WriteString(styleHeader.Render(m.view.Modal.Heading))
	b.WriteString("\n\n")
	for i, label := range labels {
		b.WriteString(fieldLabel(label, m.focus == i))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString(fieldLabel("Priority", m.focus == fieldPriority))
	b.WriteString("< " + priorityStyle(string(m.priority)).Render(string(m.priority)) + " >")
	return styleModal.Render(b.String()) + "\n"
}

func fieldLabel(label string, focused bool) string {
	s := fmt.Sprintf("%-12s ", label)
	if focused {
		return styleSelected.Render(s)
	}
	return styleMuted.Render(s)
}

func (m Model) helpLine() string {
	switch {
	case m.confirm != nil:
		return ""
	case m.view.Modal.State != board.ModalClosed:
		return m.help.ShortHelpView(formKeys.ShortHelp())
	}
	return m.help.ShortHelpView(keys.ShortHelp())
}

// clean strips terminal escape sequences and control characters from task
// text and truncates it to width cells when width > 0.
func clean(s string, width int) string {
	s = xansi.Strip(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if width > 0 {
		s = xansi.Truncate(s, width, "…")
	}
	return s
}
