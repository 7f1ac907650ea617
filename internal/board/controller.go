// Package board is the task list view controller: it owns the cached task list
// and modal state, sorts and renders, and routes every mutation through the store
// followed by a full reload.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskboard/internal/logger"
	"taskboard/internal/models"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrTaskNotFound   = errors.New("task not found in cache")
	ErrDeleteDeclined = errors.New("delete declined")
	ErrModalClosed    = errors.New("task form is not open")
)

// User-facing messages.
const (
	MsgTitleRequired = "Title is required!"
	MsgConfirmDelete = "Are you sure you want to delete this task?"
	MsgSaveFailed    = "Error saving task. Please try again."
	MsgUpdateFailed  = "Error updating task. Please try again."
	MsgDeleteFailed  = "Error deleting task. Please try again."
)

// Store is the task API as seen by the controller. *client.Client satisfies it.
type Store interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, req models.CreateTaskRequest) error
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, id int) error
}

// Screen receives every freshly rendered View.
type Screen interface {
	Show(v View)
}

type ScreenFunc func(View)

func (f ScreenFunc) Show(v View) { f(v) }

type Controller struct {
	store  Store
	prompt Prompter
	screen Screen

	mu    sync.Mutex
	state State
	seq   uint64
}

type Option func(*Controller)

func WithSortMode(m SortMode) Option {
	return func(c *Controller) { c.state.Sort = m }
}

func WithScreen(s Screen) Option {
	return func(c *Controller) { c.screen = s }
}

func NewController(store Store, prompt Prompter, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		prompt: prompt,
		state:  NewState(SortDefault),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetScreen swaps the display target; hosts that are built after the
// controller use it.
func (c *Controller) SetScreen(s Screen) {
	c.mu.Lock()
	c.screen = s
	c.mu.Unlock()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// View renders the current state without bumping the sequence.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := Render(c.state)
	v.Seq = c.seq
	v.Handlers = c.handlers(v.Cards)
	return v
}

// Load fetches the full collection. On failure the cache is kept and the error
// placeholder is shown until the next successful load.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.store.List(ctx)

	c.mu.Lock()
	if err != nil {
		c.state.MarkLoadFailed()
	} else {
		c.state.Loaded(tasks)
	}
	v, screen := c.renderLocked()
	c.mu.Unlock()

	show(screen, v)

	if err != nil {
		logger.Error(ctx, err, "Error loading tasks")
		return fmt.Errorf("load tasks: %w", err)
	}
	logger.Debug(ctx, "tasks loaded", "count", len(tasks))
	return nil
}

func (c *Controller) SetSortMode(m SortMode) {
	c.mutate(func(s *State) { s.Sort = m })
}

func (c *Controller) OpenCreate() {
	c.mutate(func(s *State) { s.OpenCreate() })
}

// OpenEdit reports false, changing nothing, when id is not cached.
func (c *Controller) OpenEdit(id int) bool {
	c.mu.Lock()
	if !c.state.OpenEdit(id) {
		c.mu.Unlock()
		return false
	}
	v, screen := c.renderLocked()
	c.mu.Unlock()

	show(screen, v)
	return true
}

// Close discards the form.
func (c *Controller) Close() {
	c.mutate(func(s *State) { s.Close() })
}

// Submit validates f and creates or updates depending on the modal state. A
// blank title is rejected before any request. On a failed request the modal
// stays open.
func (c *Controller) Submit(ctx context.Context, f Form) error {
	f = f.Trimmed()
	if f.Title == "" {
		c.prompt.Alert(MsgTitleRequired)
		return ErrTitleRequired
	}

	c.mu.Lock()
	modal := c.state.Modal
	var base models.Task
	if modal == ModalEdit {
		id := *c.state.EditingID
		var found bool
		if base, found = c.state.Find(id); !found {
			base = models.Task{ID: id}
		}
	}
	c.mu.Unlock()

	var err error
	switch modal {
	case ModalCreate:
		err = c.store.Create(ctx, f.CreateRequest())
	case ModalEdit:
		err = c.store.Update(ctx, f.Patch().Apply(base))
	default:
		return ErrModalClosed
	}
	if err != nil {
		logger.Error(ctx, err, "Error saving task", "mode", modal)
		c.prompt.Alert(MsgSaveFailed)
		return fmt.Errorf("save task: %w", err)
	}

	c.Close()
	_ = c.Load(ctx)
	return nil
}

// UpdateTask merges patch onto the cached task and sends the full object.
func (c *Controller) UpdateTask(ctx context.Context, id int, patch models.UpdateTaskRequest) error {
	c.mu.Lock()
	task, ok := c.state.Find(id)
	c.mu.Unlock()
	if !ok {
		return ErrTaskNotFound
	}

	if err := c.store.Update(ctx, patch.Apply(task)); err != nil {
		logger.Error(ctx, err, "Error updating task", "id", id)
		c.prompt.Alert(MsgUpdateFailed)
		return fmt.Errorf("update task %d: %w", id, err)
	}

	_ = c.Load(ctx)
	return nil
}

// ToggleComplete flips completed and keeps every other field.
func (c *Controller) ToggleComplete(ctx context.Context, id int) error {
	c.mu.Lock()
	task, ok := c.state.Find(id)
	c.mu.Unlock()
	if !ok {
		return ErrTaskNotFound
	}

	completed := !task.Completed
	return c.UpdateTask(ctx, id, models.UpdateTaskRequest{Completed: &completed})
}

// DeleteTask asks for confirmation first; declining sends nothing.
func (c *Controller) DeleteTask(ctx context.Context, id int) error {
	if !c.prompt.Confirm(MsgConfirmDelete) {
		return ErrDeleteDeclined
	}

	if err := c.store.Delete(ctx, id); err != nil {
		logger.Error(ctx, err, "Error deleting task", "id", id)
		c.prompt.Alert(MsgDeleteFailed)
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	_ = c.Load(ctx)
	return nil
}

func (c *Controller) mutate(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	v, screen := c.renderLocked()
	c.mu.Unlock()

	show(screen, v)
}

func (c *Controller) renderLocked() (View, Screen) {
	c.seq++
	v := Render(c.state)
	v.Seq = c.seq
	v.Handlers = c.handlers(v.Cards)
	return v, c.screen
}

func (c *Controller) handlers(cards []Card) map[string]Handler {
	h := make(map[string]Handler, len(cards)*3)
	for _, card := range cards {
		id := card.TaskID
		h[card.CheckboxID] = func(ctx context.Context) error { return c.ToggleComplete(ctx, id) }
		h[card.EditID] = func(context.Context) error {
			if !c.OpenEdit(id) {
				return ErrTaskNotFound
			}
			return nil
		}
		h[card.DeleteID] = func(ctx context.Context) error { return c.DeleteTask(ctx, id) }
	}
	return h
}

func show(s Screen, v View) {
	if s != nil {
		s.Show(v)
	}
}
