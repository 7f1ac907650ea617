package main

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	server "taskboard"
	"taskboard/internal/board"
	"taskboard/internal/client"
	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu   sync.Mutex
	msgs []string
}

func (o *outbox) send(_ int64, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, text)
}

func (o *outbox) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.msgs) == 0 {
		return ""
	}
	return o.msgs[len(o.msgs)-1]
}

func newTestBot(t *testing.T) (*Bot, *outbox, storage.Storage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	srv := httptest.NewServer(server.NewRouter(manager.NewTaskManager(store)))
	t.Cleanup(srv.Close)

	out := &outbox{}
	b := &Bot{store: client.New(srv.URL + server.TasksPath), mode: board.SortDefault, send: out.send}
	return b, out, store
}

func TestParseAddArgs(t *testing.T) {
	f := parseAddArgs("Купить молоко !urgent @2025-01-31")
	assert.Equal(t, "Купить молоко", f.Title)
	assert.Equal(t, models.PriorityUrgent, f.Priority)
	assert.Equal(t, "2025-01-31", f.DueDate)

	f = parseAddArgs("Позвонить !someday")
	assert.Equal(t, "Позвонить !someday", f.Title)
	assert.Equal(t, models.PriorityNormal, f.Priority)
}

func TestAddAndList(t *testing.T) {
	b, out, _ := newTestBot(t)
	ctx := context.Background()

	b.handleCommand(ctx, 1, "list", "")
	assert.Contains(t, out.last(), "Список задач пуст")

	b.handleCommand(ctx, 1, "add", "Отчет_v2 !important @2025-02-01")
	assert.Contains(t, out.last(), "Задача добавлена")
	assert.Contains(t, out.last(), `Отчет\_v2`)
	assert.Contains(t, out.last(), "🟡")
	assert.Contains(t, out.last(), "2025-02-01")
}

func TestAddBlankTitle(t *testing.T) {
	b, out, store := newTestBot(t)

	b.handleCommand(context.Background(), 1, "add", "!urgent")

	assert.Contains(t, out.last(), board.MsgTitleRequired)
	tasks, err := store.GetAllTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDoneToggles(t *testing.T) {
	b, out, store := newTestBot(t)
	ctx := context.Background()
	b.handleCommand(ctx, 1, "add", "Купить хлеб")

	b.handleCommand(ctx, 1, "done", "1")
	assert.Contains(t, out.last(), "отмечена выполненной")

	task, err := store.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "Купить хлеб", task.Title)
}

func TestDeleteNeedsConfirm(t *testing.T) {
	b, out, store := newTestBot(t)
	ctx := context.Background()
	b.handleCommand(ctx, 1, "add", "Удалить меня")

	b.handleCommand(ctx, 1, "delete", "1")
	assert.Contains(t, out.last(), "/delete 1 confirm")
	_, err := store.GetTask(ctx, 1)
	require.NoError(t, err)

	b.handleCommand(ctx, 1, "delete", "1 confirm")
	assert.Contains(t, out.last(), "удалена")
	_, err = store.GetTask(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUnknownTask(t *testing.T) {
	b, out, _ := newTestBot(t)

	b.handleCommand(context.Background(), 1, "done", "99")
	assert.Equal(t, "Задача не найдена", out.last())
}

func TestUnknownCommand(t *testing.T) {
	b, out, _ := newTestBot(t)

	b.handleCommand(context.Background(), 1, "wat", "")
	assert.Contains(t, out.last(), "Неизвестная команда")
}

func TestFormatViewError(t *testing.T) {
	assert.Contains(t, formatView(board.Render(board.State{LoadFailed: true})), board.ErrorHeading)
}
