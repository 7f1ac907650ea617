package manager

import (
	"context"
	"strings"
	"testing"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TaskManager {
	tm := NewTaskManager(storage.NewMemoryStorage())
	tm.now = func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) }
	return tm
}

func strPtr(s string) *string { return &s }

func TestAddTask(t *testing.T) {
	tm := newTestManager()

	task, err := tm.AddTask(context.Background(), models.CreateTaskRequest{Title: "Купить молоко"})
	require.NoError(t, err, "Ошибка при добавлении задачи")

	assert.Equal(t, 1, task.ID)
	assert.Equal(t, models.PriorityNormal, task.Priority)
	assert.False(t, task.Completed)
	assert.Equal(t, "2024-01-01T09:30:00.000000", task.CreatedAt)

	all, err := tm.GetAllTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddEmptyTask(t *testing.T) {
	tm := newTestManager()

	_, err := tm.AddTask(context.Background(), models.CreateTaskRequest{Title: "   "})
	assert.ErrorIs(t, err, ErrValidation, "Ожидалась ошибка при пустом названии")
}

func TestAddTaskWithMaxLength(t *testing.T) {
	tm := newTestManager()

	// Генерируем строку длиной ровно 1000 символов
	validTitle := strings.Repeat("a", 1000)
	_, err := tm.AddTask(context.Background(), models.CreateTaskRequest{Title: validTitle})
	assert.NoError(t, err, "Ожидалась успешная валидация для 1000 символов")

	// Тест на 1001 символ
	_, err = tm.AddTask(context.Background(), models.CreateTaskRequest{Title: validTitle + "a"})
	assert.ErrorIs(t, err, ErrValidation, "Ожидалась ошибка при 1001 символе")
}

func TestAddTaskRejectsUnknownPriorityAndBadDate(t *testing.T) {
	tm := newTestManager()

	_, err := tm.AddTask(context.Background(), models.CreateTaskRequest{Title: "x", Priority: "low"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tm.AddTask(context.Background(), models.CreateTaskRequest{Title: "x", DueDate: strPtr("завтра")})
	assert.ErrorIs(t, err, ErrValidation)

	task, err := tm.AddTask(context.Background(), models.CreateTaskRequest{Title: "x", DueDate: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate, "пустая дата хранится как null")
}

func TestUpdateTaskMergesFields(t *testing.T) {
	tm := newTestManager()
	ctx := context.Background()

	created, err := tm.AddTask(ctx, models.CreateTaskRequest{
		Title:       "Отчет",
		Description: "квартальный",
		DueDate:     strPtr("2024-03-01"),
		Priority:    models.PriorityImportant,
	})
	require.NoError(t, err)

	done := true
	updated, err := tm.UpdateTask(ctx, created.ID, models.UpdateTaskRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Отчет", updated.Title)
	assert.Equal(t, "квартальный", updated.Description)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2024-03-01", *updated.DueDate)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	// Явный null очищает срок
	updated, err = tm.UpdateTask(ctx, created.ID, models.UpdateTaskRequest{DueDate: models.OptionalDate{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	_, err = tm.UpdateTask(ctx, 42, models.UpdateTaskRequest{Completed: &done})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteTaskIsIdempotent(t *testing.T) {
	tm := newTestManager()
	ctx := context.Background()

	created, err := tm.AddTask(ctx, models.CreateTaskRequest{Title: "Удалить меня"})
	require.NoError(t, err)

	require.NoError(t, tm.DeleteTask(ctx, created.ID))
	require.NoError(t, tm.DeleteTask(ctx, created.ID))

	all, err := tm.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddTaskMetrics(t *testing.T) {
	// Сохраняем оригинальные метрики
	originalAddTaskCount := addTaskCount
	originalTaskTitleLength := taskTitleLength

	// Создаем новый регистр для тестов
	registry := prometheus.NewRegistry()

	testAddTaskCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_added_total",
			Help: "Test counter",
		},
		[]string{"status"},
	)

	testTaskTitleLength := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_task_title_length_bytes",
			Help:    "Test histogram",
			Buckets: []float64{10, 50, 100, 500, 1000},
		},
	)

	registry.MustRegister(testAddTaskCount)
	registry.MustRegister(testTaskTitleLength)

	// Подменяем глобальные метрики
	addTaskCount = testAddTaskCount
	taskTitleLength = testTaskTitleLength

	// Восстанавливаем оригинальные метрики после теста
	defer func() {
		addTaskCount = originalAddTaskCount
		taskTitleLength = originalTaskTitleLength
	}()

	tm := newTestManager()

	// Тест 1: Успешное добавление
	_, err := tm.AddTask(context.Background(), models.CreateTaskRequest{Title: "Valid title"})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(testAddTaskCount.WithLabelValues("success")))

	metrics, err := registry.Gather()
	require.NoError(t, err, "Failed to gather metrics")

	foundHistogram := false
	for _, mf := range metrics {
		if mf.GetName() == "taskboard_task_title_length_bytes" {
			foundHistogram = true
			assert.NotEmpty(t, mf.GetMetric(), "Histogram has no samples")
			break
		}
	}
	assert.True(t, foundHistogram, "Histogram metric not found")

	// Тест 2: Ошибочное добавление
	_, err = tm.AddTask(context.Background(), models.CreateTaskRequest{Title: ""})
	assert.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(testAddTaskCount.WithLabelValues("error")))
}
