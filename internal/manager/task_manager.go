package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	maxTitleLength  = 1000
	createdAtLayout = "2006-01-02T15:04:05.000000"
)

// ErrValidation оборачивает все ошибки входных данных (HTTP 400)
var ErrValidation = errors.New("некорректные данные задачи")

var (
	addTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_added_total",
			Help: "Total number of AddTask operations",
		},
		[]string{"status"},
	)

	updateTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_updated_total",
			Help: "Total number of UpdateTask operations",
		},
		[]string{"status"},
	)

	deleteTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_deleted_total",
			Help: "Total number of DeleteTask operations",
		},
		[]string{"status"},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_task_title_length_bytes",
			Help:    "Length distribution of task titles",
			Buckets: []float64{10, 50, 100, 500, 1000},
		},
	)

	addTaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_add_task_duration_seconds",
			Help:    "Duration of AddTask operation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	updateTaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_update_task_duration_seconds",
			Help:    "Duration of UpdateTask operation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// TaskManager серверная логика /api/tasks поверх Storage
type TaskManager struct {
	storage storage.Storage
	now     func() time.Time
}

func NewTaskManager(s storage.Storage) *TaskManager {
	return &TaskManager{storage: s, now: time.Now}
}

func (tm *TaskManager) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	return tm.storage.GetAllTasks(ctx)
}

func (tm *TaskManager) AddTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	startTime := time.Now()
	defer func() {
		addTaskDuration.Observe(time.Since(startTime).Seconds())
	}()

	if req.Priority == "" {
		req.Priority = models.PriorityNormal
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     normalizeDate(req.DueDate),
		Priority:    req.Priority,
		Completed:   false,
		CreatedAt:   tm.now().Format(createdAtLayout),
	}

	if err := validate(task); err != nil {
		addTaskCount.WithLabelValues("error").Inc()
		return nil, err
	}

	id, err := tm.storage.AddTask(ctx, task)
	if err != nil {
		addTaskCount.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ошибка сохранения задачи: %w", err)
	}
	task.ID = id

	addTaskCount.WithLabelValues("success").Inc()
	taskTitleLength.Observe(float64(len(task.Title)))

	return &task, nil
}

// UpdateTask накладывает переданные поля на сохраненную задачу
func (tm *TaskManager) UpdateTask(ctx context.Context, id int, req models.UpdateTaskRequest) (*models.Task, error) {
	startTime := time.Now()
	defer func() {
		updateTaskDuration.Observe(time.Since(startTime).Seconds())
	}()

	task, err := tm.storage.GetTask(ctx, id)
	if err != nil {
		updateTaskCount.WithLabelValues("error").Inc()
		return nil, err
	}

	*task = req.Apply(*task)

	if err := validate(*task); err != nil {
		updateTaskCount.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := tm.storage.UpdateTask(ctx, *task); err != nil {
		updateTaskCount.WithLabelValues("error").Inc()
		return nil, err
	}

	updateTaskCount.WithLabelValues("success").Inc()
	return task, nil
}

// DeleteTask идемпотентен: удаление несуществующей задачи не ошибка
func (tm *TaskManager) DeleteTask(ctx context.Context, id int) error {
	err := tm.storage.DeleteTask(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		deleteTaskCount.WithLabelValues("error").Inc()
		return err
	}
	deleteTaskCount.WithLabelValues("success").Inc()
	return nil
}

func validate(task models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("%w: название задачи обязательно", ErrValidation)
	}
	if len(task.Title) > maxTitleLength {
		return fmt.Errorf("%w: название не может превышать %d символов", ErrValidation, maxTitleLength)
	}
	if !task.Priority.Valid() {
		return fmt.Errorf("%w: неизвестный приоритет %q", ErrValidation, task.Priority)
	}
	if task.HasDueDate() {
		if _, ok := models.ParseDate(*task.DueDate); !ok {
			return fmt.Errorf("%w: некорректная дата %q", ErrValidation, *task.DueDate)
		}
	}
	return nil
}

func normalizeDate(d *string) *string {
	if d == nil {
		return nil
	}
	return models.DatePtr(*d)
}
