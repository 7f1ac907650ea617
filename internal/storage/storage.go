package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"taskboard/internal/models"
)

var ErrNotFound = errors.New("задача не найдена")

// Storage интерфейс для абстракции хранилища
type Storage interface {
	AddTask(ctx context.Context, task models.Task) (int, error)
	GetAllTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (*models.Task, error)
	// UpdateTask заменяет сохраненную задачу целиком
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id int) error

	// Закрытие соединения
	Close() error
}

const (
	DriverMemory  = "memory"
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, без cgo
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, нужен cgo
)

// Open выбирает реализацию по имени драйвера из конфига
func Open(driver, path string) (Storage, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStorage(), nil
	case DriverSQLite, DriverSQLite3:
		return NewSQLiteStorage(driver, path)
	}
	return nil, fmt.Errorf("неизвестный драйвер хранилища: %q", driver)
}

// In-memory хранилище для тестов и запуска без диска
type MemoryStorage struct {
	tasks  map[int]models.Task
	nextID int
	mu     sync.Mutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:  make(map[int]models.Task),
		nextID: 1,
	}
}

func (m *MemoryStorage) AddTask(_ context.Context, task models.Task) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task.ID = m.nextID
	m.tasks[task.ID] = task
	m.nextID++

	return task.ID, nil
}

func (m *MemoryStorage) GetAllTasks(_ context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]models.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	// Порядок вставки, как у SQLite-версии
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *MemoryStorage) GetTask(_ context.Context, id int) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("задача с ID %d: %w", id, ErrNotFound)
	}
	return &task, nil
}

func (m *MemoryStorage) UpdateTask(_ context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; !ok {
		return fmt.Errorf("задача с ID %d: %w", task.ID, ErrNotFound)
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *MemoryStorage) DeleteTask(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("задача с ID %d: %w", id, ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
