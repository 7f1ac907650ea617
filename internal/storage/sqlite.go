package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"taskboard/internal/models"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const taskColumns = "id, title, description, due_date, priority, completed, created_at"

type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage открывает БД. driver: "sqlite" (modernc) или "sqlite3" (mattn).
func NewSQLiteStorage(driver, dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ошибка создания директории БД: %w", err)
		}
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}
	// SQLite не любит параллельных писателей
	db.SetMaxOpenConns(1)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

// Migrate создает схему, если ее еще нет
func Migrate(ctx context.Context, db *sql.DB) error {
	createTasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date TEXT,
		priority TEXT NOT NULL DEFAULT 'normal',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	)`

	if _, err := db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы tasks: %w", err)
	}
	return nil
}

// Закрытие соединения
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) AddTask(ctx context.Context, task models.Task) (int, error) {
	query := `
	INSERT INTO tasks (title, description, due_date, priority, completed, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		task.Title, task.Description, nullDate(task.DueDate),
		string(task.Priority), task.Completed, task.CreatedAt,
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	return int(id), err
}

func (s *SQLiteStorage) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (s *SQLiteStorage) GetTask(ctx context.Context, id int) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("задача с ID %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &task, nil
}

func (s *SQLiteStorage) UpdateTask(ctx context.Context, task models.Task) error {
	query := `
	UPDATE tasks
	SET title = ?, description = ?, due_date = ?, priority = ?, completed = ?, created_at = ?
	WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		task.Title, task.Description, nullDate(task.DueDate),
		string(task.Priority), task.Completed, task.CreatedAt, task.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result, task.ID)
}

func (s *SQLiteStorage) DeleteTask(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("задача с ID %d: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var task models.Task
	var dueDate sql.NullString
	var priority string

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &dueDate,
		&priority, &task.Completed, &task.CreatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	task.Priority = models.Priority(priority)
	if dueDate.Valid {
		task.DueDate = models.DatePtr(dueDate.String)
	}
	return task, nil
}

// Вспомогательная функция для сканирования задач
func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func nullDate(d *string) any {
	if d == nil || *d == "" {
		return nil
	}
	return *d
}
