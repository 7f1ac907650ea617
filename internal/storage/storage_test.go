package storage

import (
	"context"
	"path/filepath"
	"testing"

	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storages(t *testing.T) map[string]Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(DriverSQLite, filepath.Join(t.TempDir(), "data", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"sqlite": sqlite,
	}
}

func TestStorageCRUD(t *testing.T) {
	ctx := context.Background()

	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			due := "2024-01-01"
			id1, err := s.AddTask(ctx, models.Task{
				Title:     "Купить молоко",
				DueDate:   &due,
				Priority:  models.PriorityUrgent,
				CreatedAt: "2024-01-01T10:00:00",
			})
			require.NoError(t, err)

			id2, err := s.AddTask(ctx, models.Task{Title: "Позвонить", Priority: models.PriorityNormal, CreatedAt: "2024-01-01T10:00:01"})
			require.NoError(t, err)
			assert.Greater(t, id2, id1)

			all, err := s.GetAllTasks(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, id1, all[0].ID)
			require.NotNil(t, all[0].DueDate)
			assert.Equal(t, "2024-01-01", *all[0].DueDate)
			assert.Nil(t, all[1].DueDate)

			got, err := s.GetTask(ctx, id1)
			require.NoError(t, err)
			got.Completed = true
			got.DueDate = nil
			require.NoError(t, s.UpdateTask(ctx, *got))

			got, err = s.GetTask(ctx, id1)
			require.NoError(t, err)
			assert.True(t, got.Completed)
			assert.Nil(t, got.DueDate)
			assert.Equal(t, models.PriorityUrgent, got.Priority)
			assert.Equal(t, "2024-01-01T10:00:00", got.CreatedAt)

			require.NoError(t, s.DeleteTask(ctx, id1))
			assert.ErrorIs(t, s.DeleteTask(ctx, id1), ErrNotFound)

			_, err = s.GetTask(ctx, id1)
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.UpdateTask(ctx, models.Task{ID: 999, Title: "нет такой"})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStorageEmptyListIsNotNil(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			all, err := s.GetAllTasks(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, all)
			assert.Empty(t, all)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)

	s, err := Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)
}
