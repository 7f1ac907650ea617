package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityWeight(t *testing.T) {
	assert.Equal(t, 3, PriorityUrgent.Weight())
	assert.Equal(t, 2, PriorityImportant.Weight())
	assert.Equal(t, 1, PriorityNormal.Weight())
	assert.Equal(t, 0, Priority("low").Weight())
	assert.False(t, Priority("low").Valid())
}

func TestUpdateRequestDistinguishesNullFromAbsent(t *testing.T) {
	var absent UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"completed":true}`), &absent))
	assert.False(t, absent.DueDate.Set)

	var null UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":null}`), &null))
	assert.True(t, null.DueDate.Set)
	assert.Nil(t, null.DueDate.Value)

	var empty UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":""}`), &empty))
	assert.True(t, empty.DueDate.Set)
	assert.Nil(t, empty.DueDate.Value, "пустая строка означает отсутствие срока")
}

func TestApplyKeepsUntouchedFields(t *testing.T) {
	due := "2024-05-01"
	task := Task{ID: 1, Title: "A", Description: "d", DueDate: &due, Priority: PriorityUrgent, CreatedAt: "c"}

	done := true
	got := UpdateTaskRequest{Completed: &done}.Apply(task)

	assert.True(t, got.Completed)
	assert.False(t, task.Completed, "исходная задача не меняется")
	got.Completed = false
	assert.Equal(t, task, got)
}

func TestHasDueDate(t *testing.T) {
	empty := ""
	assert.False(t, Task{}.HasDueDate())
	assert.False(t, Task{DueDate: &empty}.HasDueDate())

	_, ok := Task{DueDate: DatePtr("2024-01-02T15:04:05Z")}.Due()
	assert.True(t, ok)
}
