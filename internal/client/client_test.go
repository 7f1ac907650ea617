package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method      string
	path        string
	contentType string
	requestID   string
	body        string
}

func newAPI(t *testing.T, status int, response string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			requestID:   r.Header.Get("X-Request-Id"),
			body:        string(b),
		})
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/tasks/"), &calls
}

func TestList(t *testing.T) {
	c, calls := newAPI(t, http.StatusOK, `[{"id":1,"title":"A","priority":"normal","completed":false,"due_date":null}]`)

	tasks, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Title)
	assert.Nil(t, tasks[0].DueDate)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].method)
	assert.Equal(t, "/api/tasks", (*calls)[0].path)
	assert.NotEmpty(t, (*calls)[0].requestID)
}

func TestListMalformed(t *testing.T) {
	c, _ := newAPI(t, http.StatusOK, `<html>oops</html>`)
	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)

	c, _ = newAPI(t, http.StatusOK, `null`)
	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCreateSendsFormFields(t *testing.T) {
	c, calls := newAPI(t, http.StatusCreated, `{"id":2}`)

	due := "2024-01-01"
	err := c.Create(context.Background(), models.CreateTaskRequest{
		Title:    "B",
		DueDate:  &due,
		Priority: models.PriorityUrgent,
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "application/json", call.contentType)
	assert.JSONEq(t, `{"title":"B","description":"","due_date":"2024-01-01","priority":"urgent"}`, call.body)
}

func TestUpdateSendsFullObject(t *testing.T) {
	c, calls := newAPI(t, http.StatusOK, `{}`)

	task := models.Task{ID: 5, Title: "T", Description: "d", Priority: models.PriorityImportant, Completed: true, CreatedAt: "2024-01-01T00:00:00"}
	require.NoError(t, c.Update(context.Background(), task))

	call := (*calls)[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/api/tasks/5", call.path)

	var sent models.Task
	require.NoError(t, json.Unmarshal([]byte(call.body), &sent))
	assert.Equal(t, task, sent)
}

func TestDelete(t *testing.T) {
	c, calls := newAPI(t, http.StatusOK, `{"message":"Task deleted"}`)

	require.NoError(t, c.Delete(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/api/tasks/9", (*calls)[0].path)
	assert.Empty(t, (*calls)[0].contentType)
}

func TestStatusError(t *testing.T) {
	c, _ := newAPI(t, http.StatusNotFound, `{"error":"Task not found"}`)

	before := testutil.ToFloat64(requestCount.WithLabelValues("delete", "error"))
	err := c.Delete(context.Background(), 1)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Contains(t, se.Error(), "Task not found")
	assert.Equal(t, before+1, testutil.ToFloat64(requestCount.WithLabelValues("delete", "error")))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).List(context.Background())
	assert.Error(t, err)
}
