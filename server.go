package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const TasksPath = "/api/tasks"

func NewRouter(tm *manager.TaskManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get(TasksPath, listTasksHandler(tm))
	r.Post(TasksPath, addTaskHandler(tm))
	r.Put(TasksPath+"/{id}", updateTaskHandler(tm))
	r.Delete(TasksPath+"/{id}", deleteTaskHandler(tm))
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := logger.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Debug(ctx, "http запрос",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := tm.GetAllTasks(r.Context())
		if err != nil {
			logger.Error(r.Context(), err, "Ошибка чтения задач")
			writeErr(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func addTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req models.CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		task, err := tm.AddTask(r.Context(), req)
		if err != nil {
			writeManagerErr(w, r, err)
			return
		}

		logger.Info(r.Context(), "Задача создана", "id", task.ID)
		writeJSON(w, http.StatusCreated, task)
	}
}

func updateTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		id, ok := taskID(w, r)
		if !ok {
			return
		}

		var req models.UpdateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		task, err := tm.UpdateTask(r.Context(), id, req)
		if err != nil {
			writeManagerErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func deleteTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}

		if err := tm.DeleteTask(r.Context(), id); err != nil {
			writeManagerErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
	}
}

func taskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "Task not found")
		return 0, false
	}
	return id, true
}

func writeManagerErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeErr(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, manager.ErrValidation):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(r.Context(), err, "Ошибка обработки запроса", "path", r.URL.Path)
		writeErr(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
