package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	server "taskboard"
	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/storage"

	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task REST API",
		Long: `Run the task REST API backed by the configured storage.

Examples:
  taskboard serve
  taskboard serve --addr :8080
  TASKBOARD_DB_DRIVER=memory taskboard serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, a.cfg.Storage.Driver, a.cfg.Storage.Path, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func runServer(ctx context.Context, driver, path, addr string) error {
	store, err := storage.Open(driver, path)
	if err != nil {
		logger.Error(ctx, err, "Ошибка инициализации хранилища", "driver", driver)
		return err
	}
	defer store.Close()
	logger.Info(ctx, "Хранилище инициализировано", "driver", driver, "path", path)

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(manager.NewTaskManager(store)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Сервер запущен", "addr", addr, "tasks", server.TasksPath)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
