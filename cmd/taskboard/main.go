package main

import (
	"context"
	"fmt"
	"os"

	"taskboard/internal/board"
	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

type app struct {
	configPath string
	apiURL     string
	cfg        config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Task list: API server, terminal board and one-shot commands",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "taskboard.yaml", "path to YAML config")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "task collection URL, overrides api.base_url")

	root.AddCommand(
		serveCmd(a),
		migrateCmd(a),
		tuiCmd(a),
		listCmd(a),
		renderCmd(a),
		addCmd(a),
		editCmd(a),
		doneCmd(a),
		deleteCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	a.cfg = cfg
	return nil
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.API.BaseURL, client.WithTimeout(a.cfg.API.Timeout))
}

func (a *app) sortMode(flag string) board.SortMode {
	if flag != "" {
		return board.ParseSortMode(flag)
	}
	return board.ParseSortMode(a.cfg.Board.DefaultSort)
}

// controller builds a board over the API and performs the initial load. A
// failed load is returned so one-shot commands exit non-zero.
func (a *app) controller(ctx context.Context, cmd *cobra.Command, prompt board.Prompter, mode board.SortMode) (*board.Controller, error) {
	if prompt == nil {
		prompt = board.NewConsolePrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	ctrl := board.NewController(a.client(), prompt, board.WithSortMode(mode))
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}
