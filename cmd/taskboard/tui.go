package main

import (
	"taskboard/internal/tui"

	"github.com/spf13/cobra"
)

func tuiCmd(a *app) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), a.client(), a.sortMode(sortFlag))
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "", "initial sort mode")
	return cmd
}
