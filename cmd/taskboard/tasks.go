package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskboard/internal/board"
	"taskboard/internal/models"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

func listCmd(a *app) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the sorted task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context(), cmd, nil, a.sortMode(sortFlag))
			if err != nil {
				printView(cmd.OutOrStdout(), board.Render(board.State{LoadFailed: true}))
				return err
			}
			printView(cmd.OutOrStdout(), ctrl.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "", "sort mode: "+sortModeList())
	return cmd
}

func renderCmd(a *app) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the task list as HTML to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context(), cmd, nil, a.sortMode(sortFlag))
			if err != nil {
				// the error placeholder is still valid markup
				_ = board.WriteHTML(cmd.OutOrStdout(), board.Render(board.State{LoadFailed: true}))
				return err
			}
			return board.WriteHTML(cmd.OutOrStdout(), ctrl.View())
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "", "sort mode: "+sortModeList())
	return cmd
}

type formFlags struct {
	title       string
	description string
	due         string
	priority    string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&f.due, "due", "", "due date YYYY-MM-DD, empty clears it")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "normal, important or urgent")
}

func addCmd(a *app) *cobra.Command {
	var f formFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Long: `Create a task through the same form flow the board uses.

Examples:
  taskboard add "Buy milk"
  taskboard add -t "Write report" --due 2025-01-31 -p urgent`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && f.title == "" {
				f.title = args[0]
			}
			prompt := board.NewConsolePrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			ctrl, err := a.controller(cmd.Context(), cmd, prompt, a.sortMode(""))
			if err != nil {
				return err
			}

			form := board.EmptyForm()
			form.Title = f.title
			form.Description = f.description
			form.DueDate = f.due
			if f.priority != "" {
				form.Priority = models.Priority(f.priority)
			}

			ctrl.OpenCreate()
			if err := ctrl.Submit(cmd.Context(), form); err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), ctrl.View())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var f formFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := a.controller(cmd.Context(), cmd, nil, a.sortMode(""))
			if err != nil {
				return err
			}

			if !ctrl.OpenEdit(id) {
				return fmt.Errorf("task %d: %w", id, board.ErrTaskNotFound)
			}
			form := ctrl.State().Form
			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = f.title
			}
			if flags.Changed("description") {
				form.Description = f.description
			}
			if flags.Changed("due") {
				form.DueDate = f.due
			}
			if flags.Changed("priority") {
				form.Priority = models.Priority(f.priority)
			}

			if err := ctrl.Submit(cmd.Context(), form); err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), ctrl.View())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func doneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle the completed flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.trigger(cmd, args[0], nil, board.CheckboxID)
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := board.Prompter(board.NewConsolePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
			if yes {
				prompt = board.AutoConfirm{Prompter: prompt}
			}
			return a.trigger(cmd, args[0], prompt, board.DeleteID)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// trigger loads the board and fires the handler bound to element(id), the same
// path a click takes.
func (a *app) trigger(cmd *cobra.Command, arg string, prompt board.Prompter, element func(int) string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	ctrl, err := a.controller(cmd.Context(), cmd, prompt, a.sortMode(""))
	if err != nil {
		return err
	}

	h, ok := ctrl.View().Handlers[element(id)]
	if !ok {
		return fmt.Errorf("task %d: %w", id, board.ErrTaskNotFound)
	}
	if err := h(cmd.Context()); err != nil {
		return err
	}
	printView(cmd.OutOrStdout(), ctrl.View())
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func sortModeList() string {
	names := make([]string, len(board.SortModes))
	for i, m := range board.SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func printView(w io.Writer, v board.View) {
	switch v.Placeholder {
	case board.PlaceholderError:
		fmt.Fprintln(w, board.ErrorHeading)
		return
	case board.PlaceholderEmpty:
		fmt.Fprintln(w, board.EmptyHeading)
		fmt.Fprintln(w, board.EmptyHint)
		return
	}

	fmt.Fprintf(w, "sort: %s\n", v.Sort.Label())
	for _, c := range v.Cards {
		box := "[ ]"
		if c.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %4d  %-9s %s", box, c.TaskID, c.Priority, xansi.Strip(c.Title))
		if c.DueDate != "" {
			line += "  (due " + c.DueDate + ")"
		}
		fmt.Fprintln(w, line)
		if c.Description != "" {
			fmt.Fprintf(w, "           %s\n", xansi.Strip(c.Description))
		}
	}
}
