package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/mux"
	"github.com/davrell/switchboard/internal/task"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Background task commands",
	}

	cmd.AddCommand(newTaskStartCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskStopCmd())
	cmd.AddCommand(newTaskPruneCmd())
	return cmd
}

func newTaskRegistry(configPath string) (*task.Registry, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, err
	}
	return task.New(gormDB, mux.Tmux{}, newDirectory(cfg)), nil
}

func newTaskStartCmd() *cobra.Command {
	var (
		configPath string
		session    string
		window     string
		command    string
		taskType   string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a background task in a session window",
		Long: `Opens a named window in the target session and runs the command there.
The (session, window) pair identifies the task; starting over a live
window is an error, while a dead one is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskStart(cmd, configPath, session, window, command, taskType)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&session, "session", "", "target session name (required)")
	cmd.Flags().StringVar(&window, "window", "", "window name (required)")
	cmd.Flags().StringVar(&command, "command", "", "command to run (required)")
	cmd.Flags().StringVar(&taskType, "type", "", "task type label, e.g. build or watch")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("window")
	cmd.MarkFlagRequired("command")
	return cmd
}

func runTaskStart(cmd *cobra.Command, configPath, session, window, command, taskType string) error {
	reg, err := newTaskRegistry(configPath)
	if err != nil {
		return err
	}

	t, err := reg.Start(session, window, command, taskType)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started task %s:%s\n", t.Session, t.Window)
	return nil
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		session    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live background tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList(cmd, configPath, session)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&session, "session", "", "filter by session")
	return cmd
}

func runTaskList(cmd *cobra.Command, configPath, session string) error {
	reg, err := newTaskRegistry(configPath)
	if err != nil {
		return err
	}

	tasks, err := reg.List(session)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No live tasks")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tWINDOW\tTYPE\tSTARTED\tCOMMAND")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Session, t.Window, t.Type, t.StartedAt.Format("2006-01-02 15:04"), truncate(t.Command, 48))
	}
	return w.Flush()
}

func newTaskStopCmd() *cobra.Command {
	var (
		configPath string
		session    string
		window     string
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a background task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskStop(cmd, configPath, session, window)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&session, "session", "", "session name (required)")
	cmd.Flags().StringVar(&window, "window", "", "window name (required)")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("window")
	return cmd
}

func runTaskStop(cmd *cobra.Command, configPath, session, window string) error {
	reg, err := newTaskRegistry(configPath)
	if err != nil {
		return err
	}

	if err := reg.Stop(session, window); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopped task %s:%s\n", session, window)
	return nil
}

func newTaskPruneCmd() *cobra.Command {
	var (
		configPath string
		session    string
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove records for dead tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskPrune(cmd, configPath, session)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&session, "session", "", "filter by session")
	return cmd
}

func runTaskPrune(cmd *cobra.Command, configPath, session string) error {
	reg, err := newTaskRegistry(configPath)
	if err != nil {
		return err
	}

	removed, err := reg.Prune(session)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d task record(s)\n", removed)
	return nil
}
