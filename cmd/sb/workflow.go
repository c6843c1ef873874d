package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/workflow"
)

func newWorkflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Workflow commands",
	}

	cmd.AddCommand(newWorkflowDefineCmd())
	cmd.AddCommand(newWorkflowRunCmd())
	cmd.AddCommand(newWorkflowListCmd())
	cmd.AddCommand(newWorkflowDeleteCmd())
	cmd.AddCommand(newWorkflowScheduleCmd())
	cmd.AddCommand(newWorkflowServeCmd())
	return cmd
}

func newWorkflowDefineCmd() *cobra.Command {
	var (
		configPath string
		steps      []string
	)

	cmd := &cobra.Command{
		Use:   "define <name>",
		Short: "Define or replace a workflow",
		Long: `Defines a named sequence of commands. Each --step takes the form
"session:command" and is dispatched to the session in order when the
workflow runs. Redefining replaces the steps but keeps any schedule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowDefine(cmd, configPath, args[0], steps)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "step as session:command (repeatable, required)")
	cmd.MarkFlagRequired("step")
	return cmd
}

func runWorkflowDefine(cmd *cobra.Command, configPath, name string, raw []string) error {
	steps := make([]workflow.Step, 0, len(raw))
	for _, s := range raw {
		target, command, ok := strings.Cut(s, ":")
		if !ok || target == "" || command == "" {
			return fmt.Errorf("invalid step %q: want session:command", s)
		}
		steps = append(steps, workflow.Step{TargetSession: target, Command: command})
	}

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	eng := workflow.New(gormDB, newDispatcher(cfg, gormDB), cfg.Workflow.SettleDelay())
	wf, err := eng.Define(name, steps)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Defined workflow %s with %d step(s)\n", wf.Name, len(steps))
	return nil
}

func newWorkflowRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a workflow now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowRun(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runWorkflowRun(cmd *cobra.Command, configPath, name string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	eng := workflow.New(gormDB, newDispatcher(cfg, gormDB), cfg.Workflow.SettleDelay())
	result, err := eng.Run(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, step := range result.Steps {
		if step.Err != nil {
			fmt.Fprintf(out, "  step %d -> %s: %v\n", step.Index+1, step.Step.TargetSession, step.Err)
			failed++
			continue
		}
		fmt.Fprintf(out, "  step %d -> %s: %s\n", step.Index+1, step.Step.TargetSession, step.Message.Status)
	}
	fmt.Fprintf(out, "Workflow %s finished: %d/%d step(s) delivered\n", result.Workflow, len(result.Steps)-failed, len(result.Steps))
	return nil
}

func newWorkflowListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List defined workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runWorkflowList(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	eng := workflow.New(gormDB, newDispatcher(cfg, gormDB), cfg.Workflow.SettleDelay())
	workflows, err := eng.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(workflows) == 0 {
		fmt.Fprintln(out, "No workflows defined")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCHEDULE\tUPDATED")
	for _, wf := range workflows {
		schedule := wf.Schedule
		if schedule == "" {
			schedule = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", wf.Name, schedule, wf.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func newWorkflowDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runWorkflowDelete(cmd *cobra.Command, configPath, name string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	eng := workflow.New(gormDB, newDispatcher(cfg, gormDB), cfg.Workflow.SettleDelay())
	if err := eng.Delete(name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted workflow %s\n", name)
	return nil
}

func newWorkflowScheduleCmd() *cobra.Command {
	var (
		configPath string
		expr       string
		clear      bool
	)

	cmd := &cobra.Command{
		Use:   "schedule <name>",
		Short: "Attach a cron schedule to a workflow",
		Long: `Sets a five-field cron expression on a workflow. The schedule only fires
while "sb workflow serve" is running. Use --clear to remove it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				expr = ""
			} else if expr == "" {
				return fmt.Errorf("either --cron or --clear is required")
			}
			return runWorkflowSchedule(cmd, configPath, args[0], expr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&expr, "cron", "", "cron expression, e.g. \"*/5 * * * *\"")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the schedule")
	return cmd
}

func runWorkflowSchedule(cmd *cobra.Command, configPath, name, expr string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	eng := workflow.New(gormDB, newDispatcher(cfg, gormDB), cfg.Workflow.SettleDelay())
	if err := eng.Schedule(name, expr); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if expr == "" {
		fmt.Fprintf(out, "Cleared schedule for workflow %s\n", name)
	} else {
		fmt.Fprintf(out, "Scheduled workflow %s: %s\n", name, expr)
	}
	return nil
}

func newWorkflowServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the workflow scheduler",
		Long:  "Runs scheduled workflows until interrupted. Requires at least one workflow with a schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runWorkflowServe(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := workflow.New(gormDB, newDispatcher(cfg, gormDB), cfg.Workflow.SettleDelay())
	fmt.Fprintln(cmd.OutOrStdout(), "Workflow scheduler running (Ctrl-C to stop)")
	return eng.RunScheduler(ctx)
}
