package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/config"
)

func newSessionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List live tmux sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runSessions(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sessions, err := newDirectory(cfg).ListLive()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No live sessions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWINDOWS\tATTACHED")
	for _, s := range sessions {
		attached := "no"
		if s.Attached {
			attached = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name, s.Windows, attached)
	}
	return w.Flush()
}
