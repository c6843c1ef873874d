package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sb",
		Short: "Switchboard — tmux session control plane",
		Long:  "Switchboard routes messages, events, and workflows between tmux sessions.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newMessagesCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newSubscribeCmd())
	cmd.AddCommand(newUnsubscribeCmd())
	cmd.AddCommand(newSubscriptionsCmd())
	cmd.AddCommand(newWorkflowCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newLabelCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newRelayCmd())
	cmd.AddCommand(newDBCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sb %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
