package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/config"
	"github.com/davrell/switchboard/internal/mux"
	"github.com/davrell/switchboard/internal/relay"
)

func newRelayCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the websocket streaming relay",
		Long: `Serves pane output over websockets. Clients subscribe to a session and
receive a frame whenever its captured output changes; one-shot session
operations share the same connection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runRelay(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != 0 {
		cfg.Relay.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := relay.New(mux.Tmux{}, cfg.Relay)
	return srv.Start(ctx, cmd.OutOrStdout())
}
