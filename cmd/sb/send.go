package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/models"
)

func newSendCmd() *cobra.Command {
	var (
		configPath string
		from       string
		to         string
		payload    string
		msgType    string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to a session",
		Long: `Delivers a payload to a live tmux session.

Types: command (typed into the pane with Enter), notification (pane banner),
data (written to the session's data variable).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, configPath, from, to, payload, msgType)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&from, "from", "", "sender session name (required)")
	cmd.Flags().StringVar(&to, "to", "", "target session name (required)")
	cmd.Flags().StringVar(&payload, "payload", "", "message payload")
	cmd.Flags().StringVar(&msgType, "type", string(models.TypeCommand), "message type: command, notification, or data")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func runSend(cmd *cobra.Command, configPath, from, to, payload, msgType string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	d := newDispatcher(cfg, gormDB)
	msg, err := d.Send(from, to, payload, models.MessageType(msgType))
	if err != nil {
		if msg != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Message %s recorded as %s\n", msg.ID, msg.Status)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Message %s %s to %s\n", msg.ID, msg.Status, msg.ToSession)
	return nil
}

func newMessagesCmd() *cobra.Command {
	var (
		configPath string
		to         string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show delivery history for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessages(cmd, configPath, to, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&to, "to", "", "target session name (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of messages")
	cmd.MarkFlagRequired("to")
	return cmd
}

func runMessages(cmd *cobra.Command, configPath, to string, limit int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	d := newDispatcher(cfg, gormDB)
	msgs, err := d.History(to, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintf(out, "No messages for %s\n", to)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tTYPE\tSTATUS\tPAYLOAD")
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.FromSession, m.Type, m.Status, truncate(m.Payload, 48))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
