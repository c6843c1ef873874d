package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/eventbus"
	"github.com/davrell/switchboard/internal/models"
)

func newSubscribeCmd() *cobra.Command {
	var (
		configPath string
		subscriber string
		event      string
		action     string
	)

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Register a session for an event type",
		Long: `Registers a standing subscription. When the event type is published the
subscriber receives the event data as a message.

Actions: notify (pane banner), command (typed into the pane), data
(written to the session's data variable).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscribe(cmd, configPath, subscriber, event, action)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&subscriber, "subscriber", "", "subscriber session name (required)")
	cmd.Flags().StringVar(&event, "event", "", "event type (required)")
	cmd.Flags().StringVar(&action, "action", string(models.ActionNotify), "delivery action: notify, command, or data")
	cmd.MarkFlagRequired("subscriber")
	cmd.MarkFlagRequired("event")
	return cmd
}

func runSubscribe(cmd *cobra.Command, configPath, subscriber, event, action string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	bus := eventbus.New(gormDB, newDispatcher(cfg, gormDB))
	sub, err := bus.Subscribe(subscriber, event, models.SubscriptionAction(action))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s to %s (%s)\n", sub.Subscriber, sub.EventType, sub.Action)
	return nil
}

func newUnsubscribeCmd() *cobra.Command {
	var (
		configPath string
		subscriber string
		event      string
	)

	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Remove a session's subscriptions for an event type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnsubscribe(cmd, configPath, subscriber, event)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&subscriber, "subscriber", "", "subscriber session name (required)")
	cmd.Flags().StringVar(&event, "event", "", "event type (required)")
	cmd.MarkFlagRequired("subscriber")
	cmd.MarkFlagRequired("event")
	return cmd
}

func runUnsubscribe(cmd *cobra.Command, configPath, subscriber, event string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	bus := eventbus.New(gormDB, newDispatcher(cfg, gormDB))
	removed, err := bus.Unsubscribe(subscriber, event)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d subscription(s) for %s on %s\n", removed, subscriber, event)
	return nil
}

func newSubscriptionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List all subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscriptions(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runSubscriptions(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	bus := eventbus.New(gormDB, newDispatcher(cfg, gormDB))
	subs, err := bus.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(subs) == 0 {
		fmt.Fprintln(out, "No subscriptions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBSCRIBER\tEVENT\tACTION")
	for _, s := range subs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Subscriber, s.EventType, s.Action)
	}
	return w.Flush()
}

func newPublishCmd() *cobra.Command {
	var (
		configPath string
		from       string
		event      string
		data       string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an event to all subscribers",
		Long: `Fans an event out to every subscriber of the event type. Each subscriber
gets one message per its registered action; one failed delivery does not
stop the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, configPath, from, event, data)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&from, "from", "", "publishing session name (required)")
	cmd.Flags().StringVar(&event, "event", "", "event type (required)")
	cmd.Flags().StringVar(&data, "data", "", "event data")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("event")
	return cmd
}

func runPublish(cmd *cobra.Command, configPath, from, event, data string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	bus := eventbus.New(gormDB, newDispatcher(cfg, gormDB))
	results, err := bus.Publish(from, event, data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No subscribers for %s\n", event)
		return nil
	}

	delivered := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "  %s: %v\n", r.Subscriber, r.Err)
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", r.Subscriber, r.Message.Status)
		delivered++
	}
	fmt.Fprintf(out, "Published %s to %d/%d subscriber(s)\n", event, delivered, len(results))
	return nil
}
