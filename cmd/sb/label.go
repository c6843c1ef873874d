package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davrell/switchboard/internal/label"
)

func newLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Session label commands",
	}

	cmd.AddCommand(newLabelSetCmd())
	cmd.AddCommand(newLabelGetCmd())
	cmd.AddCommand(newLabelSearchCmd())
	return cmd
}

func newLabelIndex(configPath string) (*label.Index, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, err
	}
	return label.New(gormDB, newDirectory(cfg)), nil
}

func newLabelSetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set <session> [label...]",
		Short: "Replace a session's labels",
		Long:  "Replaces the full label set for a session. With no labels, clears it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelSet(cmd, configPath, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runLabelSet(cmd *cobra.Command, configPath, session string, labels []string) error {
	idx, err := newLabelIndex(configPath)
	if err != nil {
		return err
	}

	if err := idx.Set(session, labels); err != nil {
		return err
	}

	if len(labels) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared labels for %s\n", session)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Labeled %s: %s\n", session, strings.Join(labels, ", "))
	}
	return nil
}

func newLabelGetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "get <session>",
		Short: "Show a session's labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelGet(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runLabelGet(cmd *cobra.Command, configPath, session string) error {
	idx, err := newLabelIndex(configPath)
	if err != nil {
		return err
	}

	labels, err := idx.Get(session)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(labels) == 0 {
		fmt.Fprintf(out, "No labels for %s\n", session)
		return nil
	}
	fmt.Fprintln(out, strings.Join(labels, ", "))
	return nil
}

func newLabelSearchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "search <label>",
		Short: "Find live sessions carrying a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelSearch(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runLabelSearch(cmd *cobra.Command, configPath, query string) error {
	idx, err := newLabelIndex(configPath)
	if err != nil {
		return err
	}

	sessions, err := idx.Search(query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintf(out, "No live sessions labeled %q\n", query)
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintln(out, s)
	}
	return nil
}
