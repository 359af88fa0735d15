package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DerWahreMirakulix/metor/internal/history"
)

func newHistoryCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show logged connection events, latest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryShow(cmd, load)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show logged connection events, latest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runHistoryShow(cmd, load)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all logged connection events",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				if err := history.New(cfg.HistoryFile()).Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			},
		},
	)
	return cmd
}

func runHistoryShow(cmd *cobra.Command, load configLoader) error {
	cfg, err := load(cmd)
	if err != nil {
		return err
	}
	records, err := history.New(cfg.HistoryFile()).Read()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintln(cmd.OutOrStdout(), r)
	}
	return nil
}
