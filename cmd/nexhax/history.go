package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/history"
)

// NewHistoryCmd creates the `nexhax history` subcommand.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent update checks and install attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.Settings().HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			renderHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")

	return cmd
}

func renderHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"When", "Kind", "Current", "Latest", "Status", "Error"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			e.CurrentVersion,
			e.LatestVersion,
			e.Status,
			e.Error,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
