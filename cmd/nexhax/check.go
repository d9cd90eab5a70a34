package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/report"
)

// NewCheckCmd creates the `nexhax check` subcommand.
func NewCheckCmd(version string) *cobra.Command {
	var (
		jsonOutput bool
		output     string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check GitHub for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, version, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			out := a.flow.Check(ctx, a.current)

			if output != "" {
				if err := report.ExportToFile(output, report.Format(format), out); err != nil {
					return fmt.Errorf("failed to export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Results exported to %s\n", output)
				return nil
			}

			if jsonOutput {
				exp := report.NewJSONExporter()
				exp.Pretty = true
				return exp.Export(cmd.OutOrStdout(), out)
			}

			return report.NewTextExporter().Export(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export to file (json/csv/txt)")
	cmd.Flags().StringVar(&format, "format", "", "Export format ("+strings.Join(report.Formats(), ", ")+"), default from the file extension")

	return cmd
}
