package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/probe"
)

// NewProbeCmd creates the `nexhax probe` subcommand.
func NewProbeCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check whether the remote page is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s := cfg.Settings()
			if url == "" {
				url = s.RemoteURL
			}
			if timeout <= 0 {
				timeout = s.ProbeTimeout
			}

			ctx, cancel := signalContext()
			defer cancel()

			p := probe.New(probe.WithURL(url), probe.WithTimeout(timeout))
			start := time.Now()
			if p.Reachable(ctx) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable (%v)\n", p.URL(), time.Since(start).Round(time.Millisecond))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is unreachable within %v, the offline page would be shown\n", p.URL(), p.Timeout())
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "URL to probe (default remote_url)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Probe timeout (default probe.timeout)")

	return cmd
}
