package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/nexhax/nexhax/internal/content"
	"github.com/nexhax/nexhax/internal/logger"
	"github.com/nexhax/nexhax/internal/report"
	"github.com/nexhax/nexhax/internal/shell"
	"github.com/nexhax/nexhax/internal/updater"
)

// NewRootCmd creates the root command. Without a subcommand it starts the
// interactive shell, or prints a one-shot status when --simple is set or
// stdout is not a terminal.
func NewRootCmd(version string) *cobra.Command {
	var simple bool

	cmd := &cobra.Command{
		Use:   "nexhax",
		Short: "Terminal shell for the nexhax page with self-update",
		Long: `nexhax shows the remote nexhax page, falls back to a bundled offline
page when it is unreachable, and keeps the app current from its GitHub
releases.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			return logger.Initialize(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, version, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if simple || !isTerminal(cmd.OutOrStdout()) {
				return runSimple(ctx, cmd.OutOrStdout(), a)
			}

			return shell.Run(ctx, shell.Deps{
				Updater:        a.flow,
				Prober:         a.prober,
				CurrentVersion: a.current,
				RepositoryURL:  a.resolver.RepositoryURL(),
				Theme:          a.settings.Theme,
				SaveTheme:      a.cfg.SaveTheme,
				DarkBackground: lipgloss.HasDarkBackground(),
			})
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (default ~/.nexhax/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "Echo debug logs to stderr")
	cmd.Flags().BoolVar(&simple, "simple", false, "Print a one-shot status instead of the shell")

	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runSimple runs the content decision and the update check concurrently and
// prints both.
func runSimple(ctx context.Context, w io.Writer, a *app) error {
	var src content.Source
	var out updater.Outcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src = content.Decide(gctx, a.prober)
		return nil
	})
	g.Go(func() error {
		out = a.flow.Check(gctx, a.current)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Page:    %s (%s)\n", src.Title(), src.Kind)
	fmt.Fprintf(w, "Version: %s\n", a.current)
	fmt.Fprintf(w, "Update:  %s\n", report.Summary(out))
	if out.UpdateAvailable() {
		if u := out.ReleaseURL(); u != "" {
			fmt.Fprintf(w, "Release: %s\n", u)
		}
		if out.Release.HasPackage() {
			fmt.Fprintln(w, "Run 'nexhax upgrade' to install it.")
		}
	}
	return nil
}
