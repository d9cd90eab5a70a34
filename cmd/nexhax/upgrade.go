package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/install"
	"github.com/nexhax/nexhax/internal/updater"
)

// NewUpgradeCmd creates the `nexhax upgrade` subcommand.
func NewUpgradeCmd(version string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Download and install the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			dl := newDownloadSpinner(w)

			a, err := newApp(cmd, version, appOptions{
				installOpts: []install.Option{install.WithProgress(dl.progress)},
			})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			fmt.Fprintln(w, "Checking for updates...")

			out := a.flow.Check(ctx, a.current)
			switch out.Status {
			case updater.StatusUnavailable:
				return errors.New("could not fetch the latest release")
			case updater.StatusUpToDate:
				if !force {
					fmt.Fprintf(w, "nexhax %s is already the latest version.\n", a.current)
					return nil
				}
			}

			if out.UpdateAvailable() {
				fmt.Fprintf(w, "New version available: %s → %s\n", a.current, out.LatestVersion())
			} else {
				fmt.Fprintf(w, "Reinstalling nexhax %s\n", out.LatestVersion())
			}

			if !out.Release.HasPackage() {
				fmt.Fprintln(w, "No app-release.apk was found in the release.")
				if u := out.ReleaseURL(); u != "" {
					fmt.Fprintf(w, "Visit %s to download manually.\n", u)
				}
				return nil
			}

			if !force && !confirm(w, cmd.InOrStdin(), "Upgrade? [y/N] ") {
				fmt.Fprintln(w, "Upgrade cancelled.")
				return nil
			}

			if a.installer.Native() {
				dl.start()
			} else {
				fmt.Fprintf(w, "Opening %s...\n", out.PackageURL())
			}
			err = a.flow.Install(ctx, out)
			dl.stop()
			if err != nil {
				return fmt.Errorf("upgrade failed: %w", err)
			}

			fmt.Fprintf(w, "Installer started for nexhax %s\n", out.LatestVersion())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt and reinstall the latest release")

	return cmd
}

func confirm(w io.Writer, r io.Reader, prompt string) bool {
	fmt.Fprint(w, prompt)
	answer, _ := bufio.NewReader(r).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

type downloadSpinner struct {
	s *spinner.Spinner
}

func newDownloadSpinner(w io.Writer) *downloadSpinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " Downloading app-release.apk..."
	return &downloadSpinner{s: s}
}

func (d *downloadSpinner) start() { d.s.Start() }

func (d *downloadSpinner) stop() { d.s.Stop() }

func (d *downloadSpinner) progress(written, total int64) {
	d.s.Lock()
	defer d.s.Unlock()
	if total > 0 {
		d.s.Suffix = fmt.Sprintf(" Downloading %s / %s", humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total)))
		return
	}
	d.s.Suffix = fmt.Sprintf(" Downloading %s", humanize.Bytes(uint64(written)))
}
