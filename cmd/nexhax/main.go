package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/logger"
)

// Version is set at build time.
var Version = "dev"

// SetupCmd creates the root command with all subcommands registered.
func SetupCmd(version string) *cobra.Command {
	cmd := NewRootCmd(version)
	cmd.Version = version
	cmd.AddCommand(
		NewCheckCmd(version),
		NewUpgradeCmd(version),
		NewProbeCmd(),
		NewHistoryCmd(),
		NewConfigCmd(),
		NewMCPCmd(version),
	)
	return cmd
}

func main() {
	cmd := SetupCmd(Version)

	err := cmd.Execute()
	logger.Get().Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
