package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/config"
	"github.com/nexhax/nexhax/internal/history"
	"github.com/nexhax/nexhax/internal/install"
	"github.com/nexhax/nexhax/internal/logger"
	"github.com/nexhax/nexhax/internal/probe"
	"github.com/nexhax/nexhax/internal/release"
	"github.com/nexhax/nexhax/internal/updater"
	"github.com/nexhax/nexhax/internal/version"
)

// app holds the collaborators built from configuration for one command.
type app struct {
	cfg       *config.Config
	settings  config.Settings
	current   string
	resolver  *release.Resolver
	installer *install.Installer
	prober    *probe.Prober
	flow      *updater.Flow
	store     *history.Store
}

// appOptions are extra installer options, used by upgrade for progress.
type appOptions struct {
	installOpts []install.Option
}

// newApp loads configuration and wires the update core. buildVersion is
// used as the current version unless current_version is configured.
func newApp(cmd *cobra.Command, buildVersion string, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s := cfg.Settings()

	a := &app{
		cfg:      cfg,
		settings: s,
		current:  buildVersion,
	}
	if s.CurrentVersion != "" {
		a.current = s.CurrentVersion
	}

	a.resolver = release.NewResolver(
		release.WithAPIURL(s.ReleaseAPIURL),
		release.WithRepository(s.ReleaseOwner, s.ReleaseRepo),
	)

	installOpts := []install.Option{install.WithCacheDir(s.InstallCacheDir)}
	if !s.InstallUniquePath {
		installOpts = append(installOpts, install.WithFixedPath())
	}
	if s.InstallCacheDir != "" {
		installOpts = append(installOpts, install.WithContentProvider(install.FileProvider{
			Authority: s.InstallContentAuthority,
			Root:      s.InstallCacheDir,
		}))
	}
	a.installer = install.New(append(installOpts, opts.installOpts...)...)

	a.prober = probe.New(probe.WithURL(s.RemoteURL), probe.WithTimeout(s.ProbeTimeout))

	flowOpts := []updater.Option{updater.WithComparator(version.NewComparator(s.VersionScheme))}
	if s.HistoryEnabled {
		store, err := history.Open(s.HistoryPath)
		if err != nil {
			logger.Warn("history disabled: %v", err)
		} else {
			a.store = store
			flowOpts = append(flowOpts, updater.WithRecorder(store))
		}
	}
	a.flow = updater.New(a.resolver, a.installer, flowOpts...)

	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.Option
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithUserConfig(path))
	}
	return config.Load(opts...)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
