// Package config loads nexhax settings from defaults, ~/.nexhax/config.yaml
// and NEXHAX_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nexhax/nexhax/internal/install"
	"github.com/nexhax/nexhax/internal/probe"
	"github.com/nexhax/nexhax/internal/release"
	"github.com/nexhax/nexhax/internal/version"
)

const (
	KeyReleaseOwner  = "release.owner"
	KeyReleaseRepo   = "release.repo"
	KeyReleaseAPIURL = "release.api_url"

	KeyRemoteURL    = "remote_url"
	KeyProbeTimeout = "probe.timeout"

	KeyInstallUniquePath       = "install.unique_path"
	KeyInstallCacheDir         = "install.cache_dir"
	KeyInstallContentAuthority = "install.content_authority"

	KeyVersionScheme  = "version.scheme"
	KeyCurrentVersion = "current_version"
	KeyTheme          = "theme"

	KeyHistoryPath    = "history.path"
	KeyHistoryEnabled = "history.enabled"
)

const envPrefix = "NEXHAX"

// Themes accepted for KeyTheme. "auto" follows the terminal background.
var Themes = []string{"auto", "light", "dark"}

// ErrUnknownKey is returned by Set and Save for keys not listed in Keys.
var ErrUnknownKey = errors.New("unknown config key")

// Settings is a typed snapshot of the configuration.
type Settings struct {
	ReleaseOwner            string
	ReleaseRepo             string
	ReleaseAPIURL           string
	RemoteURL               string
	ProbeTimeout            time.Duration
	InstallUniquePath       bool
	InstallCacheDir         string
	InstallContentAuthority string
	VersionScheme           version.Scheme
	CurrentVersion          string
	Theme                   string
	HistoryPath             string
	HistoryEnabled          bool
}

type loadSettings struct {
	userConfigPath string
}

// Option configures Load. Useful for tests to override paths.
type Option func(*loadSettings)

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(s *loadSettings) {
		s.userConfigPath = path
	}
}

// Config holds the merged configuration.
type Config struct {
	v    *viper.Viper
	path string
}

// Load merges defaults < user config < environment variables.
func Load(opts ...Option) (*Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	path := strings.TrimSpace(settings.userConfigPath)
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}

	return &Config{v: v, path: path}, nil
}

// DefaultPath is ~/.nexhax/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, ".nexhax", "config.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyReleaseOwner, release.DefaultOwner)
	v.SetDefault(KeyReleaseRepo, release.DefaultRepo)
	v.SetDefault(KeyReleaseAPIURL, release.DefaultAPIURL)
	v.SetDefault(KeyRemoteURL, probe.DefaultURL)
	v.SetDefault(KeyProbeTimeout, probe.DefaultTimeout)
	v.SetDefault(KeyInstallUniquePath, true)
	v.SetDefault(KeyInstallCacheDir, "")
	v.SetDefault(KeyInstallContentAuthority, install.DefaultContentAuthority)
	v.SetDefault(KeyVersionScheme, string(version.SchemeLoose))
	v.SetDefault(KeyCurrentVersion, "")
	v.SetDefault(KeyTheme, "auto")
	v.SetDefault(KeyHistoryPath, "")
	v.SetDefault(KeyHistoryEnabled, true)
}

// Keys lists every supported key, sorted.
func Keys() []string {
	keys := []string{
		KeyReleaseOwner, KeyReleaseRepo, KeyReleaseAPIURL,
		KeyRemoteURL, KeyProbeTimeout,
		KeyInstallUniquePath, KeyInstallCacheDir, KeyInstallContentAuthority,
		KeyVersionScheme, KeyCurrentVersion, KeyTheme,
		KeyHistoryPath, KeyHistoryEnabled,
	}
	sort.Strings(keys)
	return keys
}

func knownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func mergeConfigFile(v *viper.Viper, path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Path returns the user config file.
func (c *Config) Path() string { return c.path }

// Get returns the value of key as a string.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// Settings returns a typed snapshot.
func (c *Config) Settings() Settings {
	return Settings{
		ReleaseOwner:            c.v.GetString(KeyReleaseOwner),
		ReleaseRepo:             c.v.GetString(KeyReleaseRepo),
		ReleaseAPIURL:           c.v.GetString(KeyReleaseAPIURL),
		RemoteURL:               c.v.GetString(KeyRemoteURL),
		ProbeTimeout:            c.v.GetDuration(KeyProbeTimeout),
		InstallUniquePath:       c.v.GetBool(KeyInstallUniquePath),
		InstallCacheDir:         c.v.GetString(KeyInstallCacheDir),
		InstallContentAuthority: c.v.GetString(KeyInstallContentAuthority),
		VersionScheme:           version.ParseScheme(c.v.GetString(KeyVersionScheme)),
		CurrentVersion:          c.v.GetString(KeyCurrentVersion),
		Theme:                   c.v.GetString(KeyTheme),
		HistoryPath:             c.v.GetString(KeyHistoryPath),
		HistoryEnabled:          c.v.GetBool(KeyHistoryEnabled),
	}
}

// Set updates key for this process only.
func (c *Config) Set(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}
	c.v.Set(key, value)
	return nil
}

// Save sets key and persists it to the user config file, preserving the
// other settings stored there. The directory is created if needed.
func (c *Config) Save(key, value string) error {
	if err := c.Set(key, value); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(c.path)
	_ = v.ReadInConfig()
	v.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveTheme persists the theme preference.
func (c *Config) SaveTheme(theme string) error {
	return c.Save(KeyTheme, theme)
}

// NextTheme returns the theme after current in Themes, wrapping around.
func NextTheme(current string) string {
	for i, t := range Themes {
		if t == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func validate(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	switch key {
	case KeyTheme:
		for _, t := range Themes {
			if t == value {
				return nil
			}
		}
		return fmt.Errorf("invalid theme %q (want one of %s)", value, strings.Join(Themes, ", "))
	case KeyVersionScheme:
		if value != string(version.SchemeLoose) && value != string(version.SchemeSemver) {
			return fmt.Errorf("invalid version scheme %q (want loose or semver)", value)
		}
	case KeyProbeTimeout:
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid probe timeout %q", value)
		}
	case KeyInstallUniquePath, KeyHistoryEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid boolean %q for %s", value, key)
		}
	}
	return nil
}
