package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// appName names the per-user config and cache directories
const appName = "parity"

// ErrNoUserDir is returned when the per-user config or cache directory cannot be resolved, e.g. HOME is unset
var ErrNoUserDir = errors.New("no user directory")

// Config holds all application configuration
type Config struct {
	Version   int             `toml:"version"`
	Pages     PagesConfig     `toml:"pages"`
	Browser   BrowserConfig   `toml:"browser"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Logging   LoggingConfig   `toml:"logging"`
}

type PagesConfig struct {
	LocalURL      string `toml:"local_url"`
	ProductionURL string `toml:"production_url"`
	SearchPage    string `toml:"search_page"` // static HTML file for `parity validate`
}

type BrowserConfig struct {
	Headless         bool     `toml:"headless"`
	Width            int      `toml:"width"`
	Height           int      `toml:"height"`
	NavigateTimeout  Duration `toml:"navigate_timeout"`
	LocalSettle      Duration `toml:"local_settle"`
	ProductionSettle Duration `toml:"production_settle"`
}

type ArtifactsConfig struct {
	Dir string `toml:"dir"` // empty means <cache>/artifacts
}

type CatalogConfig struct {
	Path string `toml:"path"` // optional YAML catalog; empty uses the built-in one
}

type ScheduleConfig struct {
	Cron     string `toml:"cron"`
	Timezone string `toml:"timezone"`
}

type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Duration is a time.Duration that reads and writes as a string like "2s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// envOverrides are applied on top of the file
type envOverrides struct {
	LocalURL      string `envconfig:"PARITY_LOCAL_URL"`
	ProductionURL string `envconfig:"PARITY_PRODUCTION_URL"`
	Headless      *bool  `envconfig:"PARITY_HEADLESS"`
	LogLevel      string `envconfig:"PARITY_LOG_LEVEL"`
	FrontendPort  int    `envconfig:"FRONTEND_PORT"`
}

// DefaultFrontendPort is where the local static server listens unless FRONTEND_PORT says otherwise
const DefaultFrontendPort = 9212

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Pages: PagesConfig{
			LocalURL:      LocalSearchURL(DefaultFrontendPort),
			ProductionURL: "https://app.split.lease/search",
			SearchPage:    filepath.Join("app", "split-lease", "pages", "search", "index.html"),
		},
		Browser: BrowserConfig{
			Headless:         true,
			Width:            1280,
			Height:           720,
			NavigateTimeout:  Duration{60 * time.Second},
			LocalSettle:      Duration{2 * time.Second},
			ProductionSettle: Duration{8 * time.Second},
		},
		Schedule: ScheduleConfig{
			Cron:     "0 9 * * 1-5",
			Timezone: "America/New_York",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LocalSearchURL returns the local search page URL for a frontend port
func LocalSearchURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/search/", port)
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUserDir, err)
	}
	return filepath.Join(configDir, appName), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUserDir, err)
	}
	return filepath.Join(cacheDir, appName), nil
}

// ArtifactsDir resolves where screenshots and dumps are written
func (c *Config) ArtifactsDir() (string, error) {
	if c.Artifacts.Dir != "" {
		return c.Artifacts.Dir, nil
	}
	cacheDir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "artifacts"), nil
}

// Load reads config from the default path, creating it with defaults on first run.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		if err := cfg.SaveTo(path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return cfg, err
}

// FromEnv returns the defaults with environment overrides applied, without touching disk
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads config from path. Keys absent from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if env.FrontendPort > 0 {
		c.Pages.LocalURL = LocalSearchURL(env.FrontendPort)
	}
	if env.LocalURL != "" {
		c.Pages.LocalURL = env.LocalURL
	}
	if env.ProductionURL != "" {
		c.Pages.ProductionURL = env.ProductionURL
	}
	if env.Headless != nil {
		c.Browser.Headless = *env.Headless
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}

	return nil
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
