package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/sift/internal/query"
	"github.com/mmcdole/sift/internal/selection"
)

// ProviderType identifies the search backend
type ProviderType string

const (
	ProviderTypeCatalog ProviderType = "catalog"
	ProviderTypeHTTP    ProviderType = "http"
)

// Config holds all application configuration
type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"`
	Query     QueryConfig     `mapstructure:"query"`
	View      ViewConfig      `mapstructure:"view"`
	Selection SelectionConfig `mapstructure:"selection"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ProviderConfig selects and configures the search backend
type ProviderConfig struct {
	Type       ProviderType `mapstructure:"type"`       // "catalog" or "http"
	URL        string       `mapstructure:"url"`        // http only
	Token      string       `mapstructure:"token"`      // http only, sent as bearer token
	Collection string       `mapstructure:"collection"` // catalog only
	DataDir    string       `mapstructure:"data_dir"`   // catalog database directory
}

// QueryConfig holds query coordinator tuning
type QueryConfig struct {
	Debounce  time.Duration `mapstructure:"debounce"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Limit     int           `mapstructure:"limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size"`
}

// ViewConfig holds list rendering configuration
type ViewConfig struct {
	Height   int `mapstructure:"height"`   // visible rows
	Overscan int `mapstructure:"overscan"` // extra rows rendered on each side
}

// SelectionConfig holds selection behavior
type SelectionConfig struct {
	Mode string `mapstructure:"mode"` // "single" or "multiple"
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	qc := query.DefaultConfig()
	return &Config{
		Provider: ProviderConfig{
			Type:       ProviderTypeCatalog,
			Collection: "default",
			DataDir:    defaultDataPath(),
		},
		Query: QueryConfig{
			Debounce:  qc.Debounce,
			Timeout:   qc.Timeout,
			Limit:     qc.Limit,
			CacheTTL:  qc.CacheTTL,
			CacheSize: qc.CacheSize,
		},
		View: ViewConfig{
			Height:   10,
			Overscan: 5,
		},
		Selection: SelectionConfig{
			Mode: selection.Multiple.String(),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// QueryConfig converts the query section to a coordinator config
func (c *Config) QueryConfig() query.Config {
	return query.Config{
		Debounce:  c.Query.Debounce,
		Timeout:   c.Query.Timeout,
		Limit:     c.Query.Limit,
		CacheTTL:  c.Query.CacheTTL,
		CacheSize: c.Query.CacheSize,
	}
}

// SelectionMode parses the selection mode, defaulting to multiple
func (c *Config) SelectionMode() selection.Mode {
	if strings.EqualFold(strings.TrimSpace(c.Selection.Mode), selection.Single.String()) {
		return selection.Single
	}
	return selection.Multiple
}

// Validate reports configuration that cannot produce a working provider
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case ProviderTypeCatalog:
		if c.Provider.Collection == "" {
			return errors.New("provider.collection is required for the catalog provider")
		}
	case ProviderTypeHTTP:
		if c.Provider.URL == "" {
			return errors.New("provider.url is required for the http provider")
		}
	default:
		return fmt.Errorf("unknown provider type %q", c.Provider.Type)
	}
	return nil
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sift", "sift.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sift", "sift.log")
	}
}

// defaultDataPath returns the default catalog directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sift")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sift")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sift")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sift")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Defaults make every key visible to AutomaticEnv during Unmarshal
	setDefaults(v, cfg)

	// Environment variable overrides, e.g. SIFT_QUERY_LIMIT
	v.SetEnvPrefix("SIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range settings(cfg) {
		v.SetDefault(key, value)
	}
}

// settings flattens cfg into viper keys (snake_case)
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"provider.type":       string(cfg.Provider.Type),
		"provider.url":        cfg.Provider.URL,
		"provider.token":      cfg.Provider.Token,
		"provider.collection": cfg.Provider.Collection,
		"provider.data_dir":   cfg.Provider.DataDir,

		"query.debounce":   cfg.Query.Debounce.String(),
		"query.timeout":    cfg.Query.Timeout.String(),
		"query.limit":      cfg.Query.Limit,
		"query.cache_ttl":  cfg.Query.CacheTTL.String(),
		"query.cache_size": cfg.Query.CacheSize,

		"view.height":   cfg.View.Height,
		"view.overscan": cfg.View.Overscan,

		"selection.mode": cfg.Selection.Mode,

		"metrics.enabled": cfg.Metrics.Enabled,
		"metrics.addr":    cfg.Metrics.Addr,

		"logging.file":  cfg.Logging.File,
		"logging.level": cfg.Logging.Level,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, configPath string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	for key, value := range settings(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
