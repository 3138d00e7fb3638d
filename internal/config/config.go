package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/theme"
)

// DefaultPath is the configuration file read when --config is not given
const DefaultPath = ".assessment/config.yaml"

// StoreConfig represents response storage configuration
type StoreConfig struct {
	// DBPath is the path to the SQLite response database
	DBPath string `yaml:"db_path"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	// Addr is the listen address for the HTTP server
	Addr string `yaml:"addr"`
}

// SMTPConfig represents outgoing mail configuration for lead notifications
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether enough is configured to send mail
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// NotifyConfig represents lead notification configuration
type NotifyConfig struct {
	// WebhookTimeout bounds each webhook POST
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`

	// SMTP configures notification email delivery; disabled when Host is empty
	SMTP SMTPConfig `yaml:"smtp"`
}

// Config represents assessment engine configuration options
type Config struct {
	// AssessmentsPaths are the directories scanned for definition documents
	AssessmentsPaths []string `yaml:"assessments_paths"`

	// CacheEnabled keeps the registry loaded once; when false the server reloads on file changes
	CacheEnabled bool `yaml:"cache_enabled"`

	// FallbackResultText is used when no result rule matches and none is marked fallback
	FallbackResultText string `yaml:"fallback_result_text"`

	// LogLevel controls logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for run logs; empty disables file logging
	LogDir string `yaml:"log_dir"`

	// Theme is layered over the built-in default theme
	Theme map[string]interface{} `yaml:"theme"`

	// Themes holds named variants for the param strategy
	Themes map[string]map[string]interface{} `yaml:"themes"`

	// ThemeStrategy selects how the variant layer is chosen (fixed, param, computed)
	ThemeStrategy string `yaml:"theme_strategy"`

	// ThemeParamKeys are the request keys consulted by the param strategy, in order
	ThemeParamKeys []string `yaml:"theme_param_keys"`

	// ThemeCSSPrefix prefixes rendered CSS custom properties
	ThemeCSSPrefix string `yaml:"theme_css_prefix"`

	// Store configures response persistence
	Store StoreConfig `yaml:"store"`

	// Server configures the HTTP surface
	Server ServerConfig `yaml:"server"`

	// Notify configures lead notifications
	Notify NotifyConfig `yaml:"notify"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		AssessmentsPaths:   []string{"config/assessments"},
		CacheEnabled:       true,
		FallbackResultText: "Thanks for completing the assessment.",
		LogLevel:           "info",
		LogDir:             ".assessment/logs",
		ThemeStrategy:      string(theme.StrategyFixed),
		ThemeParamKeys:     []string{"theme"},
		ThemeCSSPrefix:     theme.DefaultCSSPrefix,
		Store: StoreConfig{
			DBPath: ".assessment/responses.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Notify: NotifyConfig{
			WebhookTimeout: 10 * time.Second,
			SMTP: SMTPConfig{
				Port: 587,
			},
		},
	}
}

// yamlConfig mirrors Config with pointer fields so keys present in the file can be
// told apart from zero values.
type yamlConfig struct {
	AssessmentsPaths   []string                          `yaml:"assessments_paths"`
	CacheEnabled       *bool                             `yaml:"cache_enabled"`
	FallbackResultText *string                           `yaml:"fallback_result_text"`
	LogLevel           *string                           `yaml:"log_level"`
	LogDir             *string                           `yaml:"log_dir"`
	Theme              map[string]interface{}            `yaml:"theme"`
	Themes             map[string]map[string]interface{} `yaml:"themes"`
	ThemeStrategy      *string                           `yaml:"theme_strategy"`
	ThemeParamKeys     []string                          `yaml:"theme_param_keys"`
	ThemeCSSPrefix     *string                           `yaml:"theme_css_prefix"`
	Store              struct {
		DBPath *string `yaml:"db_path"`
	} `yaml:"store"`
	Server struct {
		Addr *string `yaml:"addr"`
	} `yaml:"server"`
	Notify struct {
		WebhookTimeout *string `yaml:"webhook_timeout"`
		SMTP           struct {
			Host     *string `yaml:"host"`
			Port     *int    `yaml:"port"`
			Username *string `yaml:"username"`
			Password *string `yaml:"password"`
			From     *string `yaml:"from"`
		} `yaml:"smtp"`
	} `yaml:"notify"`
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, returns default configuration without error
// If the file exists but is invalid, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.AssessmentsPaths != nil {
		cfg.AssessmentsPaths = yamlCfg.AssessmentsPaths
	}
	setBool(&cfg.CacheEnabled, yamlCfg.CacheEnabled)
	setString(&cfg.FallbackResultText, yamlCfg.FallbackResultText)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)
	setString(&cfg.LogDir, yamlCfg.LogDir)
	if yamlCfg.Theme != nil {
		cfg.Theme = yamlCfg.Theme
	}
	if yamlCfg.Themes != nil {
		cfg.Themes = yamlCfg.Themes
	}
	setString(&cfg.ThemeStrategy, yamlCfg.ThemeStrategy)
	if yamlCfg.ThemeParamKeys != nil {
		cfg.ThemeParamKeys = yamlCfg.ThemeParamKeys
	}
	setString(&cfg.ThemeCSSPrefix, yamlCfg.ThemeCSSPrefix)

	setString(&cfg.Store.DBPath, yamlCfg.Store.DBPath)
	setString(&cfg.Server.Addr, yamlCfg.Server.Addr)

	if yamlCfg.Notify.WebhookTimeout != nil {
		timeout, err := time.ParseDuration(*yamlCfg.Notify.WebhookTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid notify.webhook_timeout format %q: %w", *yamlCfg.Notify.WebhookTimeout, err)
		}
		cfg.Notify.WebhookTimeout = timeout
	}
	smtp := yamlCfg.Notify.SMTP
	setString(&cfg.Notify.SMTP.Host, smtp.Host)
	if smtp.Port != nil {
		cfg.Notify.SMTP.Port = *smtp.Port
	}
	setString(&cfg.Notify.SMTP.Username, smtp.Username)
	setString(&cfg.Notify.SMTP.Password, smtp.Password)
	setString(&cfg.Notify.SMTP.From, smtp.From)

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .assessment/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultPath))
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(paths *[]string, logLevel *string, logDir *string, addr *string, dbPath *string) {
	if paths != nil && len(*paths) > 0 {
		c.AssessmentsPaths = *paths
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if addr != nil {
		c.Server.Addr = *addr
	}
	if dbPath != nil {
		c.Store.DBPath = *dbPath
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if len(c.AssessmentsPaths) == 0 {
		return fmt.Errorf("assessments_paths cannot be empty")
	}
	for i, p := range c.AssessmentsPaths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("assessments_paths[%d] cannot be empty", i)
		}
	}

	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if _, err := theme.ParseStrategy(c.ThemeStrategy); err != nil {
		return fmt.Errorf("invalid theme_strategy: %w", err)
	}

	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path cannot be empty")
	}

	if c.Notify.WebhookTimeout <= 0 {
		return fmt.Errorf("notify.webhook_timeout must be > 0, got %v", c.Notify.WebhookTimeout)
	}

	if c.Notify.SMTP.Host != "" && (c.Notify.SMTP.Port <= 0 || c.Notify.SMTP.Port > 65535) {
		return fmt.Errorf("notify.smtp.port must be between 1 and 65535, got %d", c.Notify.SMTP.Port)
	}

	return nil
}

// ThemeConfig converts the theme settings into resolver configuration.
// The configured theme is layered over the built-in default.
func (c *Config) ThemeConfig(compute theme.ComputeFunc, log logger.Logger) theme.Config {
	strategy, err := theme.ParseStrategy(c.ThemeStrategy)
	if err != nil {
		strategy = theme.StrategyFixed
	}

	base := theme.DefaultTree()
	if len(c.Theme) > 0 {
		base = theme.Merge(base, theme.Normalize(c.Theme))
	}

	variants := make(map[string]theme.Tree, len(c.Themes))
	for name, tree := range c.Themes {
		variants[name] = theme.Normalize(tree)
	}

	return theme.Config{
		Base:      base,
		Variants:  variants,
		Strategy:  strategy,
		ParamKeys: append([]string(nil), c.ThemeParamKeys...),
		Compute:   compute,
		Logger:    log,
	}
}
