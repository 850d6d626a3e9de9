package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds the dashboard API connection settings.
type APIConfig struct {
	// BaseURL is the root URL of the dashboard API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// RefreshIntervalSec is how often the dashboard summary is re-fetched.
	// Zero disables background refresh.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`

	// TopN is the default size of the top tag tables.
	TopN int `mapstructure:"top_n" yaml:"top_n"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	Level      string `mapstructure:"level" yaml:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`

	// CategoriesFile optionally replaces the built-in category table.
	CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`

	// DBPath is the local state database.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// ConfigDir returns ~/.config/carepartner.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "carepartner")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/carepartner/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 15,
		},
		Display: DisplayConfig{
			Theme:              "default",
			RefreshIntervalSec: 300,
			TopN:               5,
		},
		Log: LogConfig{
			Path:       filepath.Join(ConfigDir(), "carepartner.log"),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		DBPath: filepath.Join(ConfigDir(), "state.db"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("display.refresh_interval_sec", def.Display.RefreshIntervalSec)
	v.SetDefault("display.top_n", def.Display.TopN)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("db_path", def.DBPath)

	v.SetEnvPrefix("CAREPARTNER")
	_ = v.BindEnv("api.base_url", "CAREPARTNER_API_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return envOverrides(v, def), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return envOverrides(v, def), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = def.API.TimeoutSec
	}
	if cfg.Display.TopN <= 0 {
		cfg.Display.TopN = def.Display.TopN
	}

	return cfg, nil
}

// envOverrides applies environment bindings on top of the defaults when
// no config file exists.
func envOverrides(v *viper.Viper, cfg *AppConfig) *AppConfig {
	if url := v.GetString("api.base_url"); url != "" {
		cfg.API.BaseURL = url
	}
	return cfg
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("categories_file", cfg.CategoriesFile)
	v.Set("db_path", cfg.DBPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
