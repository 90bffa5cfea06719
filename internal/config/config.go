package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName is used for the config directory, env prefix and user agent
const AppName = "trackermeta"

// Config holds all application configuration
type Config struct {
	Archive   ArchiveConfig  `mapstructure:"archive"`
	Network   NetworkConfig  `mapstructure:"network"`
	Anchors   AnchorsConfig  `mapstructure:"anchors"`
	Markers   MarkersConfig  `mapstructure:"markers"`
	Downloads DownloadConfig `mapstructure:"downloads"`
	History   HistoryConfig  `mapstructure:"history"`
	Log       LogConfig      `mapstructure:"log"`
}

// ArchiveConfig holds Mod Archive settings
type ArchiveConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// NetworkConfig holds network and retry settings
type NetworkConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	InfinityRetry   bool          `mapstructure:"infinity_retry"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
}

// AnchorsConfig controls the line offset override
type AnchorsConfig struct {
	OverrideEnabled bool   `mapstructure:"override_enabled"`
	OverrideFile    string `mapstructure:"override_file"` // empty means <config dir>/line-overrides
}

// MarkersConfig holds the textual landmarks used to recognise archive pages.
// Empty values fall back to the compiled-in markers.
type MarkersConfig struct {
	ModulePage     string `mapstructure:"module_page"`
	Nomination     string `mapstructure:"nomination"`
	Spotlight      string `mapstructure:"spotlight"`
	SearchPage     string `mapstructure:"search_page"`
	SearchRow      string `mapstructure:"search_row"`
	InstrumentText string `mapstructure:"instrument_text"`
}

// DownloadConfig holds module download settings
type DownloadConfig struct {
	Path          string `mapstructure:"path"`
	Verify        bool   `mapstructure:"verify"`
	Notifications bool   `mapstructure:"notifications"`
}

// HistoryConfig controls the lookup history database
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console, json
}

var cfg *Config

// GetConfigDir returns the per-user configuration directory following OS conventions
func GetConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName)
}

// GetDBPath returns the database file path
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), AppName+".db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetOverridePath returns the line offset override file path
func GetOverridePath() string {
	if p := Get().Anchors.OverrideFile; p != "" {
		return expandPath(p)
	}
	return filepath.Join(GetConfigDir(), "line-overrides")
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("archive.base_url", "https://modarchive.org")
	v.SetDefault("network.timeout", 60*time.Second)
	v.SetDefault("network.user_agent", AppName)
	v.SetDefault("network.retry_attempts", 3)
	v.SetDefault("network.infinity_retry", false)
	v.SetDefault("network.retry_base_delay", 500*time.Millisecond)
	v.SetDefault("network.retry_max_delay", 30*time.Second)
	v.SetDefault("network.retry_multiplier", 2.0)
	v.SetDefault("anchors.override_enabled", true)
	v.SetDefault("anchors.override_file", "")
	v.SetDefault("markers.module_page", "")
	v.SetDefault("markers.nomination", "")
	v.SetDefault("markers.spotlight", "")
	v.SetDefault("markers.search_page", "")
	v.SetDefault("markers.search_row", "")
	v.SetDefault("markers.instrument_text", "")
	v.SetDefault("downloads.path", "~/Downloads/modules")
	v.SetDefault("downloads.verify", true)
	v.SetDefault("downloads.notifications", false)
	v.SetDefault("history.enabled", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Init initializes the configuration
func Init(cfgFile string) error {
	SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	// Environment variable overrides
	viper.SetEnvPrefix(strings.ToUpper(AppName))
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		_ = viper.Unmarshal(cfg)
		cfg.Downloads.Path = expandPath(cfg.Downloads.Path)
	}
	return cfg
}

// Set sets a configuration value
func Set(key, value string) error {
	viper.Set(key, value)

	// Ensure config directory exists
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
