package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all configuration for Arogya
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Vaccines  VaccinesConfig  `mapstructure:"vaccines"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// BackendConfig holds REST backend settings
type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Platform     string        `mapstructure:"platform"` // android, ios, web
	Timeout      int           `mapstructure:"timeout"`  // seconds
	RetryCount   int           `mapstructure:"retry_count"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
	Burst        int           `mapstructure:"burst"`
	Breaker      BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig holds circuit breaker thresholds
type BreakerConfig struct {
	MaxFailures uint32 `mapstructure:"max_failures"`
	OpenSeconds int    `mapstructure:"open_seconds"`
}

// StorageConfig holds local persistence settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// ServerConfig holds local gateway settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

// RemindersConfig holds local reminder scheduling settings
type RemindersConfig struct {
	Timezone    string `mapstructure:"timezone"`
	DailyCron   string `mapstructure:"daily_cron"`  // maintenance pass
	DigestCron  string `mapstructure:"digest_cron"` // vaccine digest, empty disables
	DefaultTime string `mapstructure:"default_time"`
}

// VaccinesConfig holds upcoming-dose classification settings
type VaccinesConfig struct {
	DueSoonDays     int  `mapstructure:"due_soon_days"`
	DedupeByVaccine bool `mapstructure:"dedupe_by_vaccine"`
}

// ChannelsConfig holds notification delivery settings
type ChannelsConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

// TelegramConfig holds Telegram bot settings
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// DiscordConfig holds Discord bot settings
type DiscordConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// platformBaseURLs mirrors how each client reaches a backend on the developer host.
var platformBaseURLs = map[string]string{
	"android": "http://10.0.2.2:8000",
	"ios":     "http://127.0.0.1:8000",
	"web":     "http://127.0.0.1:8000",
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v, err := newViper(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(configPath, dataDir string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = GetEnvDefault("AROGYA_STORAGE_DATA_DIR", DefaultDataDir())
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "arogya.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "arogya.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (AROGYA_BACKEND_BASE_URL, AROGYA_SERVER_PORT, etc.)
	v.SetEnvPrefix("AROGYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Watch reloads the config file on change and passes the fresh config to onChange.
// It is a no-op when no config file exists.
func Watch(configPath, dataDir string, logger *zap.Logger, onChange func(*Config)) error {
	v, err := newViper(configPath, dataDir)
	if err != nil {
		return err
	}
	if v.ConfigFileUsed() == "" {
		return nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logger.Warn("Ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("Config reloaded", zap.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func setDefaults(v *viper.Viper) {
	// Backend defaults
	v.SetDefault("backend.platform", "android")
	v.SetDefault("backend.timeout", 15)
	v.SetDefault("backend.retry_count", 2)
	v.SetDefault("backend.rate_limit_rps", 10)
	v.SetDefault("backend.burst", 5)
	v.SetDefault("backend.breaker.max_failures", 5)
	v.SetDefault("backend.breaker.open_seconds", 30)

	// Server defaults
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8787)

	// Reminder defaults
	v.SetDefault("reminders.timezone", "Local")
	v.SetDefault("reminders.daily_cron", "5 0 * * *")
	v.SetDefault("reminders.digest_cron", "0 9 * * *")
	v.SetDefault("reminders.default_time", "10:00")

	// Vaccine defaults
	v.SetDefault("vaccines.due_soon_days", 7)
	v.SetDefault("vaccines.dedupe_by_vaccine", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", true)
}

// DefaultDataDir is where data lives when neither --data nor AROGYA_STORAGE_DATA_DIR is set.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "arogya")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "arogya")
}

// loadEnvOverrides applies env vars viper cannot bind on its own and the legacy aliases
func loadEnvOverrides(cfg *Config) {
	if url := ResolveEnvWithAliases("AROGYA_BACKEND_BASE_URL"); url != "" {
		cfg.Backend.BaseURL = url
	}
	cfg.Backend.Platform = GetEnvDefault("AROGYA_BACKEND_PLATFORM", cfg.Backend.Platform)

	if port := os.Getenv("AROGYA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if token := ResolveEnvWithAliases("AROGYA_CHANNELS_TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Channels.Telegram.BotToken = token
	}
	if chatID := os.Getenv("AROGYA_CHANNELS_TELEGRAM_CHAT_ID"); chatID != "" {
		if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.Channels.Telegram.ChatID = id
		}
	}
	if token := ResolveEnvWithAliases("AROGYA_CHANNELS_DISCORD_TOKEN"); token != "" {
		cfg.Channels.Discord.Token = token
	}
}

func validate(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		url, ok := platformBaseURLs[strings.ToLower(cfg.Backend.Platform)]
		if !ok {
			return fmt.Errorf("backend.platform %q is not one of android, ios, web", cfg.Backend.Platform)
		}
		cfg.Backend.BaseURL = url
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")

	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 15
	}

	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("reminders.timezone: %w", err)
	}

	if cfg.Vaccines.DueSoonDays <= 0 {
		cfg.Vaccines.DueSoonDays = 7
	}

	if cfg.Channels.Telegram.Enabled && (cfg.Channels.Telegram.BotToken == "" || cfg.Channels.Telegram.ChatID == 0) {
		return fmt.Errorf("channels.telegram requires bot_token and chat_id")
	}
	if cfg.Channels.Discord.Enabled && (cfg.Channels.Discord.Token == "" || cfg.Channels.Discord.ChannelID == "") {
		return fmt.Errorf("channels.discord requires token and channel_id")
	}

	return nil
}

// BaseURLForPlatform returns the backend root a client on platform would use.
func BaseURLForPlatform(platform string) (string, bool) {
	url, ok := platformBaseURLs[strings.ToLower(platform)]
	return url, ok
}

// Location returns the time zone reminders and "today" are computed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Reminders.Timezone == "" || c.Reminders.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Reminders.Timezone)
}

// RequestTimeout returns the backend timeout as a duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}
