package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// EnvPrefix is prepended to every environment override, e.g. TEXTCAST_SERVER_PORT.
const EnvPrefix = "TEXTCAST"

// DefaultConfigFile is read when present; defaults and env vars apply otherwise.
const DefaultConfigFile = "./config/settings.yaml"

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = load(DefaultConfigFile)
	})

	return initErr
}

// InitWithFile is Init with an explicit config file path. An empty path
// falls back to DefaultConfigFile.
func InitWithFile(configFile string) error {
	if configFile == "" {
		return Init()
	}
	once.Do(func() {
		initErr = load(configFile)
	})

	return initErr
}

// load registers defaults, env overrides and the optional config file, then
// validates the result.
func load(configFile string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configPath := filepath.Clean(configFile)
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	}

	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Validate checks the ranges the core depends on.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Storage.MaxEpisodes < 1 {
		return apperrors.ConfigError("storage.max_episodes", "must be at least 1")
	}
	if c.Storage.LockRetries < 1 {
		return apperrors.ConfigError("storage.lock_retries", "must be at least 1")
	}
	if c.Storage.MetadataFile == "" {
		return apperrors.ConfigError("storage.metadata_file", "must be set")
	}
	if c.Storage.AudioDir == "" {
		return apperrors.ConfigError("storage.audio_dir", "must be set")
	}
	if c.TTS.RegularLimit < 100 {
		return apperrors.ConfigError("tts.regular_limit", "must be at least 100")
	}
	if c.TTS.LongFormLimit < c.TTS.RegularLimit {
		return apperrors.ConfigError("tts.long_form_limit", "must not be below tts.regular_limit")
	}
	switch c.TTS.Provider {
	case "google", "none":
	default:
		return apperrors.ConfigError("tts.provider", fmt.Sprintf("unknown provider %q", c.TTS.Provider))
	}

	// Auto-correct values that have a safe fallback
	if c.Feed.MaxItems <= 0 {
		c.Feed.MaxItems = c.Storage.MaxEpisodes
	}
	if c.TTS.RetryAttempts < 0 {
		c.TTS.RetryAttempts = 0
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Minute)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_body_bytes", 10485760)

	// Storage defaults
	viper.SetDefault("storage.metadata_file", "./data/episodes.json")
	viper.SetDefault("storage.audio_dir", "./data/audio")
	viper.SetDefault("storage.max_episodes", 25)
	viper.SetDefault("storage.lock_retries", 10)
	viper.SetDefault("storage.lock_retry_delay", 100*time.Millisecond)
	viper.SetDefault("storage.temp_max_age", 1*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 15*time.Minute)
	viper.SetDefault("storage.orphan_grace", 2*time.Minute)

	// TTS defaults
	viper.SetDefault("tts.provider", "google")
	viper.SetDefault("tts.endpoint", "https://texttospeech.googleapis.com/v1")
	viper.SetDefault("tts.timeout", 60*time.Second)
	viper.SetDefault("tts.retry_attempts", 3)
	viper.SetDefault("tts.retry_delay", 1*time.Second)
	viper.SetDefault("tts.requests_per_second", 5.0)
	viper.SetDefault("tts.regular_limit", 4500)
	viper.SetDefault("tts.long_form_limit", 1000000)
	viper.SetDefault("tts.voice_preset", "neutral-wavenet")
	viper.SetDefault("tts.language_code", "en-US")

	// Processing defaults
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.ffmpeg_timeout", 5*time.Minute)

	// Feed defaults
	viper.SetDefault("feed.base_url", "http://localhost:3000")
	viper.SetDefault("feed.podcast_uuid", "textcast")
	viper.SetDefault("feed.title", "Textcast")
	viper.SetDefault("feed.description", "Articles and documents converted to audio")
	viper.SetDefault("feed.author", "Textcast")
	viper.SetDefault("feed.email", "")
	viper.SetDefault("feed.language", "en-us")
	viper.SetDefault("feed.image_url", "")
	viper.SetDefault("feed.cache_ttl", 5*time.Minute)
	viper.SetDefault("feed.max_items", 25)
	viper.SetDefault("feed.watch_metadata", true)

	// Rate limiting defaults (requests per minute per client)
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.burst", 10)
	viper.SetDefault("rate_limiting.groups", map[string]int{
		"feed":      120,
		"audio":     120,
		"synthesis": 6,
		"default":   60,
	})

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.cors_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors_headers", []string{"Content-Type", "Authorization", "Range"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
