package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig     `mapstructure:"server"`
	Storage      StorageConfig    `mapstructure:"storage"`
	TTS          TTSConfig        `mapstructure:"tts"`
	Processing   ProcessingConfig `mapstructure:"processing"`
	Feed         FeedConfig       `mapstructure:"feed"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting"`
	Security     SecurityConfig   `mapstructure:"security"`
	Logging      LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// StorageConfig contains episode store settings
type StorageConfig struct {
	MetadataFile    string        `mapstructure:"metadata_file"`
	AudioDir        string        `mapstructure:"audio_dir"`
	MaxEpisodes     int           `mapstructure:"max_episodes"`
	LockRetries     int           `mapstructure:"lock_retries"`
	LockRetryDelay  time.Duration `mapstructure:"lock_retry_delay"`
	TempMaxAge      time.Duration `mapstructure:"temp_max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	OrphanGrace     time.Duration `mapstructure:"orphan_grace"`
}

// TTSConfig contains speech synthesis provider settings
type TTSConfig struct {
	Provider          string        `mapstructure:"provider"`
	APIKey            string        `mapstructure:"api_key"`
	CredentialsFile   string        `mapstructure:"credentials_file"`
	Endpoint          string        `mapstructure:"endpoint"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	RegularLimit      int           `mapstructure:"regular_limit"`
	LongFormLimit     int           `mapstructure:"long_form_limit"`
	VoicePreset       string        `mapstructure:"voice_preset"`
	LanguageCode      string        `mapstructure:"language_code"`
}

// ProcessingConfig contains audio tool settings
type ProcessingConfig struct {
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout"`
}

// FeedConfig contains podcast feed settings
type FeedConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	PodcastUUID   string        `mapstructure:"podcast_uuid"`
	Title         string        `mapstructure:"title"`
	Description   string        `mapstructure:"description"`
	Author        string        `mapstructure:"author"`
	Email         string        `mapstructure:"email"`
	Language      string        `mapstructure:"language"`
	ImageURL      string        `mapstructure:"image_url"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	MaxItems      int           `mapstructure:"max_items"`
	WatchMetadata bool          `mapstructure:"watch_metadata"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Groups  map[string]int `mapstructure:"groups"`
	Burst   int            `mapstructure:"burst"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	EnableCORS  bool     `mapstructure:"enable_cors"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	CORSMethods []string `mapstructure:"cors_methods"`
	CORSHeaders []string `mapstructure:"cors_headers"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
