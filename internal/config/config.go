package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1m", etc.
	UserAgent             string `mapstructure:"user_agent"`
	LogLevel              string `mapstructure:"log_level"`
	SentryDSN             string `mapstructure:"sentry_dsn"`
	Fetch                 struct {
		Attempts    int    `mapstructure:"attempts"`
		Backoff     string `mapstructure:"backoff"` // Go duration string, fixed delay between attempts
		MaxBodySize int64  `mapstructure:"max_body_size"`
	} `mapstructure:"fetch"`
	TVSubtitles struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"tvsubtitles"`
	OpenSubtitles struct {
		Enabled    bool   `mapstructure:"enabled"`
		Endpoint   string `mapstructure:"endpoint"`
		UserAgent  string `mapstructure:"user_agent"`
		ReplyLimit int    `mapstructure:"reply_limit"`
	} `mapstructure:"opensubtitles"`
	Cache struct {
		Size int `mapstructure:"size"` // Maximum number of entries, 0 keeps everything for the process lifetime
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Progress and per-file errors go to stderr, stdout stays free for the help text
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("proxy_connection_string", "")
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("log_level", "info")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("fetch.attempts", 3)
	v.SetDefault("fetch.backoff", "3s")
	v.SetDefault("fetch.max_body_size", 1024*1024)
	v.SetDefault("tvsubtitles.base_url", "http://www.tvsubtitles.net")
	v.SetDefault("opensubtitles.enabled", false)
	v.SetDefault("opensubtitles.endpoint", "http://api.opensubtitles.org/xml-rpc")
	v.SetDefault("opensubtitles.user_agent", "EpisodeSubs v1")
	v.SetDefault("opensubtitles.reply_limit", 500)
	v.SetDefault("cache.size", 0)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", "localhost")
	v.SetDefault("metrics.port", 9090)
}

// Duration parses a Go duration string, falling back to def (and logging a
// warning) when the value is empty or invalid.
func Duration(name, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		logger.Warn().Err(err).Str(name, value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return parsed
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
