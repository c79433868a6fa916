package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Storage: databaseURL selects Postgres, dataDir selects the file store,
	// neither selects the in-memory store.
	DatabaseURL string `yaml:"databaseURL"`
	DataDir     string `yaml:"dataDir"`

	// Sessions: jwtSecret selects stateless JWTs (revocable when Redis is
	// also set), redisAddr alone selects opaque Redis sessions.
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	JWTSecret     string `yaml:"jwtSecret"`
	SessionTTL    string `yaml:"sessionTTL"`

	// Chat completion backend. The API key lives here, server-side only.
	ChatBaseURL      string  `yaml:"chatBaseURL"`
	ChatAPIKey       string  `yaml:"chatAPIKey"`
	ChatModel        string  `yaml:"chatModel"`
	ChatTemperature  float64 `yaml:"chatTemperature"`
	ChatMaxTokens    int     `yaml:"chatMaxTokens"`
	ChatHistoryLimit int     `yaml:"chatHistoryLimit"`

	SignupRateLimitPerMinute int `yaml:"signupRateLimitPerMinute"`
	LoginRateLimitPerMinute  int `yaml:"loginRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
	}
	if v := os.Getenv("CHAT_BASE_URL"); v != "" {
		cfg.ChatBaseURL = v
	}
	if v := os.Getenv("CHAT_API_KEY"); v != "" {
		cfg.ChatAPIKey = v
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.ChatModel = v
	}
	if v := os.Getenv("SIGNUP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SignupRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.ChatModel == "" {
		cfg.ChatModel = "deepseek-chat"
	}
	if cfg.ChatTemperature == 0 {
		cfg.ChatTemperature = 0.7
	}
	if cfg.ChatMaxTokens == 0 {
		cfg.ChatMaxTokens = 250
	}
	if cfg.ChatHistoryLimit == 0 {
		cfg.ChatHistoryLimit = 12
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.ChatBaseURL) == "" {
		return errors.New("config: chatBaseURL is required (set in config.yaml or CHAT_BASE_URL)")
	}
	if strings.TrimSpace(cfg.ChatAPIKey) == "" {
		return errors.New("config: chatAPIKey is required (set in config.yaml or CHAT_API_KEY)")
	}
	if cfg.SignupRateLimitPerMinute < 0 || cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if _, err := ParseSessionTTL(cfg.SessionTTL); err != nil {
		return err
	}
	return nil
}

// ParseSessionTTL parses the optional session TTL duration string.
func ParseSessionTTL(ttl string) (time.Duration, error) {
	if ttl == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttl)
	if err != nil {
		return 0, fmt.Errorf("config: invalid sessionTTL duration: %w", err)
	}
	return dur, nil
}
