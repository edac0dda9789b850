package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// maxPartSize is the largest file part the network serves in one request
const maxPartSize = 1024 * 1024

type Config struct {
	APIID       int    `koanf:"api_id"`
	APIHash     string `koanf:"api_hash"`
	Phone       string `koanf:"phone"`
	SessionPath string `koanf:"session_path"`
	StoragePath string `koanf:"storage_path"`

	HTTPHost  string `koanf:"http_host"`
	HTTPPort  string `koanf:"http_port"`
	PublicURL string `koanf:"public_url"`

	FeedLimit        int     `koanf:"feed_limit"`
	GroupExpandLimit int     `koanf:"group_expand_limit"`
	MediaChunkSize   int     `koanf:"media_chunk_size"`
	RateLimit        float64 `koanf:"rate_limit"`
	RateBurst        int     `koanf:"rate_burst"`

	TelegramBotToken string  `koanf:"telegram_bot_token"`
	AllowedUsers     []int64 `koanf:"allowed_users"`

	AppEnv   AppEnv `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`
}

var defaults = map[string]any{
	"session_path":       "./data/session.json",
	"storage_path":       "./data",
	"http_host":          "127.0.0.1",
	"http_port":          "9504",
	"feed_limit":         25,
	"group_expand_limit": 10,
	"media_chunk_size":   32768,
	"rate_limit":         10.0,
	"rate_burst":         10,
	"app_env":            "production",
	"log_level":          "info",
}

func Load() (*Config, error) {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
	if !k.Exists("public_url") {
		k.Set("public_url", fmt.Sprintf("http://%s", net.JoinHostPort(k.String("http_host"), k.String("http_port"))))
	}

	// allowed_users may be a comma-separated string, parsed by hand
	rawUsers := k.Get("allowed_users")
	k.Delete("allowed_users")

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	cfg.AllowedUsers = allowedUsers(rawUsers)

	appEnv, err := ParseAppEnv(k.String("app_env"))
	if err != nil {
		appEnv = AppEnvProduction
	}
	cfg.AppEnv = appEnv

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields the gateway cannot start without
func (c *Config) Validate() error {
	if c.APIID <= 0 || c.APIHash == "" {
		return errors.ErrMissingAPICredentials
	}
	if c.MediaChunkSize <= 0 || c.MediaChunkSize%1024 != 0 || maxPartSize%c.MediaChunkSize != 0 {
		return oops.
			With("media_chunk_size", c.MediaChunkSize).
			Errorf("media_chunk_size must divide %d and be a multiple of 1024", maxPartSize)
	}
	if c.FeedLimit <= 0 {
		return oops.With("feed_limit", c.FeedLimit).Errorf("feed_limit must be positive")
	}
	return nil
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTPHost, c.HTTPPort)
}

// Level parses LogLevel, falling back to info
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func allowedUsers(raw any) []int64 {
	switch v := raw.(type) {
	case string:
		return ParseAllowedUsers(v)
	case []any:
		return lo.FilterMap(v, func(item any, _ int) (int64, bool) {
			switch val := item.(type) {
			case int64:
				return val, true
			case int:
				return int64(val), true
			case float64:
				return int64(val), true
			case string:
				ids := ParseAllowedUsers(val)
				return lo.FirstOr(ids, 0), len(ids) == 1
			default:
				return 0, false
			}
		})
	default:
		return []int64{}
	}
}

// ParseAllowedUsers parses comma-separated user IDs string into []int64
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
