package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"gamerec/pkg/database"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "GAMEREC_CONFIG"

// DefaultConfigPaths are searched in order when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	GRPC      GRPCConfig      `koanf:"grpc"`
	Sync      SyncConfig      `koanf:"sync"`
	Data      DataConfig      `koanf:"data"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Addr           string   `koanf:"addr" validate:"required"`
	TrustedProxies []string `koanf:"trusted_proxies"`
	RateLimitRPS   float64  `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int      `koanf:"rate_limit_burst" validate:"gte=0"`
	EnableAdmin    bool     `koanf:"enable_admin"`
}

type GRPCConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

// SyncConfig configures the raw TCP event stream. An empty address disables it.
type SyncConfig struct {
	TCPAddr string `koanf:"tcp_addr"`
}

type DataConfig struct {
	Source         string        `koanf:"source" validate:"oneof=csv sqlite"`
	GamesPath      string        `koanf:"games_path" validate:"required_if=Source csv"`
	SimilarityPath string        `koanf:"similarity_path" validate:"required_if=Source csv"`
	LoadRetries    int           `koanf:"load_retries" validate:"gte=0,lte=20"`
	RetryInterval  time.Duration `koanf:"retry_interval" validate:"gte=0"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type RecommendConfig struct {
	Limit       int    `koanf:"limit" validate:"gte=1,lte=50"`
	MatchMode   string `koanf:"match_mode" validate:"oneof=exact contains"`
	Sampling    string `koanf:"sampling" validate:"oneof=random daily seeded"`
	Seed        uint64 `koanf:"seed"`
	DefaultGame string `koanf:"default_game"`
	WikiBaseURL string `koanf:"wiki_base_url" validate:"required,url"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console auto"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			TrustedProxies: []string{"127.0.0.1"},
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		GRPC: GRPCConfig{Addr: ":9090"},
		Sync: SyncConfig{TCPAddr: ":7070"},
		Data: DataConfig{
			Source:         "csv",
			GamesPath:      "data/Games_dataset.csv",
			SimilarityPath: "data/sim_matrix.csv",
			LoadRetries:    3,
			RetryInterval:  500 * time.Millisecond,
		},
		Database: DatabaseConfig{Path: database.DefaultPath()},
		Recommend: RecommendConfig{
			Limit:       5,
			MatchMode:   "exact",
			Sampling:    "random",
			DefaultGame: "7 Billion Humans",
			WikiBaseURL: "https://en.wikipedia.org",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// envMappings maps GAMEREC_* variables (prefix stripped, lowercased) to keys.
var envMappings = map[string]string{
	"addr":             "server.addr",
	"trusted_proxies":  "server.trusted_proxies",
	"rate_limit_rps":   "server.rate_limit_rps",
	"rate_limit_burst": "server.rate_limit_burst",
	"enable_admin":     "server.enable_admin",
	"grpc_addr":        "grpc.addr",
	"sync_tcp_addr":    "sync.tcp_addr",
	"data_source":      "data.source",
	"games_path":       "data.games_path",
	"similarity_path":  "data.similarity_path",
	"load_retries":     "data.load_retries",
	"retry_interval":   "data.retry_interval",
	"db_path":          "database.path",
	"limit":            "recommend.limit",
	"match_mode":       "recommend.match_mode",
	"sampling":         "recommend.sampling",
	"seed":             "recommend.seed",
	"default_game":     "recommend.default_game",
	"wiki_base_url":    "recommend.wiki_base_url",
	"log_level":        "logging.level",
	"log_format":       "logging.format",
}

var sliceConfigPaths = []string{"server.trusted_proxies"}

// LoadConfig layers defaults, the optional YAML file and GAMEREC_*
// environment variables, then validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("GAMEREC_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "GAMEREC_"))
	// returning "" drops variables we do not know, e.g. GAMEREC_CONFIG
	return envMappings[key]
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitSlices turns comma separated env values into lists.
func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
