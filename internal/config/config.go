package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	pkglogger "github.com/sincelove/chat-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config is the resolved application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Profile       ProfileConfig       `yaml:"profile"`
	CORS          CORSConfig          `yaml:"cors"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Env                string `yaml:"env"`
	APIKey             string `yaml:"api_key"`
	Port               int    `yaml:"port"`
	ReadTimeout        int    `yaml:"read_timeout"`          // seconds
	WriteTimeout       int    `yaml:"write_timeout"`         // seconds
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"` // per client IP, 0 disables
}

// DatabaseConfig MySQL settings
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	Port            int    `yaml:"port"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Enabled  bool   `yaml:"enabled"`
}

// ElasticsearchConfig search index settings
type ElasticsearchConfig struct {
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
	Addresses []string `yaml:"addresses"`
	Enabled   bool     `yaml:"enabled"`
}

// ProfileConfig upstream user profile service settings
type ProfileConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Timeout  int    `yaml:"timeout"`   // seconds
	CacheTTL int    `yaml:"cache_ttl"` // seconds, 0 disables the cache
}

// CORSConfig allowed origins, comma separated
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// GetDSN builds the MySQL DSN
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// IsDevelopment reports whether the server runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development", "test":
		return true
	}
	return false
}

// Load reads a YAML config file and applies environment overrides.
// A missing file is not an error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		pkglogger.Warn("config file %s not found, using defaults and environment", path)
	default:
		return nil, fmt.Errorf("config read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Env:                "local",
			Port:               3000,
			ReadTimeout:        15,
			WriteTimeout:       15,
			RateLimitPerMinute: 120,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "root",
			DBName:          "chat",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
		Elasticsearch: ElasticsearchConfig{
			Index: "chat_messages",
		},
		Profile: ProfileConfig{
			Timeout: 10,
		},
		CORS: CORSConfig{
			AllowOrigins: "*",
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "APP_ENV")
	setString(&cfg.Server.APIKey, "SERVER_API_KEY")
	setInt(&cfg.Server.Port, "PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setBool(&cfg.Redis.Enabled, "REDIS_ENABLED")

	setBool(&cfg.Elasticsearch.Enabled, "ELASTICSEARCH_ENABLED")
	if v := os.Getenv("ELASTICSEARCH_ADDRESSES"); v != "" {
		cfg.Elasticsearch.Addresses = splitAndTrim(v)
	}

	// names kept from the user service deployment
	setString(&cfg.Profile.BaseURL, "SINCELOVE_API")
	setString(&cfg.Profile.APIKey, "API_KEY")
	setInt(&cfg.Profile.CacheTTL, "PROFILE_CACHE_TTL")

	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Profile.BaseURL == "" {
		return fmt.Errorf("config: profile.base_url (SINCELOVE_API) is required")
	}
	if c.Profile.Timeout <= 0 {
		c.Profile.Timeout = 10
	}
	if !strings.HasSuffix(c.Profile.BaseURL, "/") {
		c.Profile.BaseURL += "/"
	}
	return nil
}

// LogResolved prints the effective configuration without secrets
func LogResolved(cfg *Config) {
	pkglogger.Info("config: env=%s port=%d db=%s@%s:%d/%s redis=%v(%s:%d) es=%v%v profile=%s cache_ttl=%ds",
		cfg.Server.Env, cfg.Server.Port,
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName,
		cfg.Redis.Enabled, cfg.Redis.Host, cfg.Redis.Port,
		cfg.Elasticsearch.Enabled, cfg.Elasticsearch.Addresses,
		cfg.Profile.BaseURL, cfg.Profile.CacheTTL,
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitAndTrim(s string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
