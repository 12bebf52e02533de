package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the worker and its tooling
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Broker   BrokerConfig   `mapstructure:"broker"`
	Database DatabaseConfig `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g., "local", "prod"
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// BrokerConfig selects the inbound message channel the supervisor listens on.
type BrokerConfig struct {
	Source           string        `mapstructure:"source"`  // "redis" or "kafka"
	Channel          string        `mapstructure:"channel"` // redis pub/sub channel name
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// WorkerConfig carries the shared secret gating server-to-server endpoints.
type WorkerConfig struct {
	Secret string `mapstructure:"secret"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults (12-Factor App: Dev/Prod Parity)
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.development", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "ticker_updates")
	v.SetDefault("kafka.group_id", "risk-worker-group")

	v.SetDefault("broker.source", "redis")
	v.SetDefault("broker.channel", "ticker_updates")
	v.SetDefault("broker.reconnect_backoff", 5*time.Second)

	v.SetDefault("database.dsn", "")

	v.SetDefault("provider.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.timeout", 10*time.Second)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("worker.secret", "")

	// 3. Configure Viper to read Environment Variables
	// Maps dot-notation to underscores (e.g., "broker.channel" -> "BROKER_CHANNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Explicitly Bind Env Vars to Keys
	// Crucial for Viper to map flat Env Vars (APP_PORT) to nested structs (App.Port)
	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "logger.level", "logger.development")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "kafka.brokers", "kafka.topic", "kafka.group_id")
	bindEnv(v, "broker.source", "broker.channel", "broker.reconnect_backoff")
	bindEnv(v, "database.dsn")
	bindEnv(v, "provider.base_url", "provider.timeout")
	bindEnv(v, "cache.enabled", "cache.ttl")
	bindEnv(v, "worker.secret")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	// 6. Basic Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the worker cannot start with.
func (c *Config) Validate() error {
	switch c.Broker.Source {
	case "redis", "kafka":
	default:
		return fmt.Errorf("broker source must be \"redis\" or \"kafka\", got %q", c.Broker.Source)
	}
	if c.Broker.Channel == "" {
		return fmt.Errorf("broker channel cannot be empty")
	}
	if c.Broker.Source == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required (set DATABASE_DSN)")
	}
	if c.Worker.Secret == "" {
		return fmt.Errorf("worker secret is required (set WORKER_SECRET)")
	}
	if c.Broker.ReconnectBackoff <= 0 {
		return fmt.Errorf("broker reconnect backoff must be positive")
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
