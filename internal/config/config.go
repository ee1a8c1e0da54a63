package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Tenancy  TenancyConfig  `mapstructure:"tenancy"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	TokenExpiryHours int    `mapstructure:"token_expiry_hours"`
	BcryptCost       int    `mapstructure:"bcrypt_cost"`
}

// TenancyConfig holds multi-tenant resolution configuration
type TenancyConfig struct {
	BaseDomain  string `mapstructure:"base_domain"`
	CacheLookup bool   `mapstructure:"cache_lookup"`
}

// KafkaConfig holds Kafka event source configuration
type KafkaConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Brokers         string `mapstructure:"brokers"`
	SecurityTopic   string `mapstructure:"security_topic"`
	WorkflowTopic   string `mapstructure:"workflow_topic"`
	GroupPrefix     string `mapstructure:"group_prefix"`
	AutoOffsetReset string `mapstructure:"auto_offset_reset"`
}

// PollerConfig holds incident polling configuration
type PollerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	SourceURL       string `mapstructure:"source_url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// ExecutorConfig holds workflow executor configuration
type ExecutorConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CacheConfig holds caching configuration
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DefaultTTL int  `mapstructure:"default_ttl"`
	TenantTTL  int  `mapstructure:"tenant_ttl"`
}

// LoadConfig loads configuration from environment and config files
func LoadConfig() (*Config, error) {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("auth.token_expiry_hours", 24)
	viper.SetDefault("auth.bcrypt_cost", 12)
	viper.SetDefault("tenancy.base_domain", "nodeguard.io")
	viper.SetDefault("tenancy.cache_lookup", true)
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", "localhost:9092")
	viper.SetDefault("kafka.security_topic", "security.events")
	viper.SetDefault("kafka.workflow_topic", "workflow.test")
	viper.SetDefault("kafka.group_prefix", "nodeguard")
	viper.SetDefault("kafka.auto_offset_reset", "latest")
	viper.SetDefault("poller.enabled", false)
	viper.SetDefault("poller.interval_seconds", 30)
	viper.SetDefault("poller.timeout_seconds", 10)
	viper.SetDefault("executor.base_url", "http://localhost:3011/api/v1")
	viper.SetDefault("executor.timeout_seconds", 30)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.default_ttl", 300)
	viper.SetDefault("cache.tenant_ttl", 300)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
