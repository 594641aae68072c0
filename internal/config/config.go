package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/turtacn/gridrisk/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Search    SearchConfig    `mapstructure:"search"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	GRPCPort     int      `mapstructure:"grpc_port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
	Environment  string   `mapstructure:"environment"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// IsProduction reports whether debug surfaces (pprof, gin debug mode) must stay off.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"`  // in minutes
	MaxConnIdleTime int    `mapstructure:"max_conn_idle_time"` // in minutes
	QueryTimeout    int    `mapstructure:"query_timeout"`      // in seconds
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// GetURL renders the connection string in URL form, as pgxpool expects.
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
	SnapshotTTL  int      `mapstructure:"snapshot_ttl"` // in seconds
}

type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	ProfileTopic  string   `mapstructure:"profile_topic"`
	BatchTimeout  int      `mapstructure:"batch_timeout"` // in milliseconds
	RescoreTopic  string   `mapstructure:"rescore_topic"` // empty disables the consumer
	ConsumerGroup string   `mapstructure:"consumer_group"`
}

type SearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type VaultConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Address     string `mapstructure:"address"`
	Token       string `mapstructure:"token"`
	MountPath   string `mapstructure:"mount_path"`
	SecretPath  string `mapstructure:"secret_path"`
	PasswordKey string `mapstructure:"password_key"`
}

// ScoringConfig controls the scoring engine and the batch worker pool.
type ScoringConfig struct {
	TablesPath         string `mapstructure:"tables_path"` // empty uses built-in tables
	WatchTables        bool   `mapstructure:"watch_tables"`
	Workers            int    `mapstructure:"workers"`       // 0 means one per CPU
	BatchTimeout       int    `mapstructure:"batch_timeout"` // in seconds
	MaxBatchSize       int    `mapstructure:"max_batch_size"`
	IncludeNationality bool   `mapstructure:"include_nationality"`
	PersistProfiles    bool   `mapstructure:"persist_profiles"`
}

// WorkerCount resolves the configured pool size.
func (c *ScoringConfig) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// BatchTimeoutDuration returns the batch deadline applied when the caller sets none.
func (c *ScoringConfig) BatchTimeoutDuration() time.Duration {
	return time.Duration(c.BatchTimeout) * time.Second
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	Distributed       bool    `mapstructure:"distributed"` // share budgets across replicas through redis
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return errors.ErrInvalidConfiguration(fmt.Sprintf("server.port %d out of range", c.Server.Port))
	case c.Scoring.Workers < 0:
		return errors.ErrInvalidConfiguration("scoring.workers must not be negative")
	case c.Scoring.BatchTimeout <= 0:
		return errors.ErrInvalidConfiguration("scoring.batch_timeout must be positive")
	case c.Scoring.MaxBatchSize <= 0:
		return errors.ErrInvalidConfiguration("scoring.max_batch_size must be positive")
	case c.Scoring.WatchTables && c.Scoring.TablesPath == "":
		return errors.ErrInvalidConfiguration("scoring.watch_tables requires scoring.tables_path")
	case c.Redis.Enabled && len(c.Redis.Addresses) == 0:
		return errors.ErrInvalidConfiguration("redis.addresses is empty")
	case c.Kafka.Enabled && len(c.Kafka.Brokers) == 0:
		return errors.ErrInvalidConfiguration("kafka.brokers is empty")
	case c.Search.Enabled && len(c.Search.Addresses) == 0:
		return errors.ErrInvalidConfiguration("search.addresses is empty")
	case c.Vault.Enabled && c.Vault.Address == "":
		return errors.ErrInvalidConfiguration("vault.address is empty")
	case c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0:
		return errors.ErrInvalidConfiguration("rate_limit.requests_per_second must be positive")
	case c.RateLimit.Distributed && !c.Redis.Enabled:
		return errors.ErrInvalidConfiguration("rate_limit.distributed requires redis.enabled")
	}
	return nil
}

//Personal.AI order the ending
