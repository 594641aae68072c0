package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. GRIDRISK_SCORING_WORKERS.
const EnvPrefix = "GRIDRISK"

// LoadConfig loads the configuration from file and environment variables.
// configFile may be empty, in which case config.yaml is searched in
// /etc/gridrisk/ and the working directory. A .env file in the working
// directory is applied to the environment first.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.ErrInvalidConfiguration("failed to read .env").WithCause(err)
	}

	v := viper.New()
	setDefaults(v)

	// Load from config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/gridrisk/")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfiguration("failed to read config file").WithCause(err)
		}
	}

	// Load from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfiguration("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gridrisk")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "gridrisk")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 60)
	v.SetDefault("database.max_conn_idle_time", 10)
	v.SetDefault("database.query_timeout", 30)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.snapshot_ttl", int(constants.SnapshotCacheTTL.Seconds()))

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.profile_topic", constants.DefaultProfileTopic)
	v.SetDefault("kafka.batch_timeout", 50)
	v.SetDefault("kafka.rescore_topic", constants.DefaultRescoreTopic)
	v.SetDefault("kafka.consumer_group", "gridrisk-rescore")

	v.SetDefault("search.enabled", false)
	v.SetDefault("search.addresses", []string{"http://localhost:9200"})
	v.SetDefault("search.username", "")
	v.SetDefault("search.password", "")
	v.SetDefault("search.index", constants.DefaultProfileIndex)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "http://localhost:8200")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_path", "gridrisk/database")
	v.SetDefault("vault.password_key", "password")

	v.SetDefault("scoring.tables_path", "")
	v.SetDefault("scoring.watch_tables", false)
	v.SetDefault("scoring.workers", 0)
	v.SetDefault("scoring.batch_timeout", int(constants.DefaultBatchTimeout.Seconds()))
	v.SetDefault("scoring.max_batch_size", 1000)
	v.SetDefault("scoring.include_nationality", false)
	v.SetDefault("scoring.persist_profiles", true)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.distributed", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "gridrisk")
	v.SetDefault("tracing.sample_ratio", 1.0)
}
