// Package config provides configuration structures and validation for the
// canteen services. It handles environment-based configuration for the HTTP
// server, database connections, the snapshot/receipt message topics, and
// operational parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field covers one
// subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains broker and topic configuration
type KafkaConfig struct {
	Brokers           string
	SnapshotTopic     string // Order-state snapshots for display boards
	ReceiptTopic      string // Durable transaction receipts from the outbox
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the menu catalog
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains receipt outbox configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains capture worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of concurrent capture workers
}

// validate checks all configuration values against minimum requirements.
// Every message names the environment variable so a bad deployment can be
// fixed without reading this file.
func (c *Config) validate() error {
	var problems []string

	set := func(ok bool, envVar string) {
		if !ok {
			problems = append(problems, envVar+" is required")
		}
	}
	positive := func(ok bool, envVar string) {
		if !ok {
			problems = append(problems, envVar+" must be greater than 0")
		}
	}

	positive(c.Server.Port > 0, "SERVER_PORT")
	positive(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT")
	positive(c.Server.ReadTimeout > 0, "SERVER_READ_TIMEOUT")
	positive(c.Server.WriteTimeout > 0, "SERVER_WRITE_TIMEOUT")
	positive(c.Server.IdleTimeout > 0, "SERVER_IDLE_TIMEOUT")

	set(len(c.Kafka.Brokers) > 0, "KAFKA_BROKERS")
	set(c.Kafka.SnapshotTopic != "", "KAFKA_SNAPSHOT_TOPIC")
	set(c.Kafka.ReceiptTopic != "", "KAFKA_RECEIPT_TOPIC")
	set(c.Kafka.ConsumerGroup != "", "KAFKA_CONSUMER_GROUP")
	positive(c.Kafka.MinBytes > 0, "KAFKA_CONSUMER_MIN_BYTES")
	positive(c.Kafka.MaxBytes > 0, "KAFKA_CONSUMER_MAX_BYTES")
	positive(c.Kafka.MaxWait > 0, "KAFKA_CONSUMER_MAX_WAIT")

	set(c.Postgres.URL != "", "POSTGRES_URL")
	positive(c.Postgres.MaxConns > 0, "POSTGRES_MAX_CONNS")
	positive(c.Postgres.MinConns > 0, "POSTGRES_MIN_CONNS")
	positive(c.Postgres.ConnMaxLifetime > 0, "POSTGRES_MAX_CONN_LIFETIME")
	positive(c.Postgres.ConnMaxIdleTime > 0, "POSTGRES_MAX_CONN_IDLE_TIME")

	set(c.MongoDB.URI != "", "MONGO_URI")
	set(c.MongoDB.Database != "", "MONGO_DATABASE")
	positive(c.MongoDB.Timeout > 0, "MONGO_TIMEOUT")
	positive(c.MongoDB.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE")
	positive(c.MongoDB.MinPoolSize > 0, "MONGO_MIN_POOL_SIZE")
	positive(c.MongoDB.MaxConnIdleTime > 0, "MONGO_MAX_CONN_IDLE_TIME")

	positive(c.Outbox.PollingInterval > 0, "OUTBOX_POLLING_INTERVAL")
	positive(c.Outbox.BatchSize > 0, "OUTBOX_BATCH_SIZE")
	positive(c.Outbox.MaxRetryAttempts > 0, "OUTBOX_MAX_RETRY_ATTEMPTS")

	positive(c.WorkerPool.Size > 0, "WORKER_POOL_SIZE")

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	return nil
}
