package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/internal/storage"
)

type (
	// Config holds configuration settings for the plan execution service
	Config struct {
		// API Server
		APIHost      string
		APIPort      int
		LogLevel     string
		MaxBodyBytes int64

		// Collaborators
		Redis      storage.RedisConfig
		BlobURL    string
		BlobPrefix string

		// Execution
		Limits          state.Limits
		ShutdownTimeout time.Duration
	}
)

const (
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAPIPort  = 8080
	DefaultAPIHost  = "0.0.0.0"
	DefaultLogLevel = "info"
	DefaultBodySize = int64(1 << 20)
	MaxBodySize     = int64(1 << 30)
	MaxTCPPort      = 65535
	DefaultRedisDB  = 0
	MaxRedisDB      = 15

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "blockplan"
	DefaultBlobURL       = "mem://"

	MaxStackDepth     = 10_000
	MaxLoopIterations = 100_000_000
	MaxSleepMillis    = int64(24 * time.Hour / time.Millisecond)
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidStackDepth    = errors.New("max stack depth must be positive")
	ErrInvalidLoopIteration = errors.New(
		"max loop iterations must be positive",
	)
	ErrInvalidMaxSleep = errors.New("max sleep must be positive")
	ErrInvalidRedisDB  = errors.New("invalid redis database")
	ErrInvalidBodySize = errors.New("max body bytes must be positive")
)

var logLevels = []string{"debug", "info", "warn", "error"}

// NewDefaultConfig creates a configuration with sensible defaults for the
// API server, collaborators, and execution limits
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:      DefaultAPIPort,
		APIHost:      DefaultAPIHost,
		LogLevel:     DefaultLogLevel,
		MaxBodyBytes: DefaultBodySize,
		Redis: storage.RedisConfig{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
		BlobURL:         DefaultBlobURL,
		Limits:          state.DefaultLimits(),
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	LoadRedisConfigFromEnv(&c.Redis)

	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if blobURL := os.Getenv("BLOB_URL"); blobURL != "" {
		c.BlobURL = blobURL
	}
	if blobPrefix := os.Getenv("BLOB_PREFIX"); blobPrefix != "" {
		c.BlobPrefix = blobPrefix
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_BODY_BYTES", &c.MaxBodyBytes, 0, MaxBodySize,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_STACK_DEPTH", &c.Limits.MaxStackDepth, 0, MaxStackDepth,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_LOOP_ITERATIONS", &c.Limits.MaxLoopIterations,
		0, MaxLoopIterations,
	); err != nil {
		return err
	}

	sleepMS := c.Limits.MaxSleep.Milliseconds()
	if err := loadEnvInt(
		"MAX_SLEEP", &sleepMS, 0, MaxSleepMillis,
	); err != nil {
		return err
	}
	c.Limits.MaxSleep = time.Duration(sleepMS) * time.Millisecond

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.MaxBodyBytes <= 0 {
		return ErrInvalidBodySize
	}

	if c.Redis.DB < 0 || c.Redis.DB > MaxRedisDB {
		return fmt.Errorf("%w: %d", ErrInvalidRedisDB, c.Redis.DB)
	}

	if c.Limits.MaxStackDepth <= 0 {
		return ErrInvalidStackDepth
	}

	if c.Limits.MaxLoopIterations <= 0 {
		return ErrInvalidLoopIteration
	}

	if c.Limits.MaxSleep <= 0 {
		return ErrInvalidMaxSleep
	}

	return nil
}

// LoadRedisConfigFromEnv loads Redis connection settings from the REDIS_*
// environment variables. An unparsable database number is ignored
func LoadRedisConfigFromEnv(r *storage.RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		r.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		r.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err == nil {
			r.DB = db
		}
	}
	if envPrefix := os.Getenv("REDIS_PREFIX"); envPrefix != "" {
		r.Prefix = envPrefix
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
