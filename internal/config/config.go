package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

type Config struct {
	Port             string
	AllowedOrigin    string
	LogLevel         string
	DefaultRangeDays int
	Store            StoreConfig
	Redis            RedisConfig
	Mongo            MongoConfig
	Advisory         AdvisoryConfig
	Scheduler        SchedulerConfig
}

type StoreConfig struct {
	Driver      string
	DatabaseURL string
	StateKey    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MongoConfig struct {
	URI    string
	DBName string
}

type AdvisoryConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	CacheTTLSeconds int
	TimeoutSeconds  int
}

type SchedulerConfig struct {
	AlertDigestCron string
	PnLDigestCron   string
	Timezone        string
}

// Load reads an optional env file and the process environment. A missing
// file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Config{
		Port:             getEnv("APP_PORT", "8080"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DefaultRangeDays: getEnvInt("DEFAULT_RANGE_DAYS", 30),
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			StateKey:    getEnv("REDIS_STATE_KEY", "profitlens:state"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Mongo: MongoConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getEnv("MONGODB_DB_NAME", "profitlens"),
		},
		Advisory: AdvisoryConfig{
			APIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:         strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
			CacheTTLSeconds: getEnvInt("ADVISORY_CACHE_TTL_SECONDS", 600),
			TimeoutSeconds:  getEnvInt("ADVISORY_TIMEOUT_SECONDS", 60),
		},
		Scheduler: SchedulerConfig{
			AlertDigestCron: getEnv("ALERT_DIGEST_CRON", "0 7 * * *"),
			PnLDigestCron:   getEnv("PNL_DIGEST_CRON", "0 22 * * *"),
			Timezone:        getEnv("TIMEZONE", "Asia/Jakarta"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.DefaultRangeDays < 1 {
		return errors.New("DEFAULT_RANGE_DAYS must be at least 1")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be provided for the postgres store driver")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided for the redis store driver")
		}
		if c.Store.StateKey == "" {
			return errors.New("REDIS_STATE_KEY must not be empty")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo store driver")
		}
		if c.Mongo.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Advisory.Model == "" {
		return errors.New("GEMINI_MODEL must not be empty")
	}
	if c.Advisory.CacheTTLSeconds < 1 {
		return errors.New("ADVISORY_CACHE_TTL_SECONDS must be at least 1")
	}
	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Scheduler.Timezone, err)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) AdvisoryEnabled() bool {
	return c.Advisory.APIKey != ""
}

func (c Config) AdvisoryCacheTTL() time.Duration {
	return time.Duration(c.Advisory.CacheTTLSeconds) * time.Second
}

func (c Config) AdvisoryTimeout() time.Duration {
	if c.Advisory.TimeoutSeconds < 1 {
		return 60 * time.Second
	}
	return time.Duration(c.Advisory.TimeoutSeconds) * time.Second
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return val
}
