package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceFile       = "file"
	SourceHTTP       = "http"
	SourceClickHouse = "clickhouse"

	DomainYear   = "year"
	DomainExtent = "extent"
)

type Config struct {
	ServiceName      string
	OTELCollectorURL string

	NATSURL         string
	NATSConnTimeout time.Duration

	ClickHouseDSN          string
	ClickHouseMaxOpenConns int
	ClickHouseMaxIdleConns int
	ClickHouseConnMaxLife  time.Duration
	ClickHouseUsername     string
	ClickHousePassword     string
	ClickHouseDatabase     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	DatasetSource      string
	DatasetPaths       []string
	DatasetURL         string
	DatasetHTTPTimeout time.Duration
	DateLayouts        []string

	ChartDomain string
	ChartWidth  int
	ChartHeight int
}

func LoadConfig() (*Config, error) {
	// Existing environment variables win over .env entries.
	_ = godotenv.Load()

	config := &Config{
		ServiceName:      getEnvString("SERVICE_NAME", "trends-service"),
		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		ClickHouseDSN:          getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseMaxOpenConns: getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		ClickHouseMaxIdleConns: getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ClickHouseConnMaxLife:  getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", time.Hour),
		ClickHouseUsername:     getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword:     getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:     getEnvString("CLICKHOUSE_DATABASE", "jobs_nyc"),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),

		DatasetSource:      getEnvString("DATASET_SOURCE", SourceFile),
		DatasetPaths:       getEnvList("DATASET_PATHS", []string{"data_cleaned.json"}),
		DatasetURL:         getEnvString("DATASET_URL", ""),
		DatasetHTTPTimeout: getEnvDuration("DATASET_HTTP_TIMEOUT", 30*time.Second),
		DateLayouts:        getEnvList("DATE_LAYOUTS", nil),

		ChartDomain: getEnvString("CHART_DOMAIN", DomainYear),
		ChartWidth:  getEnvInt("CHART_WIDTH", 960),
		ChartHeight: getEnvInt("CHART_HEIGHT", 500),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.DatasetSource {
	case SourceFile:
		if len(c.DatasetPaths) == 0 {
			return fmt.Errorf("DATASET_PATHS is required when DATASET_SOURCE is %q", SourceFile)
		}
	case SourceHTTP:
		if c.DatasetURL == "" {
			return fmt.Errorf("DATASET_URL is required when DATASET_SOURCE is %q", SourceHTTP)
		}
	case SourceClickHouse:
		if c.ClickHouseDSN == "" {
			return fmt.Errorf("CLICKHOUSE_DSN is required when DATASET_SOURCE is %q", SourceClickHouse)
		}
	default:
		return fmt.Errorf("invalid DATASET_SOURCE %q: must be one of %s, %s, %s",
			c.DatasetSource, SourceFile, SourceHTTP, SourceClickHouse)
	}

	if c.ChartDomain != DomainYear && c.ChartDomain != DomainExtent {
		return fmt.Errorf("invalid CHART_DOMAIN %q: must be %s or %s", c.ChartDomain, DomainYear, DomainExtent)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("invalid chart size %dx%d: must be positive", c.ChartWidth, c.ChartHeight)
	}
	if c.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
