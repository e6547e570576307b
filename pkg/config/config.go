package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Extraction ExtractionConfig
	Browser    BrowserConfig
	Ingest     IngestConfig
	Jobs       JobsConfig
	Scheduler  SchedulerConfig
	Cache      CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExtractionConfig configures the structured-extraction (LLM) client.
type ExtractionConfig struct {
	APIKey             string
	BaseURL            string
	Model              string
	MaxTokens          int
	MinRequestInterval time.Duration
	RequestTimeout     time.Duration
}

// BrowserConfig tunes the headless-browser adapters.
type BrowserConfig struct {
	Headless       bool
	ExecPath       string
	NavTimeout     time.Duration
	StepTimeout    time.Duration
	ContentTimeout time.Duration
}

// IngestConfig holds shared knobs for the source adapters.
type IngestConfig struct {
	DefaultWindowDays  int
	ExtendedWindowDays int
}

// JobsConfig configures the asynchronous ingestion queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// SchedulerConfig toggles the optional in-process cron scheduler.
// Entries map a registered job name to a cron spec. Pairs are separated by
// semicolons because cron specs themselves may contain commas, e.g.
// "union-sports-arena-nj=0 5,17 * * *;bridgewater-ice-arena=30 5 * * *".
type SchedulerConfig struct {
	Enabled bool
	Entries map[string]string
}

// CacheConfig governs read-API caching.
type CacheConfig struct {
	Enabled bool
	ListTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Extraction = ExtractionConfig{
		APIKey:             v.GetString("EXTRACTION_API_KEY"),
		BaseURL:            v.GetString("EXTRACTION_BASE_URL"),
		Model:              v.GetString("EXTRACTION_MODEL"),
		MaxTokens:          v.GetInt("EXTRACTION_MAX_TOKENS"),
		MinRequestInterval: parseDuration(v.GetString("EXTRACTION_MIN_REQUEST_INTERVAL"), 1500*time.Millisecond),
		RequestTimeout:     parseDuration(v.GetString("EXTRACTION_REQUEST_TIMEOUT"), 60*time.Second),
	}

	cfg.Browser = BrowserConfig{
		Headless:       v.GetBool("BROWSER_HEADLESS"),
		ExecPath:       v.GetString("BROWSER_EXEC_PATH"),
		NavTimeout:     parseDuration(v.GetString("BROWSER_NAV_TIMEOUT"), 60*time.Second),
		StepTimeout:    parseDuration(v.GetString("BROWSER_STEP_TIMEOUT"), 10*time.Second),
		ContentTimeout: parseDuration(v.GetString("BROWSER_CONTENT_TIMEOUT"), 30*time.Second),
	}

	cfg.Ingest = IngestConfig{
		DefaultWindowDays:  v.GetInt("INGEST_DEFAULT_WINDOW_DAYS"),
		ExtendedWindowDays: v.GetInt("INGEST_EXTENDED_WINDOW_DAYS"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Minute),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled: v.GetBool("ENABLE_SCHEDULER"),
		Entries: parseEntries(v.GetString("SCHEDULER_ENTRIES")),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		ListTTL: parseDuration(v.GetString("CACHE_LIST_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "icetimes")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXTRACTION_API_KEY", "")
	v.SetDefault("EXTRACTION_BASE_URL", "https://api.anthropic.com")
	v.SetDefault("EXTRACTION_MODEL", "claude-3-sonnet-20240229")
	v.SetDefault("EXTRACTION_MAX_TOKENS", 1000)
	// 1.5s between requests keeps us around 40 requests/minute.
	v.SetDefault("EXTRACTION_MIN_REQUEST_INTERVAL", "1500ms")
	v.SetDefault("EXTRACTION_REQUEST_TIMEOUT", "60s")

	v.SetDefault("BROWSER_HEADLESS", true)
	v.SetDefault("BROWSER_EXEC_PATH", "")
	v.SetDefault("BROWSER_NAV_TIMEOUT", "60s")
	v.SetDefault("BROWSER_STEP_TIMEOUT", "10s")
	v.SetDefault("BROWSER_CONTENT_TIMEOUT", "30s")

	v.SetDefault("INGEST_DEFAULT_WINDOW_DAYS", 7)
	v.SetDefault("INGEST_EXTENDED_WINDOW_DAYS", 30)

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_BUFFER_SIZE", 8)
	v.SetDefault("JOBS_MAX_RETRIES", 1)
	v.SetDefault("JOBS_RETRY_DELAY", "1m")

	v.SetDefault("ENABLE_SCHEDULER", false)
	v.SetDefault("SCHEDULER_ENTRIES", "")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_LIST_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseEntries decodes semicolon-separated "job-name=cron spec" pairs.
// Commas stay reserved for the specs themselves.
func parseEntries(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	entries := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.TrimSpace(kv[0])
		spec := strings.TrimSpace(kv[1])
		if name != "" && spec != "" {
			entries[name] = spec
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}
