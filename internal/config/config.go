package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upload storage backends.
const (
	UploadBackendDisk = "disk"
	UploadBackendS3   = "s3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Upload       UploadConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	ExistsTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	Salt                  string
}

// UploadConfig controls where and how avatar files are stored.
type UploadConfig struct {
	Directory         string
	MaxSizeBytes      int64
	AllowedExtensions []string
	Backend           string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Provider exposes named string settings to components that only need a handful of values.
type Provider interface {
	Get(key string) string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "user-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:             os.Getenv("REDIS_ADDR"),
			Password:         os.Getenv("REDIS_PASSWORD"),
			DB:               redisDB,
			ExistsTTLSeconds: getEnvAsInt("REDIS_EXISTS_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24*2),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			Salt:                  getEnv("SALT", "dev-salt"),
		},
		Upload: UploadConfig{
			Directory:         getEnv("UPLOAD_DIRECTORY", "upload"),
			MaxSizeBytes:      int64(getEnvAsInt("UPLOAD_MAX_SIZE_BYTES", 5<<20)),
			AllowedExtensions: normalizeExtensions(getEnvAsList("UPLOAD_ALLOWED_EXTENSIONS", []string{".jpg", ".jpeg", ".png"})),
			Backend:           strings.ToLower(getEnv("UPLOAD_BACKEND", UploadBackendDisk)),
			S3Bucket:          os.Getenv("UPLOAD_S3_BUCKET"),
			S3Region:          getEnv("UPLOAD_S3_REGION", "us-east-1"),
			S3Endpoint:        os.Getenv("UPLOAD_S3_ENDPOINT"),
			S3AccessKey:       os.Getenv("UPLOAD_S3_ACCESS_KEY"),
			S3SecretKey:       os.Getenv("UPLOAD_S3_SECRET_KEY"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid AUTH_BCRYPT_COST %d: must be between 4 and 31", c.Auth.BcryptCost)
	}
	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid UPLOAD_MAX_SIZE_BYTES %d", c.Upload.MaxSizeBytes)
	}
	switch c.Upload.Backend {
	case UploadBackendDisk:
		if strings.TrimSpace(c.Upload.Directory) == "" {
			return fmt.Errorf("UPLOAD_DIRECTORY required for disk backend")
		}
	case UploadBackendS3:
		if c.Upload.S3Bucket == "" {
			return fmt.Errorf("UPLOAD_S3_BUCKET required for s3 backend")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Upload.Backend)
	}
	return nil
}

// Get returns a named setting, using the same keys as the environment.
func (c *Config) Get(key string) string {
	switch key {
	case "APP_NAME":
		return c.App.Name
	case "APP_ENV":
		return c.App.Env
	case "APP_VERSION":
		return c.App.Version
	case "SALT":
		return c.Auth.Salt
	case "AUTH_JWT_SECRET":
		return c.Auth.JWTSecret
	case "UPLOAD_DIRECTORY":
		return c.Upload.Directory
	case "UPLOAD_BACKEND":
		return c.Upload.Backend
	default:
		return ""
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ExistsTTL returns how long positive existence lookups stay cached.
func (r RedisConfig) ExistsTTL() time.Duration {
	if r.ExistsTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.ExistsTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// normalizeExtensions prefixes a dot where missing so entries compare equal to filepath.Ext.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
