package config

import (
	"strings"
	"time"

	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/database"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Log          LogConfig
	Storage      StorageConfig
	Database     database.PostgresConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Notification NotificationConfig
	FileStorage  FileStorageConfig
	Google       GoogleConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type LogConfig struct {
	Level       string
	File        string
	Development bool
}

// StorageConfig selects the notification backend: "memory" or "postgres".
type StorageConfig struct {
	Driver         string
	MigrationsPath string
}

// RedisConfig enables cross-instance event fan-out.
type RedisConfig struct {
	Enabled bool
	database.RedisConfig
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type NotificationConfig struct {
	SeedDemo bool
	// DemoArrivalDelay schedules one simulated arrival at startup. Zero
	// disables it.
	DemoArrivalDelay time.Duration
	Strict           bool
}

type FileStorageConfig struct {
	UseS3            bool
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
	PublicBaseURL    string
}

type GoogleConfig struct {
	ClientID string
}

var defaults = map[string]any{
	"PORT":                            "8080",
	"ALLOWED_ORIGINS":                 "http://localhost:5173",
	"LOG_LEVEL":                       "info",
	"LOG_FILE":                        "",
	"LOG_DEVELOPMENT":                 false,
	"STORAGE_DRIVER":                  "memory",
	"MIGRATIONS_PATH":                 "db/migrations",
	"DB_HOST":                         "localhost",
	"DB_PORT":                         "5432",
	"DB_USER":                         "postgres",
	"DB_PASSWORD":                     "",
	"DB_NAME":                         "panchakarma",
	"DB_SSLMODE":                      "disable",
	"REDIS_ENABLED":                   false,
	"REDIS_HOST":                      "localhost",
	"REDIS_PORT":                      "6379",
	"REDIS_PASSWORD":                  "",
	"REDIS_DB":                        0,
	"JWT_SECRET":                      "default-dev-secret",
	"JWT_EXPIRATION":                  "24h",
	"NOTIFICATION_SEED_DEMO":          true,
	"NOTIFICATION_DEMO_ARRIVAL_DELAY": "5s",
	"NOTIFICATION_STRICT":             false,
	"USE_S3":                          false,
	"S3_REGION":                       "us-east-1",
	"S3_ENDPOINT":                     "",
	"S3_ACCESS_KEY":                   "",
	"S3_SECRET_KEY":                   "",
	"S3_BUCKET":                       "",
	"S3_USE_SSL":                      true,
	"LOCAL_STORAGE_PATH":              "./uploads",
	"PUBLIC_BASE_URL":                 "http://localhost:8080",
	"GOOGLE_CLIENT_ID":                "",
}

// Load reads configuration from environment variables, falling back to
// development defaults. Invalid durations fall back to their default.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			AllowedOrigins: v.GetString("ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level:       strings.ToLower(v.GetString("LOG_LEVEL")),
			File:        v.GetString("LOG_FILE"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
			MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		},
		Database: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Enabled: v.GetBool("REDIS_ENABLED"),
			RedisConfig: database.RedisConfig{
				Host:     v.GetString("REDIS_HOST"),
				Port:     v.GetString("REDIS_PORT"),
				Password: v.GetString("REDIS_PASSWORD"),
				DB:       v.GetInt("REDIS_DB"),
			},
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Expiry: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		},
		Notification: NotificationConfig{
			SeedDemo:         v.GetBool("NOTIFICATION_SEED_DEMO"),
			DemoArrivalDelay: parseDuration(v.GetString("NOTIFICATION_DEMO_ARRIVAL_DELAY"), 5*time.Second),
			Strict:           v.GetBool("NOTIFICATION_STRICT"),
		},
		FileStorage: FileStorageConfig{
			UseS3:            v.GetBool("USE_S3"),
			S3Region:         v.GetString("S3_REGION"),
			S3Endpoint:       v.GetString("S3_ENDPOINT"),
			S3PublicEndpoint: firstNonEmpty(v.GetString("S3_PUBLIC_ENDPOINT"), v.GetString("S3_ENDPOINT")),
			S3AccessKey:      v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:      v.GetString("S3_SECRET_KEY"),
			S3BucketName:     v.GetString("S3_BUCKET"),
			S3UseSSL:         v.GetBool("S3_USE_SSL"),
			LocalPath:        v.GetString("LOCAL_STORAGE_PATH"),
			PublicBaseURL:    strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Google: GoogleConfig{
			ClientID: v.GetString("GOOGLE_CLIENT_ID"),
		},
	}
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
