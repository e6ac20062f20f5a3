package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the alarm list.
const (
	StorageMemory   = "memory"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
)

// Player backends.
const (
	PlayerWebSocket = "websocket"
	PlayerMQTT      = "mqtt"
	PlayerLog       = "log"
)

// Greeting providers.
const (
	GreetingMock   = "mock"
	GreetingOpenAI = "openai"
	GreetingGemini = "gemini"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr    string
	PublicBaseURL string // Used to build playable URLs for locally stored imports
	Timezone      string
	Location      *time.Location
	TickInterval  time.Duration
	SnoozeDelay   time.Duration

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	JWTSecret string

	// Alarm persistence
	StorageBackend string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	PostgresURL    string

	// Redis配置，host 为空时不启用
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Imported audio
	UploadDir      string
	ImportWatchDir string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	MinioURLExpiry time.Duration

	// Greeting
	GreetingProvider string
	GreetingLocale   string
	GreetingTimeout  time.Duration
	AIAPIBaseURL     string
	AIAPIKey         string
	AIModel          string
	AIMaxTokens      int
	AITemperature    float64
	GeminiAPIKey     string
	GeminiModel      string

	// Player
	PlayerBackend string
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTTopic     string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, exists := os.LookupEnv(key)
	if !exists || v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// getEnvDuration accepts Go durations ("8s", "5m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, exists := os.LookupEnv(key)
	if !exists || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() *Config {
	uploadBase := getEnv("UPLOAD_DIR", "uploads")

	cfg := &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		Timezone:      getEnv("TZ_NAME", "Local"),
		TickInterval:  getEnvDuration("TICK_INTERVAL", time.Second),
		SnoozeDelay:   getEnvDuration("SNOOZE_DELAY", 5*time.Minute),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBName:         getEnv("DB_NAME", "vibewake"),
		PostgresURL:    os.Getenv("DATABASE_URL"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库

		UploadDir:      uploadBase,
		ImportWatchDir: os.Getenv("IMPORT_WATCH_DIR"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "vibewake"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioURLExpiry: getEnvDuration("MINIO_URL_EXPIRY", 24*time.Hour),

		GreetingProvider: strings.ToLower(getEnv("GREETING_PROVIDER", GreetingMock)),
		GreetingLocale:   getEnv("GREETING_LOCALE", "pt-BR"),
		GreetingTimeout:  getEnvDuration("GREETING_TIMEOUT", 8*time.Second),
		AIAPIBaseURL:     strings.TrimRight(getEnv("AI_API_BASE_URL", "https://api.openai.com/v1"), "/"),
		AIAPIKey:         os.Getenv("AI_API_KEY"),
		AIModel:          getEnv("AI_MODEL", "gpt-4o-mini"),
		AIMaxTokens:      getEnvInt("AI_MAX_TOKENS", 120),
		AITemperature:    getEnvFloat("AI_TEMPERATURE", 0.8),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		PlayerBackend: strings.ToLower(getEnv("PLAYER_BACKEND", PlayerWebSocket)),
		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", "tcp://127.0.0.1:1883"),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "vibewake-server"),
		MQTTTopic:     getEnv("MQTT_TOPIC", "vibewake/bedroom"),
	}

	if cfg.ImportWatchDir == "" && getEnvBool("IMPORT_WATCH", false) {
		cfg.ImportWatchDir = filepath.Join(uploadBase, "inbox")
	}

	return cfg
}

// Validate checks the combination of settings and resolves the time zone.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TZ_NAME %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.TickInterval <= 0 || c.TickInterval > time.Second {
		return fmt.Errorf("TICK_INTERVAL must be in (0, 1s], got %s", c.TickInterval)
	}
	if c.SnoozeDelay <= 0 {
		return fmt.Errorf("SNOOZE_DELAY must be positive, got %s", c.SnoozeDelay)
	}
	if c.GreetingTimeout <= 0 {
		return fmt.Errorf("GREETING_TIMEOUT must be positive, got %s", c.GreetingTimeout)
	}

	switch c.StorageBackend {
	case StorageMemory, StorageMySQL:
	case StoragePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.GreetingProvider {
	case GreetingMock:
	case GreetingOpenAI:
		if c.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required for the openai greeting provider")
		}
	case GreetingGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini greeting provider")
		}
	default:
		return fmt.Errorf("unknown GREETING_PROVIDER %q", c.GreetingProvider)
	}

	switch c.PlayerBackend {
	case PlayerWebSocket, PlayerLog:
	case PlayerMQTT:
		if c.MQTTBrokerURL == "" {
			return fmt.Errorf("MQTT_BROKER_URL is required for the mqtt player backend")
		}
	default:
		return fmt.Errorf("unknown PLAYER_BACKEND %q", c.PlayerBackend)
	}

	return nil
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// MinioEnabled reports whether imported audio goes to MinIO instead of UploadDir.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != ""
}
