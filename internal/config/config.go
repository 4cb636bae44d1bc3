package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"story-branches/internal/database"
	"story-branches/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища историй.
const (
	StoreDriverPostgres = database.DriverPostgres
	StoreDriverSQLite   = database.DriverSQLite
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"stories.db"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"stories"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	DBMaxRetries  int           `envconfig:"DB_MAX_RETRIES" default:"5"`
	DBRetryDelay  time.Duration `envconfig:"DB_RETRY_DELAY" default:"2s"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string `ignored:"true"`

	// Redis: пустой адрес отключает кэш.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	StoryCacheTTL time.Duration `envconfig:"STORY_CACHE_TTL" default:"10m"`
	RedisPassword string        `ignored:"true"`

	// RabbitMQ: пустой URL отключает публикацию событий.
	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	StoryEventsQueue string `envconfig:"STORY_EVENTS_QUEUE" default:"story_events"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Firebase Storage для обложек.
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseStorageBucket   string `envconfig:"FIREBASE_STORAGE_BUCKET"`

	// Генерация иллюстраций.
	OpenAIImageModel string        `envconfig:"OPENAI_IMAGE_MODEL" default:"dall-e-3"`
	OpenAIImageSize  string        `envconfig:"OPENAI_IMAGE_SIZE" default:"1024x1024"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL"`
	OpenAITimeout    time.Duration `envconfig:"OPENAI_TIMEOUT" default:"120s"`
	OpenAIAPIKey     string        `ignored:"true"`

	// Лимит запросов на генерацию иллюстраций для одного пользователя.
	IllustrationRateLimit  uint          `envconfig:"ILLUSTRATION_RATE_LIMIT" default:"10"`
	IllustrationRateWindow time.Duration `envconfig:"ILLUSTRATION_RATE_WINDOW" default:"1h"`

	JWTIssuer string        `envconfig:"JWT_ISSUER"`
	JWTLeeway time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
	JWTSecret string        `ignored:"true"`

	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// PostgresDSN собирает строку подключения. Пароль экранируется.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%s", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// StoreConfig собирает параметры хранилища историй.
func (c *Config) StoreConfig(migrate bool) database.StoreConfig {
	return database.StoreConfig{
		Driver:     c.StoreDriver,
		SQLitePath: c.SQLitePath,
		Postgres: database.PoolConfig{
			DSN:         c.PostgresDSN(),
			MaxConns:    c.DBMaxConns,
			IdleTimeout: c.DBIdleTimeout,
			MaxRetries:  c.DBMaxRetries,
			RetryDelay:  c.DBRetryDelay,
		},
		Migrate: migrate,
	}
}

// Validate проверяет значения, которые envconfig не может проверить сам.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (expected %s or %s)", c.StoreDriver, StoreDriverPostgres, StoreDriverSQLite)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.StoreDriver == StoreDriverPostgres && c.DBPassword == "" {
		return errors.New("db_password is required for the postgres store")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// LoadConfig loads configuration from an optional .env file, environment variables and secret files.
func LoadConfig(envFilePath string) (*Config, error) {
	cfg, err := LoadStoreConfig(envFilePath)
	if err != nil {
		return nil, err
	}

	cfg.JWTSecret, err = utils.ReadSecretFrom(cfg.SecretsDir, "jwt_secret")
	if err != nil {
		return nil, err
	}
	// Необязательные секреты.
	if cfg.RedisPassword, err = utils.ReadOptionalSecret(cfg.SecretsDir, "redis_password"); err != nil {
		return nil, err
	}
	if cfg.OpenAIAPIKey, err = utils.ReadOptionalSecret(cfg.SecretsDir, "openai_api_key"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStoreConfig загружает только то, что нужно для работы с хранилищем (storyctl).
// Секрет JWT не читается и не проверяется.
func LoadStoreConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		password, err := utils.ReadSecretFrom(cfg.SecretsDir, "db_password")
		if err != nil {
			return nil, err
		}
		cfg.DBPassword = password
	case StoreDriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (expected %s or %s)", cfg.StoreDriver, StoreDriverPostgres, StoreDriverSQLite)
	}
	return &cfg, nil
}
