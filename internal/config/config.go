package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Engine  EngineConfig
	Cache   CacheConfig
	StoreDB StoreDBConfig
	StaffDB StaffDBConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"magasin-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// EngineConfig holds the timings and thresholds of the reservation engine.
// Every delay the engine schedules comes from here so tests can shrink them.
type EngineConfig struct {
	NotificationTTL     time.Duration `envconfig:"ENGINE_NOTIFICATION_TTL" default:"3s"`
	RequestRemovalDelay time.Duration `envconfig:"ENGINE_REQUEST_REMOVAL_DELAY" default:"3s"`
	OrderResetDelay     time.Duration `envconfig:"ENGINE_ORDER_RESET_DELAY" default:"3s"`
	AlertInterval       time.Duration `envconfig:"ENGINE_ALERT_INTERVAL" default:"1h"`
	PredictionInterval  time.Duration `envconfig:"ENGINE_PREDICTION_INTERVAL" default:"24h"`
	RequestMinInterval  time.Duration `envconfig:"ENGINE_REQUEST_MIN_INTERVAL" default:"10s"`
	RequestMaxInterval  time.Duration `envconfig:"ENGINE_REQUEST_MAX_INTERVAL" default:"30s"`
	RequestProbability  float64       `envconfig:"ENGINE_REQUEST_PROBABILITY" default:"0.3"`
	CartIdleThreshold   time.Duration `envconfig:"ENGINE_CART_IDLE_THRESHOLD" default:"30m"`
	CartSweepInterval   time.Duration `envconfig:"ENGINE_CART_SWEEP_INTERVAL" default:"5m"`
	LowStockThreshold   int64         `envconfig:"ENGINE_LOW_STOCK_THRESHOLD" default:"5"`
	MaintenanceMonths   float64       `envconfig:"ENGINE_MAINTENANCE_MONTHS" default:"6"`
	WarrantyWindowDays  float64       `envconfig:"ENGINE_WARRANTY_WINDOW_DAYS" default:"30"`
	RandomSeed          int64         `envconfig:"ENGINE_RANDOM_SEED" default:"0"` // 0 = time-based
}

// CacheConfig holds catalog cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StoreDBConfig holds the equipment/notes database settings.
type StoreDBConfig struct {
	Type string `envconfig:"STORE_DB_TYPE" default:"sqlite"` // sqlite or postgres
	Path string `envconfig:"STORE_DB_PATH" default:"./data/magasin.db"`
	// PostgreSQL settings
	Host     string `envconfig:"STORE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_DB_PORT" default:"5432"`
	Name     string `envconfig:"STORE_DB_NAME" default:"magasin"`
	User     string `envconfig:"STORE_DB_USER" default:"postgres"`
	Password string `envconfig:"STORE_DB_PASS" default:""`
	SSLMode  string `envconfig:"STORE_DB_SSLMODE" default:"disable"`
}

// StaffDBConfig holds the MySQL connection settings for the technician roster.
type StaffDBConfig struct {
	Host     string `envconfig:"STAFF_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STAFF_DB_PORT" default:"3306"`
	Name     string `envconfig:"STAFF_DB_NAME" default:"magasin_staff"`
	User     string `envconfig:"STAFF_DB_USER" default:"root"`
	Password string `envconfig:"STAFF_DB_PASS" default:""`
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, s.Port, s.Name, s.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name for the staff database.
func (d *StaffDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
