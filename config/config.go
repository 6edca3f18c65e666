package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"talentdesk/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment        string        `json:"environment"`
	ServerPort         string        `json:"server_port"`
	AppVersion         string        `json:"app_version"`
	DBHost             string        `json:"db_host"`
	DBPort             string        `json:"db_port"`
	DBUser             string        `json:"db_user"`
	DBPassword         string        `json:"-"`
	DBName             string        `json:"db_name"`
	DBSSLMode          string        `json:"db_ssl_mode"`
	DBMaxIdleConns     int           `json:"db_max_idle_conns"`
	DBMaxOpenConns     int           `json:"db_max_open_conns"`
	JWTSecret          string        `json:"-"`
	EncryptionKey      string        `json:"-"`
	SentryDSN          string        `json:"-"`
	AllowedOrigins     []string      `json:"allowed_origins"`
	RateLimitPerMinute int           `json:"rate_limit_per_minute"`
	DefaultPageSize    int           `json:"default_page_size"`
	MaxPageSize        int           `json:"max_page_size"`
	HealthInterval     time.Duration `json:"health_interval"`
	OverdueInterval    time.Duration `json:"overdue_interval"`
	Redis              RedisConfig   `json:"redis"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	envLoaded = godotenv.Load() == nil
}

// LoadConfig reads the environment into AppConfig.
func LoadConfig() error {
	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppConfig = cfg
	logConfig()
	return nil
}

// FromEnv builds a Config from the environment and validates it.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         getEnv("SERVER_PORT", "5000"),
		AppVersion:         getEnv("APP_VERSION", "dev"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "talentdesk"),
		DBSSLMode:          getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		EncryptionKey:      getEnv("ENCRYPTION_KEY", ""),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		AllowedOrigins:     getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
		DefaultPageSize:    getEnvAsInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:        getEnvAsInt("MAX_PAGE_SIZE", 100),
		HealthInterval:     getEnvAsDuration("HEALTH_INTERVAL", 2*time.Minute),
		OverdueInterval:    getEnvAsDuration("OVERDUE_INTERVAL", 5*time.Minute),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	// Validate required configurations
	if cfg.DBPassword == "" {
		return cfg, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptionKey == "" {
		return cfg, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	switch len(cfg.EncryptionKey) {
	case 16, 24, 32:
	default:
		return cfg, fmt.Errorf("ENCRYPTION_KEY must be 16, 24 or 32 bytes, got %d", len(cfg.EncryptionKey))
	}
	if cfg.DefaultPageSize <= 0 || cfg.MaxPageSize < cfg.DefaultPageSize {
		return cfg, fmt.Errorf("invalid page sizes: default %d, max %d", cfg.DefaultPageSize, cfg.MaxPageSize)
	}
	return cfg, nil
}

func ConnectDB() error {
	logrus.Info("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	logrus.WithField("dsn", maskPassword(dsn)).Info("Using connection string")

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logrus.Info("Successfully connected to the database")
	logrus.Info("Starting database migration...")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		logrus.Warnf("Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.WithFields(logrus.Fields{
		"environment":     AppConfig.Environment,
		"server_port":     AppConfig.ServerPort,
		"version":         AppConfig.AppVersion,
		"database":        fmt.Sprintf("%s@%s:%s/%s", AppConfig.DBUser, AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBName),
		"redis":           AppConfig.Redis.Enabled,
		"sentry":          AppConfig.SentryDSN != "",
		"allowed_origins": AppConfig.AllowedOrigins,
	}).Info("Loaded configuration")
}

func migrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.FieldSchema{},
		&models.Company{},
		&models.Contact{},
		&models.Lead{},
		&models.Deal{},
		&models.Task{},
		&models.TrainingBatch{},
		&models.Candidate{},
		&models.CandidateScreening{},
		&models.CandidateCounseling{},
		&models.ActivityLog{},
		&models.SystemSetting{},
		&models.SupportTicket{},
	)
}
