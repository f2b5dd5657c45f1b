package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration. Tokens are issued by the auth service;
// AccessExpiration only applies to tokens minted by local tooling.
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	AutoMigrate        bool
	CORSAllowedOrigins []string
}

// AttendanceConfig holds the check-in/check-out policy.
type AttendanceConfig struct {
	MarginMinutes      int
	ToleranceMeters    float64
	TransactionTimeout time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		slog.Warn("No .env file found, using process environment")
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "presence"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	autoMigrate, err := strconv.ParseBool(getEnv("APP_AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_AUTO_MIGRATE: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AutoMigrate:        autoMigrate,
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance policy
	margin, err := strconv.Atoi(getEnv("ATTENDANCE_MARGIN_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MARGIN_MINUTES: %w", err)
	}

	tolerance, err := strconv.ParseFloat(getEnv("ATTENDANCE_DISTANCE_TOLERANCE_METERS", "150"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DISTANCE_TOLERANCE_METERS: %w", err)
	}

	txTimeout, err := time.ParseDuration(getEnv("ATTENDANCE_TX_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TX_TIMEOUT: %w", err)
	}

	config.Attendance = AttendanceConfig{
		MarginMinutes:      margin,
		ToleranceMeters:    tolerance,
		TransactionTimeout: txTimeout,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.MarginMinutes <= 0 || c.Attendance.MarginMinutes >= 12*60 {
		return fmt.Errorf("ATTENDANCE_MARGIN_MINUTES must be between 1 and 719")
	}
	if c.Attendance.ToleranceMeters <= 0 {
		return fmt.Errorf("ATTENDANCE_DISTANCE_TOLERANCE_METERS must be positive")
	}
	if c.Attendance.TransactionTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_TX_TIMEOUT must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
