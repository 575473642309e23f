package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Env  string
	Port string

	DatabaseURL     string
	DBConnectTries  int
	DBRetryInterval time.Duration
	AutoMigrate     bool

	JWTSecret string
	JWTTTL    time.Duration

	ShutdownTimeout time.Duration
}

const devJWTSecret = "dev_only_secret_change_me_32_bytes!"

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:             strings.ToLower(getEnv("APP_ENV", "development")),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBConnectTries:  getInt("DB_CONNECT_RETRIES", 10),
		DBRetryInterval: getDuration("DB_RETRY_INTERVAL", 3*time.Second),
		AutoMigrate:     getBool("AUTO_MIGRATE", true),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          getDuration("JWT_TTL", 72*time.Hour),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.DBConnectTries < 1 {
		cfg.DBConnectTries = 1
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
