package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"blog-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8004"`

	// Database (PostgreSQL for users, topics, posts)
	DBHost    string `envconfig:"DB_HOST" required:"true"`
	DBPort    string `envconfig:"DB_PORT" required:"true"`
	DBUser    string `envconfig:"DB_USER" required:"true"`
	DBName    string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode string `envconfig:"DB_SSL_MODE" default:"disable"`
	// Secret field WITHOUT envconfig tag
	DBPassword string

	// Redis (token blocklist and pending registration cache)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Secret field WITHOUT envconfig tag
	RedisPassword string

	// Token settings - secret fields WITHOUT envconfig tags
	AuthKey        string
	PasswordPepper string
	// Comma-separated list of accepted HMAC algorithms, the first one signs.
	AuthAlgorithms       string        `envconfig:"AUTH_ALGORITHMS" default:"HS256"`
	AccessTokenTTL       time.Duration `envconfig:"AUTH_ACCESS_TOKEN_TTL" default:"10m"`
	RefreshTokenTTL      time.Duration `envconfig:"AUTH_REFRESH_TOKEN_TTL" default:"48h"`
	VerificationTokenTTL time.Duration `envconfig:"AUTH_VERIFICATION_TOKEN_TTL" default:"3m"`
	ResetTokenTTL        time.Duration `envconfig:"AUTH_RESET_TOKEN_TTL" default:"3m"`

	// Routes reachable without a token, "path:METHOD" pairs. A trailing
	// "/*" on the path matches any sub-path, "*" as method matches all.
	PublicPaths string `envconfig:"AUTH_PUBLIC_PATHS" default:"auth/create_user:POST,auth/login:POST,auth/refresh:GET,auth/reset_password:GET,health:GET,metrics:GET,docs/*:*"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Outgoing mail (verification and reset letters)
	EMSHost   string `envconfig:"EMS_HOST" default:"localhost"`
	EMSPort   int    `envconfig:"EMS_PORT" default:"587"`
	EMSUser   string `envconfig:"EMS_USER" default:""`
	EMSSender string `envconfig:"EMS_SENDER" default:"noreply@blog-server.local"`
	EMSUseTLS bool   `envconfig:"EMS_IS_TLS" default:"true"`
	// Secret field WITHOUT envconfig tag
	EMSPassword string
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// GetAuthAlgorithms splits the AuthAlgorithms string into a slice.
func (c *Config) GetAuthAlgorithms() []string {
	if c.AuthAlgorithms == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.AuthAlgorithms, " ", ""), ",")
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		err = godotenv.Load(envFilePath)
		if err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Required secrets come from files only.
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AuthKey, loadErr = utils.ReadSecret("auth_key")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.PasswordPepper, loadErr = utils.ReadSecret("password_pepper")
	if loadErr != nil {
		return nil, loadErr
	}

	// Optional secrets.
	redisPass, err := utils.ReadSecret("redis_password")
	if err == nil {
		cfg.RedisPassword = redisPass
		log.Println("Redis password loaded from secret.")
	} else {
		log.Printf("Optional secret 'redis_password' not found or failed to read: %v. Assuming no password.", err)
	}

	emsPass, err := utils.ReadSecret("ems_password")
	if err == nil {
		cfg.EMSPassword = emsPass
		log.Println("EMS password loaded from secret.")
	} else {
		log.Printf("Optional secret 'ems_password' not found or failed to read: %v. Assuming no password.", err)
	}

	log.Println("Configuration loaded successfully (secrets read from files).")
	return &cfg, nil
}
