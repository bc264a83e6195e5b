// Package config collects all runtime settings from the environment into an
// explicit struct built once at startup and passed down to the server.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Deployments must
// override it; main logs a loud warning when it is in effect.
const DefaultJWTSecret = "your-secret-key-change-this"

// S3Config holds the object store settings. Either Endpoint (generic
// S3-compatible) or R2AccountID (Cloudflare R2) selects the addressing mode.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	ForcePathStyle  bool
	R2AccountID     string
	R2Jurisdiction  string
}

// Config holds runtime settings for the backend.
type Config struct {
	Port            string
	LoginUsername   string
	LoginPassword   string
	JWTSecret       string
	S3              S3Config
	LiveURL         string
	RequireFilename bool
	Production      bool
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment")
	}

	cfg := &Config{
		Port:          os.Getenv("PORT"),
		LoginUsername: os.Getenv("LOGIN_USERNAME"),
		LoginPassword: os.Getenv("LOGIN_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          os.Getenv("S3_REGION"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("S3_BUCKET"),
			ForcePathStyle:  envBool("S3_FORCE_PATH_STYLE"),
			R2AccountID:     os.Getenv("R2_ACCOUNT_ID"),
			R2Jurisdiction:  os.Getenv("R2_JURISDICTION"),
		},
		LiveURL:         strings.TrimRight(os.Getenv("LIVE_URL"), "/"),
		RequireFilename: envBool("SAVE_REQUIRE_FILENAME"),
		Production:      os.Getenv("NODE_ENV") == "production",
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DefaultJWTSecret
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	return cfg
}

// Validate reports missing settings that the server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.LoginUsername == "" {
		missing = append(missing, "LOGIN_USERNAME")
	}
	if c.LoginPassword == "" {
		missing = append(missing, "LOGIN_PASSWORD")
	}
	if c.S3.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.S3.AccessKeyID == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if c.S3.SecretAccessKey == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if c.S3.Endpoint == "" && c.S3.R2AccountID == "" {
		missing = append(missing, "S3_ENDPOINT or R2_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// UsingDefaultSecret reports whether the built-in JWT secret is in effect.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
