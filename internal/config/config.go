package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment represents the local development environment.
	EnvDevelopment = "development"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env       string `envconfig:"ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"8080"`
	PublicDir string `envconfig:"PUBLIC_DIR" default:"./public"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Workflow settings
	FeedbackDelay time.Duration `envconfig:"FEEDBACK_DELAY" default:"1500ms"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionSweep  time.Duration `envconfig:"SESSION_SWEEP" default:"10m"`

	// Capture settings
	SampleRate        int   `envconfig:"SAMPLE_RATE" default:"16000"`
	CaptureChannels   int   `envconfig:"CAPTURE_CHANNELS" default:"1"`
	MaxRecordingBytes int64 `envconfig:"MAX_RECORDING_BYTES" default:"33554432"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate returns an error if the config cannot drive a server.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.CaptureChannels != 1 {
		return errors.New("only mono (1 channel) capture is supported")
	}

	if c.MaxRecordingBytes <= 0 {
		return errors.New("max recording bytes must be positive")
	}

	if c.FeedbackDelay < 0 {
		return errors.New("feedback delay cannot be negative")
	}

	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}

	return nil
}

// IsProduction reports whether the config targets production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		// Production CSP. media-src allows playback of recorded artifacts.
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"img-src 'self' data:; " +
			"media-src 'self' blob:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:; " +
		"media-src 'self' blob:"
}
