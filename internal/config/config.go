package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"5000"`
	Environment string `envconfig:"ENV" default:"development"`

	// HTTP
	MaxBodyBytes     int    `envconfig:"MAX_BODY_BYTES" default:"16777216"`
	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`

	// Image
	MaxImageDimension int `envconfig:"MAX_IMAGE_DIMENSION" default:"0"`

	// Classifier
	ClassifierProvider   string        `envconfig:"CLASSIFIER_PROVIDER" default:"deepface"`
	DeepFaceURL          string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceTimeout      time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"30s"`
	DeepFaceProbeTimeout time.Duration `envconfig:"DEEPFACE_PROBE_TIMEOUT" default:"5s"`
	DeepFaceDetector     string        `envconfig:"DEEPFACE_DETECTOR" default:"opencv"`
	DeepFaceRetryCount   int           `envconfig:"DEEPFACE_RETRY_COUNT" default:"0"`
	AWSRegion            string        `envconfig:"AWS_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive: %d", c.MaxBodyBytes)
	}
	if c.MaxImageDimension < 0 {
		return fmt.Errorf("MAX_IMAGE_DIMENSION must not be negative: %d", c.MaxImageDimension)
	}
	if c.DeepFaceRetryCount < 0 {
		return fmt.Errorf("DEEPFACE_RETRY_COUNT must not be negative: %d", c.DeepFaceRetryCount)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
