package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port         int    `envconfig:"PORT" default:"5001"`
	Environment  string `envconfig:"ENV" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	MaxBodyBytes int    `envconfig:"MAX_BODY_BYTES" default:"15728640"`

	// Database (optional, enables the session reference store)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// Models
	PrimaryModel string        `envconfig:"PRIMARY_MODEL" default:"insightface"`
	FaceDetector string        `envconfig:"FACE_DETECTOR" default:"yolo"`
	ModelTimeout time.Duration `envconfig:"MODEL_TIMEOUT" default:"10s"`

	InsightFaceURL   string `envconfig:"INSIGHTFACE_URL" default:"http://localhost:5002"`
	InsightFaceModel string `envconfig:"INSIGHTFACE_MODEL" default:"buffalo_l"`
	InsightFaceCtxID int    `envconfig:"INSIGHTFACE_CTX_ID" default:"-1"`

	YOLOURL         string `envconfig:"YOLO_URL" default:"http://localhost:5003"`
	YOLOFaceWeights string `envconfig:"YOLO_FACE_WEIGHTS"`

	DeepFaceURL      string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel    string `envconfig:"DEEPFACE_MODEL" default:"Facenet512"`
	DeepFaceDetector string `envconfig:"DEEPFACE_DETECTOR" default:"retinaface"`

	DlibModelsDir string `envconfig:"DLIB_MODELS_DIR" default:"models"`
	AWSRegion     string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Verification
	VerifyThreshold        float64 `envconfig:"VERIFY_THRESHOLD" default:"0.85"`
	RequireFaceOnReference bool    `envconfig:"REQUIRE_FACE_ON_REFERENCE" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values envconfig accepts but the service cannot use
func (c *Config) Validate() error {
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive, got %s", c.ModelTimeout)
	}
	if c.VerifyThreshold < 0 || c.VerifyThreshold > 1 {
		return fmt.Errorf("VERIFY_THRESHOLD must be within [0,1], got %v", c.VerifyThreshold)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StoreEnabled reports whether a database is configured for session references
func (c *Config) StoreEnabled() bool {
	return c.DatabaseURL != ""
}
