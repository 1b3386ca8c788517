package deepface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/remote"
)

var (
	ErrUnreachable = errors.New("deepface: api unreachable")
	// ErrNoFace is returned when enforce_detection rejects the image
	ErrNoFace = errors.New("deepface: no face detected")
)

// Config holds the configuration for the DeepFace client
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Model    string
	Detector string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:  "http://localhost:5005",
		Timeout:  30 * time.Second,
		Model:    "Facenet512",
		Detector: "retinaface",
	}
}

// Client is the HTTP client for DeepFace API
type Client struct {
	http   *remote.Client
	config Config
}

// NewClient creates a new DeepFace client
func NewClient(config Config) *Client {
	return &Client{
		http:   remote.NewClient(config.BaseURL, config.Timeout),
		config: config,
	}
}

// Ping checks that the API answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.http.Do(ctx, http.MethodGet, "/", nil, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}

// Represent calls POST /represent to generate face embeddings
func (c *Client) Represent(ctx context.Context, imageBase64 string) (*RepresentResponse, error) {
	req := RepresentRequest{
		Img:              imageBase64,
		Model:            c.config.Model,
		Detector:         c.config.Detector,
		EnforceDetection: true,
	}

	var resp RepresentResponse
	if err := c.http.Do(ctx, http.MethodPost, "/represent", req, &resp); err != nil {
		return nil, noFace(err)
	}

	return &resp, nil
}

// Analyze calls POST /analyze to detect faces in image
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (*AnalyzeResponse, error) {
	req := AnalyzeRequest{
		Img:              imageBase64,
		Actions:          []string{}, // empty = just detect face
		Detector:         c.config.Detector,
		EnforceDetection: true,
	}

	var resp AnalyzeResponse
	if err := c.http.Do(ctx, http.MethodPost, "/analyze", req, &resp); err != nil {
		return nil, noFace(err)
	}

	return &resp, nil
}

// DeepFace answers 400 "Face could not be detected" when enforce_detection is
// set and the image has no face.
func noFace(err error) error {
	var se *remote.StatusError
	if errors.As(err, &se) && remote.IsClientError(err) &&
		strings.Contains(strings.ToLower(se.Body), "could not be detected") {
		return ErrNoFace
	}
	return err
}
