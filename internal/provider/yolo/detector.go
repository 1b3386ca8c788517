// Package yolo adapts a YOLOv8-face runtime served over HTTP into a
// provider.FaceDetector.
package yolo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/remote"
)

// DefaultWeights are the public yolov8n-face weights
const DefaultWeights = "https://github.com/akanametov/yolov8-face/releases/download/v0.0.0/yolov8n-face.pt"

type Config struct {
	BaseURL string
	Timeout time.Duration
	Weights string
	// MinConfidence is forwarded to the runtime; 0 keeps its default
	MinConfidence float64
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5003",
		Timeout: 60 * time.Second,
		Weights: DefaultWeights,
	}
}

// Detector implements provider.FaceDetector
type Detector struct {
	client *remote.Client
	config Config
}

func NewDetector(config Config) *Detector {
	if config.Weights == "" {
		config.Weights = DefaultWeights
	}
	return &Detector{
		client: remote.NewClient(config.BaseURL, config.Timeout),
		config: config,
	}
}

func (d *Detector) Name() string { return "yolo" }

// Load points the runtime at the configured weights
func (d *Detector) Load(ctx context.Context) error {
	if err := d.client.Do(ctx, http.MethodPost, "/load", LoadRequest{Weights: d.config.Weights}, nil); err != nil {
		return fmt.Errorf("load weights %s: %w", d.config.Weights, err)
	}
	return nil
}

func (d *Detector) Detect(ctx context.Context, img *imagecodec.Image) ([]provider.BoundingBox, error) {
	payload, err := remote.EncodeImage(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	var resp PredictResponse
	req := PredictRequest{Image: payload, Conf: d.config.MinConfidence}
	if err := d.client.Do(ctx, http.MethodPost, "/predict", req, &resp); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	boxes := make([]provider.BoundingBox, 0, len(resp.Boxes))
	for _, b := range resp.Boxes {
		boxes = append(boxes, provider.BoundingBox{
			X1:    int(b.Xyxy[0]),
			Y1:    int(b.Xyxy[1]),
			X2:    int(b.Xyxy[2]),
			Y2:    int(b.Xyxy[3]),
			Score: b.Conf,
		})
	}
	return boxes, nil
}

var _ provider.FaceDetector = (*Detector)(nil)
