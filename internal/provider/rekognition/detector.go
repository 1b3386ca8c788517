package rekognition

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
const maxImageSize = 5 * 1024 * 1024

type Config struct {
	Region string
	// MinConfidence drops detections below it, on the 0-100 AWS scale
	MinConfidence float32
}

func DefaultConfig() Config {
	return Config{Region: "us-east-1", MinConfidence: 50}
}

// Detector implements provider.FaceDetector with the DetectFaces API.
// Rekognition does not expose embeddings, so it can only serve as the
// secondary detector.
type Detector struct {
	cfg Config

	mu     sync.RWMutex
	client RekognitionAPI
}

// Option configures a Detector
type Option func(*Detector)

// WithClient injects an API client, skipping AWS config resolution in Load
func WithClient(api RekognitionAPI) Option {
	return func(d *Detector) {
		d.client = api
	}
}

func NewDetector(cfg Config, opts ...Option) *Detector {
	d := &Detector{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) Name() string { return "rekognition" }

func (d *Detector) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return nil
	}

	client, err := NewClient(ctx, d.cfg)
	if err != nil {
		return fmt.Errorf("create rekognition client: %w", err)
	}
	d.client = client
	return nil
}

// Detect returns pixel boxes in the order AWS reports them. Images AWS
// rejects as unreadable count as "no faces".
func (d *Detector) Detect(ctx context.Context, img *imagecodec.Image) ([]provider.BoundingBox, error) {
	d.mu.RLock()
	client := d.client
	d.mu.RUnlock()
	if client == nil {
		return nil, ErrNotLoaded
	}

	data, err := img.JPEG()
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	output, err := client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: data},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		noFace, parsed := parseError(err)
		if noFace {
			return nil, nil
		}
		return nil, fmt.Errorf("detect faces: %w", parsed)
	}

	boxes := make([]provider.BoundingBox, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}
		confidence := aws.ToFloat32(detail.Confidence)
		if confidence < d.cfg.MinConfidence {
			continue
		}
		boxes = append(boxes, toPixels(detail.BoundingBox, confidence, img.Width, img.Height))
	}

	return boxes, nil
}

// toPixels converts the ratio box AWS returns into pixel coordinates. Ratios
// may fall outside [0,1] for faces cut by the frame; callers clamp.
func toPixels(b *types.BoundingBox, confidence float32, width, height int) provider.BoundingBox {
	left := float64(aws.ToFloat32(b.Left))
	top := float64(aws.ToFloat32(b.Top))
	w := float64(aws.ToFloat32(b.Width))
	h := float64(aws.ToFloat32(b.Height))

	return provider.BoundingBox{
		X1:    int(math.Round(left * float64(width))),
		Y1:    int(math.Round(top * float64(height))),
		X2:    int(math.Round((left + w) * float64(width))),
		Y2:    int(math.Round((top + h) * float64(height))),
		Score: float64(confidence) / 100.0,
	}
}

var _ provider.FaceDetector = (*Detector)(nil)
