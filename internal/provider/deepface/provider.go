package deepface

import (
	"context"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/remote"
)

// Model implements provider.FaceModel using POST /represent
type Model struct {
	client *Client
	model  string
}

// NewModel creates a DeepFace-backed primary model
func NewModel(config Config) *Model {
	return &Model{client: NewClient(config), model: config.Model}
}

func (m *Model) Name() string { return "deepface" }

func (m *Model) Meta() domain.ReferenceMeta {
	return domain.ReferenceMeta{Method: "facenet", Model: m.model}
}

// Load only checks reachability: the API loads its weights lazily
func (m *Model) Load(ctx context.Context) error {
	return m.client.Ping(ctx)
}

func (m *Model) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error) {
	payload, err := remote.EncodeImage(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	resp, err := m.client.Represent(ctx, payload)
	if errors.Is(err, ErrNoFace) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("represent: %w", err)
	}

	faces := make([]provider.Face, 0, len(resp.Results))
	for _, r := range resp.Results {
		faces = append(faces, provider.Face{
			Box:       toBox(r.FacialArea, r.FaceConfidence),
			Embedding: r.Embedding,
		})
	}
	return faces, nil
}

// Detector implements provider.FaceDetector using POST /analyze
type Detector struct {
	client *Client
}

func NewDetector(config Config) *Detector {
	return &Detector{client: NewClient(config)}
}

func (d *Detector) Name() string { return "deepface" }

func (d *Detector) Load(ctx context.Context) error {
	return d.client.Ping(ctx)
}

func (d *Detector) Detect(ctx context.Context, img *imagecodec.Image) ([]provider.BoundingBox, error) {
	payload, err := remote.EncodeImage(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	resp, err := d.client.Analyze(ctx, payload)
	if errors.Is(err, ErrNoFace) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	boxes := make([]provider.BoundingBox, 0, len(resp.Results))
	for _, r := range resp.Results {
		boxes = append(boxes, toBox(r.Region, r.FaceConfidence))
	}
	return boxes, nil
}

func toBox(a FacialArea, score float64) provider.BoundingBox {
	return provider.BoundingBox{
		X1:    a.X,
		Y1:    a.Y,
		X2:    a.X + a.W,
		Y2:    a.Y + a.H,
		Score: score,
	}
}

var (
	_ provider.FaceModel    = (*Model)(nil)
	_ provider.FaceDetector = (*Detector)(nil)
)
