// Package insightface adapts an InsightFace runtime (detector + ArcFace
// recognizer) served over HTTP into a provider.FaceModel.
package insightface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/remote"
)

// Config holds the runtime endpoint and the model selection sent at load time
type Config struct {
	BaseURL string
	Timeout time.Duration
	Model   string
	CtxID   int
	DetSize int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5002",
		Timeout: 60 * time.Second,
		Model:   "buffalo_l",
		CtxID:   -1,
		DetSize: 640,
	}
}

// Model implements provider.FaceModel
type Model struct {
	client *remote.Client
	config Config
}

func NewModel(config Config) *Model {
	return &Model{
		client: remote.NewClient(config.BaseURL, config.Timeout),
		config: config,
	}
}

func (m *Model) Name() string { return "insightface" }

// Meta is fixed: every buffalo pack ships the ArcFace r100-class recognizer
func (m *Model) Meta() domain.ReferenceMeta {
	return domain.ReferenceMeta{Method: "arcface", Model: "r100"}
}

// Load asks the runtime to prepare the model pack. It can take minutes the
// first time because weights are downloaded.
func (m *Model) Load(ctx context.Context) error {
	req := LoadRequest{
		Model:   m.config.Model,
		CtxID:   m.config.CtxID,
		DetSize: [2]int{m.config.DetSize, m.config.DetSize},
	}
	if err := m.client.Do(ctx, http.MethodPost, "/load", req, nil); err != nil {
		return fmt.Errorf("load %s: %w", m.config.Model, err)
	}
	return nil
}

func (m *Model) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error) {
	payload, err := remote.EncodeImage(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	var resp FacesResponse
	if err := m.client.Do(ctx, http.MethodPost, "/faces", FacesRequest{Image: payload}, &resp); err != nil {
		return nil, fmt.Errorf("faces: %w", err)
	}

	faces := make([]provider.Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.Box) < 4 {
			continue
		}
		faces = append(faces, provider.Face{
			Box: provider.BoundingBox{
				X1:    int(f.Box[0]),
				Y1:    int(f.Box[1]),
				X2:    int(f.Box[2]),
				Y2:    int(f.Box[3]),
				Score: f.Score,
			},
			Embedding: f.Embedding,
		})
	}
	return faces, nil
}

var _ provider.FaceModel = (*Model)(nil)
