//go:build dlib

package dlib

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kagami/go-face"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

// Model implements provider.FaceModel on top of go-face
type Model struct {
	config Config

	mu         sync.Mutex
	recognizer *face.Recognizer
}

func NewModel(config Config) *Model {
	return &Model{config: config}
}

func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := face.NewRecognizer(m.config.ModelsDir)
	if err != nil {
		return fmt.Errorf("init recognizer from %s: %w", m.config.ModelsDir, err)
	}
	m.recognizer = rec
	return nil
}

// DetectAndEmbed feeds the image as JPEG, the format go-face decodes natively
func (m *Model) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error) {
	data, err := img.JPEG()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recognizer == nil {
		return nil, fmt.Errorf("recognizer not loaded")
	}

	found, err := m.recognizer.Recognize(data)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	faces := make([]provider.Face, 0, len(found))
	for _, f := range found {
		faces = append(faces, provider.Face{
			Box: provider.BoundingBox{
				X1:    f.Rectangle.Min.X,
				Y1:    f.Rectangle.Min.Y,
				X2:    f.Rectangle.Max.X,
				Y2:    f.Rectangle.Max.Y,
				Score: 1,
			},
			Embedding: padDescriptor([descriptorSize]float32(f.Descriptor)),
		})
	}
	return faces, nil
}

// Close releases the dlib models
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recognizer != nil {
		m.recognizer.Close()
		m.recognizer = nil
	}
}
