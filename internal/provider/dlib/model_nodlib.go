//go:build !dlib

package dlib

import (
	"context"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

// Model is the placeholder used when the binary is built without dlib
type Model struct {
	config Config
}

func NewModel(config Config) *Model {
	return &Model{config: config}
}

func (m *Model) Load(ctx context.Context) error {
	return ErrNotCompiled
}

func (m *Model) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error) {
	return nil, ErrNotCompiled
}

// Close is a no-op
func (m *Model) Close() {}
