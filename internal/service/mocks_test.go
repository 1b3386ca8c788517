package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

type MockFaceModel struct {
	mock.Mock
}

func (m *MockFaceModel) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockFaceModel) Meta() domain.ReferenceMeta {
	return domain.ReferenceMeta{Method: "arcface", Model: "r100"}
}

func (m *MockFaceModel) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.Face), args.Error(1)
}

type MockFaceDetector struct {
	mock.Mock
}

func (m *MockFaceDetector) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockFaceDetector) Detect(ctx context.Context, img *imagecodec.Image) ([]provider.BoundingBox, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.BoundingBox), args.Error(1)
}

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Upsert(ctx context.Context, ref *domain.FaceReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) GetBySession(ctx context.Context, sessionID string) (*domain.FaceReference, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FaceReference), args.Error(1)
}

func (m *MockReferenceRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// pngBytes encodes a w x h image with a simple gradient.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i % 251)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// embedding returns a 512-d vector with v at every position.
func embedding(v float64) []float64 {
	e := make([]float64, domain.EmbeddingDimension)
	for i := range e {
		e[i] = v
	}
	return e
}

// onImage matches a decoded image of the given size.
func onImage(w, h int) interface{} {
	return mock.MatchedBy(func(img *imagecodec.Image) bool {
		return img.Width == w && img.Height == h
	})
}
