package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

func TestLivenessEstimator_Compute(t *testing.T) {
	box := provider.BoundingBox{X2: 10, Y2: 10}

	tests := []struct {
		name       string
		setupMocks func(*MockFaceDetector)
		want       domain.LivenessMetrics
	}{
		{
			name: "single face",
			setupMocks: func(d *MockFaceDetector) {
				d.On("Available").Return(true)
				d.On("Detect", mock.Anything, mock.Anything).Return([]provider.BoundingBox{box}, nil)
			},
			want: domain.LivenessMetrics{FacesCount: 1},
		},
		{
			name: "three faces",
			setupMocks: func(d *MockFaceDetector) {
				d.On("Available").Return(true)
				d.On("Detect", mock.Anything, mock.Anything).Return([]provider.BoundingBox{box, box, box}, nil)
			},
			want: domain.LivenessMetrics{FacesCount: 3, MultipleFaces: true},
		},
		{
			name: "no faces",
			setupMocks: func(d *MockFaceDetector) {
				d.On("Available").Return(true)
				d.On("Detect", mock.Anything, mock.Anything).Return([]provider.BoundingBox{}, nil)
			},
			want: domain.LivenessMetrics{},
		},
		{
			name: "detector failure counts zero",
			setupMocks: func(d *MockFaceDetector) {
				d.On("Available").Return(true)
				d.On("Detect", mock.Anything, mock.Anything).Return(nil, &provider.Failure{Kind: provider.FailureInference, Model: "yolo"})
			},
			want: domain.LivenessMetrics{},
		},
		{
			name: "detector unavailable",
			setupMocks: func(d *MockFaceDetector) {
				d.On("Available").Return(false)
			},
			want: domain.LivenessMetrics{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &MockFaceDetector{}
			tt.setupMocks(detector)

			e := NewLivenessEstimator(detector, nil)
			got, err := e.Compute(context.Background(), pngBytes(t, 32, 32))

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.LookingAway)
			assert.Equal(t, domain.HeadPose{}, got.HeadPose)
			detector.AssertExpectations(t)
		})
	}
}

func TestLivenessEstimator_DecodeError(t *testing.T) {
	e := NewLivenessEstimator(&MockFaceDetector{}, nil)
	_, err := e.Compute(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}
