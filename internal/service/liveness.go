package service

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
)

// LivenessEstimator derives coarse presence signals from the secondary
// detector. Gaze and head pose are not estimated and are always reported
// as "looking at camera" with a zero pose.
type LivenessEstimator struct {
	detector FaceDetector
	logger   *slog.Logger
}

func NewLivenessEstimator(detector FaceDetector, logger *slog.Logger) *LivenessEstimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LivenessEstimator{detector: detector, logger: logger}
}

// Compute decodes raw and runs ComputeImage. Decoding is the only failure.
func (e *LivenessEstimator) Compute(ctx context.Context, raw []byte) (domain.LivenessMetrics, error) {
	img, err := imagecodec.Decode(raw)
	if err != nil {
		return domain.LivenessMetrics{}, domain.ErrInvalidImage.WithError(err)
	}
	return e.ComputeImage(ctx, img), nil
}

func (e *LivenessEstimator) ComputeImage(ctx context.Context, img *imagecodec.Image) domain.LivenessMetrics {
	count := 0
	if e.detector.Available() {
		boxes, err := e.detector.Detect(ctx, img)
		if err != nil {
			e.logger.WarnContext(ctx, "face count unavailable", "error", err)
		} else {
			count = len(boxes)
		}
	}

	return domain.LivenessMetrics{
		FacesCount:    count,
		MultipleFaces: count > 1,
		LookingAway:   false,
		HeadPose:      domain.HeadPose{},
	}
}
