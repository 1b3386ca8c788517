package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/similarity"
)

// FaceModel is the primary model as seen by the pipeline. *provider.Model
// satisfies it.
type FaceModel interface {
	Available() bool
	Meta() domain.ReferenceMeta
	DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error)
}

// FaceDetector is the secondary detector. *provider.Detector satisfies it.
type FaceDetector interface {
	Available() bool
	Detect(ctx context.Context, img *imagecodec.Image) ([]provider.BoundingBox, error)
}

// Stage names the pipeline step that produced an embedding.
type Stage string

const (
	StagePrimary      Stage = "primary"
	StageDetectorCrop Stage = "detector_crop"
	StageFallback     Stage = "fallback"
)

type EmbeddingResult struct {
	Vector []float64
	Stage  Stage
}

// EmbeddingPipeline always yields a domain.EmbeddingDimension vector for a
// decodable image. Model failures only move it to the next stage; when no
// stage succeeds the result is all zeros.
type EmbeddingPipeline struct {
	model    FaceModel
	detector FaceDetector
	logger   *slog.Logger
}

func NewEmbeddingPipeline(model FaceModel, detector FaceDetector, logger *slog.Logger) *EmbeddingPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingPipeline{
		model:    model,
		detector: detector,
		logger:   logger,
	}
}

// Meta describes the vectors this pipeline produces.
func (p *EmbeddingPipeline) Meta() domain.ReferenceMeta {
	return p.model.Meta()
}

// Embed decodes raw and runs EmbedImage. Decoding is the only failure.
func (p *EmbeddingPipeline) Embed(ctx context.Context, raw []byte) (EmbeddingResult, error) {
	img, err := imagecodec.Decode(raw)
	if err != nil {
		return EmbeddingResult{}, domain.ErrInvalidImage.WithError(err)
	}
	return p.EmbedImage(ctx, img), nil
}

// EmbedImage runs primary -> detector crop -> zeros. At most two primary
// calls and one detector call are made.
func (p *EmbeddingPipeline) EmbedImage(ctx context.Context, img *imagecodec.Image) EmbeddingResult {
	if p.model.Available() {
		if v, ok := p.primary(ctx, img); ok {
			return EmbeddingResult{Vector: v, Stage: StagePrimary}
		}

		if p.detector.Available() {
			if v, ok := p.detectorCrop(ctx, img); ok {
				return EmbeddingResult{Vector: v, Stage: StageDetectorCrop}
			}
		}
	}

	p.logger.DebugContext(ctx, "embedding fell back to zeros",
		"width", img.Width,
		"height", img.Height,
	)
	return EmbeddingResult{Vector: domain.ZeroEmbedding(), Stage: StageFallback}
}

func (p *EmbeddingPipeline) primary(ctx context.Context, img *imagecodec.Image) ([]float64, bool) {
	faces, err := p.model.DetectAndEmbed(ctx, img)
	if err != nil {
		p.logFailure(ctx, "primary", err)
		return nil, false
	}
	return usableLargest(faces)
}

func (p *EmbeddingPipeline) detectorCrop(ctx context.Context, img *imagecodec.Image) ([]float64, bool) {
	boxes, err := p.detector.Detect(ctx, img)
	if err != nil {
		p.logFailure(ctx, "detector", err)
		return nil, false
	}

	box, ok := provider.LargestBox(boxes)
	if !ok {
		return nil, false
	}

	box = box.Clamp(img.Width, img.Height)
	if box.Degenerate() {
		p.logger.DebugContext(ctx, "detector box degenerate after clamping", "box", box)
		return nil, false
	}

	faces, err := p.model.DetectAndEmbed(ctx, img.Crop(box.Rect()))
	if err != nil {
		p.logFailure(ctx, "primary_on_crop", err)
		return nil, false
	}
	return usableLargest(faces)
}

func usableLargest(faces []provider.Face) ([]float64, bool) {
	face, ok := provider.LargestFace(faces)
	if !ok || !similarity.Usable(face.Embedding, domain.EmbeddingDimension) {
		return nil, false
	}
	out := make([]float64, len(face.Embedding))
	copy(out, face.Embedding)
	return out, true
}

func (p *EmbeddingPipeline) logFailure(ctx context.Context, stage string, err error) {
	attrs := []any{"stage", stage, "error", err}
	var f *provider.Failure
	if errors.As(err, &f) {
		attrs = append(attrs, "model", f.Model, "kind", f.Kind.String())
	}
	p.logger.WarnContext(ctx, "model call failed", attrs...)
}
