package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/audit"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/similarity"
)

// DefaultThreshold is the match score at or above which a verification passes
const DefaultThreshold = 0.85

type ReferenceRepositoryInterface interface {
	Upsert(ctx context.Context, ref *domain.FaceReference) error
	GetBySession(ctx context.Context, sessionID string) (*domain.FaceReference, error)
	Delete(ctx context.Context, sessionID string) error
}

type CreateReferenceInput struct {
	Image     []byte
	SessionID string
}

type VerifyInput struct {
	Image              []byte
	ReferenceEmbedding []float64
	SessionID          string
}

type FaceService struct {
	pipeline    *EmbeddingPipeline
	liveness    *LivenessEstimator
	refRepo     ReferenceRepositoryInterface
	threshold   float64
	requireFace bool
	auditor     audit.Logger
	logger      *slog.Logger
}

// NewFaceService wires the service. refRepo may be nil, which disables the
// session-scoped reference store.
func NewFaceService(
	pipeline *EmbeddingPipeline,
	liveness *LivenessEstimator,
	refRepo ReferenceRepositoryInterface,
	logger *slog.Logger,
) *FaceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FaceService{
		pipeline:  pipeline,
		liveness:  liveness,
		refRepo:   refRepo,
		threshold: DefaultThreshold,
		auditor:   &audit.NoOpLogger{},
		logger:    logger,
	}
}

// WithAuditor records every biometric operation through auditor
func (s *FaceService) WithAuditor(auditor audit.Logger) *FaceService {
	if auditor != nil {
		s.auditor = auditor
	}
	return s
}

func (s *FaceService) WithThreshold(threshold float64) *FaceService {
	s.threshold = threshold
	return s
}

// WithRequireFace makes CreateReference reject images where no stage found a
// face instead of returning the zero vector.
func (s *FaceService) WithRequireFace(require bool) *FaceService {
	s.requireFace = require
	return s
}

func (s *FaceService) Threshold() float64 {
	return s.threshold
}

func (s *FaceService) StoreEnabled() bool {
	return s.refRepo != nil
}

func (s *FaceService) CreateReference(ctx context.Context, in CreateReferenceInput) (*domain.Reference, error) {
	res, err := s.pipeline.Embed(ctx, in.Image)
	if err != nil {
		s.record(ctx, audit.EventReferenceCreated, in.SessionID, "", err, nil)
		return nil, err
	}

	if s.requireFace && res.Stage == StageFallback {
		s.record(ctx, audit.EventReferenceCreated, in.SessionID, res.Stage, domain.ErrNoFaceDetected, nil)
		return nil, domain.ErrNoFaceDetected
	}

	ref := &domain.Reference{
		Embedding: res.Vector,
		Meta:      s.pipeline.Meta(),
	}

	if in.SessionID != "" {
		stored, err := s.SaveReference(ctx, in.SessionID, res.Vector, nil)
		if err != nil {
			s.record(ctx, audit.EventReferenceCreated, in.SessionID, res.Stage, err, nil)
			return nil, err
		}
		ref.ReferenceID = &stored.ID
		ref.SessionID = stored.SessionID
	}

	s.record(ctx, audit.EventReferenceCreated, in.SessionID, res.Stage, nil, nil)

	s.logger.InfoContext(ctx, "reference created",
		"stage", string(res.Stage),
		"session_id", in.SessionID,
	)

	return ref, nil
}

// SaveReference persists an embedding computed earlier. meta defaults to the
// configured model's meta.
func (s *FaceService) SaveReference(ctx context.Context, sessionID string, embedding []float64, meta *domain.ReferenceMeta) (*domain.FaceReference, error) {
	if s.refRepo == nil {
		return nil, domain.ErrStoreDisabled
	}
	if sessionID == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("sessionId is required"))
	}
	if len(embedding) != domain.EmbeddingDimension {
		return nil, domain.DimensionMismatch(len(embedding))
	}
	if !similarity.Usable(embedding, domain.EmbeddingDimension) {
		return nil, domain.ErrValidationFailed.WithError(errors.New("embedding values must be finite and within float32 range"))
	}

	ref := &domain.FaceReference{
		SessionID: sessionID,
		Embedding: embedding,
		Meta:      s.pipeline.Meta(),
	}
	if meta != nil {
		ref.Meta = *meta
	}

	if err := s.refRepo.Upsert(ctx, ref); err != nil {
		s.record(ctx, audit.EventReferenceSaved, sessionID, "", err, nil)
		return nil, fmt.Errorf("session %s: save reference: %w", sessionID, err)
	}

	s.record(ctx, audit.EventReferenceSaved, sessionID, "", nil, map[string]string{
		"reference_id": ref.ID.String(),
	})

	return ref, nil
}

func (s *FaceService) GetReference(ctx context.Context, sessionID string) (*domain.FaceReference, error) {
	if s.refRepo == nil {
		return nil, domain.ErrStoreDisabled
	}
	return s.refRepo.GetBySession(ctx, sessionID)
}

func (s *FaceService) DeleteReference(ctx context.Context, sessionID string) error {
	if s.refRepo == nil {
		return domain.ErrStoreDisabled
	}
	err := s.refRepo.Delete(ctx, sessionID)
	s.record(ctx, audit.EventReferenceDeleted, sessionID, "", err, nil)
	if err != nil {
		return fmt.Errorf("session %s: delete reference: %w", sessionID, err)
	}
	return nil
}

// Verify scores a live photo against a reference embedding. The reference is
// either given inline or loaded by session id. The image is decoded once and
// shared by the embedding pipeline and the liveness estimator, which run
// concurrently.
func (s *FaceService) Verify(ctx context.Context, in VerifyInput) (*domain.VerifyResult, error) {
	reference := in.ReferenceEmbedding
	if len(reference) == 0 && in.SessionID != "" {
		stored, err := s.GetReference(ctx, in.SessionID)
		if err != nil {
			return nil, err
		}
		reference = stored.Embedding
	}

	if len(reference) > 0 && len(reference) != domain.EmbeddingDimension {
		return nil, domain.DimensionMismatch(len(reference))
	}

	img, err := imagecodec.Decode(in.Image)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	var (
		live    EmbeddingResult
		metrics domain.LivenessMetrics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		live = s.pipeline.EmbedImage(gctx, img)
		return nil
	})
	g.Go(func() error {
		metrics = s.liveness.ComputeImage(gctx, img)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	score, err := similarity.Compare(live.Vector, reference)
	if err != nil {
		return nil, domain.ErrEmbeddingDimension.WithError(err)
	}

	result := &domain.VerifyResult{
		MatchScore:      score,
		LivenessMetrics: metrics,
		Verified:        metrics.FacesCount >= 1 && !metrics.MultipleFaces && score >= s.threshold,
	}

	s.record(ctx, audit.EventFaceVerified, in.SessionID, live.Stage, nil, map[string]string{
		"verified":    strconv.FormatBool(result.Verified),
		"faces_count": strconv.Itoa(metrics.FacesCount),
	})

	s.logger.InfoContext(ctx, "face verified",
		"stage", string(live.Stage),
		"match_score", score,
		"faces_count", metrics.FacesCount,
		"verified", result.Verified,
	)

	return result, nil
}

// record writes an audit event. Audit failures are logged and never fail the
// operation.
func (s *FaceService) record(ctx context.Context, eventType audit.EventType, sessionID string, stage Stage, opErr error, metadata map[string]string) {
	meta := s.pipeline.Meta()
	event := audit.Event{
		EventType: eventType,
		SessionID: sessionID,
		Model:     meta.Method + "/" + meta.Model,
		Stage:     string(stage),
		Success:   opErr == nil,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit event dropped",
			"event_type", string(eventType),
			"error", err,
		)
	}
}
