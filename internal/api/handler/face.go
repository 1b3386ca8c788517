package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/service"
)

// FaceService interface for the service
type FaceService interface {
	CreateReference(ctx context.Context, in service.CreateReferenceInput) (*domain.Reference, error)
	SaveReference(ctx context.Context, sessionID string, embedding []float64, meta *domain.ReferenceMeta) (*domain.FaceReference, error)
	GetReference(ctx context.Context, sessionID string) (*domain.FaceReference, error)
	DeleteReference(ctx context.Context, sessionID string) error
	Verify(ctx context.Context, in service.VerifyInput) (*domain.VerifyResult, error)
}

// FaceHandler handles face-related requests
type FaceHandler struct {
	service FaceService
	logger  *slog.Logger
}

// NewFaceHandler creates a new FaceHandler instance
func NewFaceHandler(service FaceService, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		service: service,
		logger:  logger,
	}
}

// ReferenceRequest body for the reference endpoint
type ReferenceRequest struct {
	Image     string `json:"image"`
	SessionID string `json:"sessionId,omitempty"`
}

// SaveReferenceRequest body for the save endpoint
type SaveReferenceRequest struct {
	SessionID string                `json:"sessionId"`
	Embedding []float64             `json:"embedding"`
	Meta      *domain.ReferenceMeta `json:"meta,omitempty"`
}

// SaveReferenceResponse response for the save endpoint
type SaveReferenceResponse struct {
	ReferenceID string `json:"referenceId"`
	SessionID   string `json:"sessionId"`
}

// StoredReferenceResponse response for the get reference endpoint
type StoredReferenceResponse struct {
	ReferenceID string               `json:"referenceId"`
	SessionID   string               `json:"sessionId"`
	Embedding   []float64            `json:"embedding"`
	Meta        domain.ReferenceMeta `json:"meta"`
	CreatedAt   string               `json:"createdAt"`
	UpdatedAt   string               `json:"updatedAt"`
}

// VerifyRequest body for the verify endpoint
type VerifyRequest struct {
	Image              string    `json:"image"`
	ReferenceEmbedding []float64 `json:"referenceEmbedding,omitempty"`
	SessionID          string    `json:"sessionId,omitempty"`
}

// CreateReference POST /face/reference - compute a reference embedding
func (h *FaceHandler) CreateReference(c *fiber.Ctx) error {
	var req ReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	imageBytes, err := decodeImageField(req.Image)
	if err != nil {
		return err
	}

	ref, err := h.service.CreateReference(c.UserContext(), service.CreateReferenceInput{
		Image:     imageBytes,
		SessionID: strings.TrimSpace(req.SessionID),
	})
	if err != nil {
		return err
	}

	return c.JSON(ref)
}

// SaveReference POST /face/reference/save - persist a precomputed embedding
func (h *FaceHandler) SaveReference(c *fiber.Ctx) error {
	var req SaveReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	ref, err := h.service.SaveReference(c.UserContext(), strings.TrimSpace(req.SessionID), req.Embedding, req.Meta)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(SaveReferenceResponse{
		ReferenceID: ref.ID.String(),
		SessionID:   ref.SessionID,
	})
}

// GetReference GET /face/reference/:session_id - read a stored reference
func (h *FaceHandler) GetReference(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return err
	}

	ref, err := h.service.GetReference(c.UserContext(), sessionID)
	if err != nil {
		return err
	}

	return c.JSON(StoredReferenceResponse{
		ReferenceID: ref.ID.String(),
		SessionID:   ref.SessionID,
		Embedding:   ref.Embedding,
		Meta:        ref.Meta,
		CreatedAt:   ref.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   ref.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// DeleteReference DELETE /face/reference/:session_id - drop a stored reference
func (h *FaceHandler) DeleteReference(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteReference(c.UserContext(), sessionID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Verify POST /face/verify - score a live photo against a reference
func (h *FaceHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if len(req.ReferenceEmbedding) == 0 && sessionID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("referenceEmbedding or sessionId is required"))
	}

	imageBytes, err := decodeImageField(req.Image)
	if err != nil {
		return err
	}

	result, err := h.service.Verify(c.UserContext(), service.VerifyInput{
		Image:              imageBytes,
		ReferenceEmbedding: req.ReferenceEmbedding,
		SessionID:          sessionID,
	})
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// decodeImageField turns the base64 image field into raw bytes
func decodeImageField(image string) ([]byte, error) {
	if strings.TrimSpace(image) == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	imageBytes, err := imagecodec.DecodeBase64(image)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}

func sessionParam(c *fiber.Ctx) (string, error) {
	sessionID := strings.TrimSpace(c.Params("session_id"))
	if sessionID == "" {
		return "", domain.ErrValidationFailed.WithError(errors.New("session_id is required"))
	}
	return sessionID, nil
}
