package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ReferenceRequest is the body of POST /face/reference
type ReferenceRequest struct {
	Image     string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
	SessionID string `json:"sessionId,omitempty" example:"session-123"`
}

// ReferenceMeta describes the model that produced an embedding
type ReferenceMeta struct {
	Method string `json:"method" example:"arcface"`
	Model  string `json:"model" example:"r100"`
}

// ReferenceResponse is the response of POST /face/reference
type ReferenceResponse struct {
	Embedding   []float64     `json:"embedding" example:"0.012,-0.034,0.101"`
	Meta        ReferenceMeta `json:"meta"`
	ReferenceID string        `json:"referenceId,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID   string        `json:"sessionId,omitempty" example:"session-123"`
}

// SaveReferenceRequest is the body of POST /face/reference/save
type SaveReferenceRequest struct {
	SessionID string         `json:"sessionId" example:"session-123"`
	Embedding []float64      `json:"embedding" example:"0.012,-0.034,0.101"`
	Meta      *ReferenceMeta `json:"meta,omitempty"`
}

// SaveReferenceResponse is the response of POST /face/reference/save
type SaveReferenceResponse struct {
	ReferenceID string `json:"referenceId" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID   string `json:"sessionId" example:"session-123"`
}

// StoredReferenceResponse is the response of GET /face/reference/{session_id}
type StoredReferenceResponse struct {
	ReferenceID string        `json:"referenceId" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID   string        `json:"sessionId" example:"session-123"`
	Embedding   []float64     `json:"embedding" example:"0.012,-0.034,0.101"`
	Meta        ReferenceMeta `json:"meta"`
	CreatedAt   string        `json:"createdAt" example:"2024-01-01T00:00:00Z"`
	UpdatedAt   string        `json:"updatedAt" example:"2024-01-01T00:00:00Z"`
}

// VerifyRequest is the body of POST /face/verify
type VerifyRequest struct {
	Image              string    `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
	ReferenceEmbedding []float64 `json:"referenceEmbedding,omitempty" example:"0.012,-0.034,0.101"`
	SessionID          string    `json:"sessionId,omitempty" example:"session-123"`
}

// HeadPose in degrees
type HeadPose struct {
	Pitch float64 `json:"pitch" example:"0"`
	Yaw   float64 `json:"yaw" example:"0"`
	Roll  float64 `json:"roll" example:"0"`
}

// VerifyResponse is the response of POST /face/verify
type VerifyResponse struct {
	MatchScore    float64  `json:"matchScore" example:"0.93"`
	FacesCount    int      `json:"facesCount" example:"1"`
	MultipleFaces bool     `json:"multipleFaces" example:"false"`
	LookingAway   bool     `json:"lookingAway" example:"false"`
	HeadPose      HeadPose `json:"headPose"`
	Verified      bool     `json:"verified" example:"true"`
}

// CapabilityStatus is the load state of one model
type CapabilityStatus struct {
	Name  string `json:"name" example:"insightface"`
	State string `json:"state" example:"loaded"`
}

// ReadyResponse is the response of GET /ready
type ReadyResponse struct {
	Status       string                      `json:"status" example:"ready"`
	Capabilities map[string]CapabilityStatus `json:"capabilities"`
	Database     string                      `json:"database,omitempty" example:"ok"`
}

// HealthResponse is the response of GET /health
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
	// Details is set for EMBEDDING_DIMENSION_MISMATCH: {"expected": 512, "got": n}
	Details map[string]int `json:"details,omitempty"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var (
	errInvalidImage = response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity")
	errValidation   = response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity")
	errBadRequest   = response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request")
	errDimension    = response.New(ErrorResponse{Code: "EMBEDDING_DIMENSION_MISMATCH", Message: "Reference embedding has the wrong number of dimensions", Details: map[string]int{"expected": 512, "got": 128}}, "422", "Unprocessable Entity")
	errNotFound     = response.New(ErrorResponse{Code: "REFERENCE_NOT_FOUND", Message: "No reference stored for this session"}, "404", "Not Found")
	errStore        = response.New(ErrorResponse{Code: "REFERENCE_STORE_DISABLED", Message: "Reference persistence is not configured"}, "501", "Not Implemented")
	errTooLarge     = response.New(ErrorResponse{Code: "PAYLOAD_TOO_LARGE", Message: "Request Entity Too Large"}, "413", "Payload Too Large")
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
)

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Vision Service API",
		Version:     "v1.0.0",
		Description: "Face reference embeddings, 1:1 verification and coarse liveness signals",
		Host:        "localhost:5001",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /face/reference - Create reference embedding
		endpoint.New(
			endpoint.POST,
			"/face/reference",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Create a reference embedding"),
			endpoint.WithDescription("Computes the 512-dimensional embedding of the largest face. Returns a zero vector when no face is found. Stores the reference when sessionId is given and a database is configured."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ReferenceRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReferenceResponse{}, "200", "Reference computed"),
			}),
			endpoint.WithErrors([]response.Response{errBadRequest, errValidation, errInvalidImage, errTooLarge, errInternal}),
		),

		// POST /face/reference/save - Persist a reference embedding
		endpoint.New(
			endpoint.POST,
			"/face/reference/save",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Save a reference embedding for a session"),
			endpoint.WithDescription("Stores a precomputed embedding for the session, replacing any previous one"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(SaveReferenceRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SaveReferenceResponse{}, "201", "Reference stored"),
			}),
			endpoint.WithErrors([]response.Response{errBadRequest, errValidation, errDimension, errStore, errInternal}),
		),

		// GET /face/reference/{session_id} - Read a stored reference
		endpoint.New(
			endpoint.GET,
			"/face/reference/{session_id}",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Get the reference stored for a session"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Caller session identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StoredReferenceResponse{}, "200", "Reference found"),
			}),
			endpoint.WithErrors([]response.Response{errNotFound, errStore, errInternal}),
		),

		// DELETE /face/reference/{session_id} - Delete a stored reference
		endpoint.New(
			endpoint.DELETE,
			"/face/reference/{session_id}",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Delete the reference stored for a session"),
			endpoint.WithParams(
				parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Caller session identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Reference deleted"),
			}),
			endpoint.WithErrors([]response.Response{errNotFound, errStore, errInternal}),
		),

		// POST /face/verify - Verify a live photo
		endpoint.New(
			endpoint.POST,
			"/face/verify",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Verify a live photo against a reference"),
			endpoint.WithDescription("Scores the largest face against referenceEmbedding, or the reference stored for sessionId, and reports how many faces are in the frame"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(VerifyRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyResponse{}, "200", "Verification completed"),
			}),
			endpoint.WithErrors([]response.Response{errBadRequest, errValidation, errInvalidImage, errDimension, errNotFound, errTooLarge, errInternal}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Process is up"),
			}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("503 until both model load attempts resolved or while the database is unreachable"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReadyResponse{}, "200", "Ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ReadyResponse{}, "503", "Loading or degraded"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
