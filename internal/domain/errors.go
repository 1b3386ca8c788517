package domain

import (
	"fmt"
	"net/http"
)

// AppError is an error a client can act on. Code and Message are rendered in
// the response envelope; Err stays in the logs.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same code, so copies made by WithError
// still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithDetails returns a copy carrying extra fields for the client
func (e *AppError) WithDetails(details map[string]any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// DimensionMismatch reports an embedding of length got
func DimensionMismatch(got int) *AppError {
	return ErrEmbeddingDimension.
		WithDetails(map[string]any{"expected": EmbeddingDimension, "got": got}).
		WithError(fmt.Errorf("expected %d values, got %d", EmbeddingDimension, got))
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: http.StatusInternalServerError,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrEmbeddingDimension = &AppError{
		Code:       "EMBEDDING_DIMENSION_MISMATCH",
		Message:    "Reference embedding has the wrong number of dimensions",
		StatusCode: http.StatusUnprocessableEntity,
	}

	// Reference store errors
	ErrReferenceNotFound = &AppError{
		Code:       "REFERENCE_NOT_FOUND",
		Message:    "No reference stored for this session",
		StatusCode: http.StatusNotFound,
	}

	ErrStoreDisabled = &AppError{
		Code:       "REFERENCE_STORE_DISABLED",
		Message:    "Reference persistence is not configured",
		StatusCode: http.StatusNotImplemented,
	}
)
