package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrReferenceNotFound,
			expected: "No reference stored for this session",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	// Test with nil error
	appErrNoWrap := ErrReferenceNotFound
	if got := appErrNoWrap.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("db connection failed")
	newErr := ErrInternal.WithError(underlying)

	if newErr.Code != ErrInternal.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrInternal.Code)
	}

	if newErr.StatusCode != ErrInternal.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrInternal.StatusCode)
	}

	if newErr.Err != underlying {
		t.Errorf("Err = %v, want %v", newErr.Err, underlying)
	}

	// Check errors.Is still works
	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}
}

func TestErrorsIs(t *testing.T) {
	// Test that errors.As works with AppError
	err := ErrReferenceNotFound.WithError(errors.New("no rows"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Errorf("errors.As should match AppError")
	}

	if appErr.Code != "REFERENCE_NOT_FOUND" {
		t.Errorf("Code = %v, want REFERENCE_NOT_FOUND", appErr.Code)
	}
}

func TestAppError_IsMatchesCode(t *testing.T) {
	wrapped := ErrInvalidImage.WithError(errors.New("unknown format"))

	if !errors.Is(wrapped, ErrInvalidImage) {
		t.Errorf("errors.Is should match the sentinel after WithError")
	}
	if errors.Is(wrapped, ErrValidationFailed) {
		t.Errorf("errors.Is should not match a different code")
	}
}

func TestDimensionMismatch(t *testing.T) {
	err := DimensionMismatch(128)

	if !errors.Is(err, ErrEmbeddingDimension) {
		t.Fatalf("DimensionMismatch should match ErrEmbeddingDimension")
	}
	if err.Details["expected"] != EmbeddingDimension || err.Details["got"] != 128 {
		t.Errorf("Details = %v", err.Details)
	}
	if ErrEmbeddingDimension.Details != nil {
		t.Errorf("sentinel must not be mutated, got %v", ErrEmbeddingDimension.Details)
	}
	if err.Err == nil {
		t.Errorf("DimensionMismatch should carry a cause for the logs")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err        *AppError
		code       string
		statusCode int
	}{
		{ErrInternal, "INTERNAL_ERROR", 500},
		{ErrBadRequest, "BAD_REQUEST", 400},
		{ErrNotFound, "NOT_FOUND", 404},
		{ErrInvalidImage, "INVALID_IMAGE", 422},
		{ErrNoFaceDetected, "NO_FACE_DETECTED", 422},
		{ErrValidationFailed, "VALIDATION_FAILED", 422},
		{ErrEmbeddingDimension, "EMBEDDING_DIMENSION_MISMATCH", 422},
		{ErrReferenceNotFound, "REFERENCE_NOT_FOUND", 404},
		{ErrStoreDisabled, "REFERENCE_STORE_DISABLED", 501},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %v, want %v", tt.err.StatusCode, tt.statusCode)
			}
		})
	}
}
