package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied      = "AccessDeniedException"
	errCodeUnrecognizedToken = "UnrecognizedClientException"
	errCodeInvalidImage      = "InvalidImageFormatException"
	errCodeInvalidParameter  = "InvalidParameterException"
)

var (
	ErrInvalidCredentials = errors.New("rekognition: invalid or missing AWS credentials")
	// ErrImageTooLarge is returned before calling DetectFaces with an oversized payload
	ErrImageTooLarge = errors.New("rekognition: image above DetectFaces size limit")
	ErrNotLoaded     = errors.New("rekognition: detector not loaded")
)

// RekognitionAPI is the subset of the AWS client used here
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// NewClient creates a Rekognition client using the AWS default credential chain.
// Credentials are resolved eagerly so a misconfigured environment fails at load.
func NewClient(ctx context.Context, cfg Config) (*rekognition.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	return rekognition.NewFromConfig(awsCfg), nil
}

// parseError maps AWS API errors onto package sentinels. noFace is set for
// errors that mean "no usable face in this image".
func parseError(err error) (noFace bool, mapped error) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied, errCodeUnrecognizedToken:
			return false, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		case errCodeInvalidImage, errCodeInvalidParameter:
			return true, nil
		}
	}
	return false, err
}
