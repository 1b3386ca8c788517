package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/config"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/face"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/service"
)

const version = "0.1.0"

// options are the persistent flags shared by every subcommand
type options struct {
	model     string
	detector  string
	verbose   bool
	threshold float64
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "visionctl",
		Short:         "Face reference and verification tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.PersistentFlags().StringVar(&opts.model, "model", "", "primary model override (insightface, deepface, dlib, mock, none)")
	root.PersistentFlags().StringVar(&opts.detector, "detector", "", "face detector override (yolo, deepface, rekognition, mock, none)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log model loading and fallbacks to stderr")

	root.AddCommand(
		newEmbedCmd(opts),
		newVerifyCmd(opts),
		newCompareCmd(),
	)

	return root
}

// buildService loads configuration, applies flag overrides and blocks until
// both capabilities resolved
func buildService(ctx context.Context, cmd *cobra.Command, opts *options) (*service.FaceService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.model != "" {
		cfg.PrimaryModel = opts.model
	}
	if opts.detector != "" {
		cfg.FaceDetector = opts.detector
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	caps, err := face.NewCapabilities(cfg)
	if err != nil {
		return nil, err
	}
	caps.LoadAll(ctx, logger)

	pipeline := service.NewEmbeddingPipeline(caps.Model, caps.Detector, logger)
	liveness := service.NewLivenessEstimator(caps.Detector, logger)

	threshold := cfg.VerifyThreshold
	if opts.threshold > 0 {
		threshold = opts.threshold
	}

	svc := service.NewFaceService(pipeline, liveness, nil, logger).
		WithRequireFace(cfg.RequireFaceOnReference)
	if threshold > 0 {
		svc.WithThreshold(threshold)
	}
	return svc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readEmbedding accepts either a bare JSON array or an object with an
// "embedding" field, as printed by the embed command
func readEmbedding(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var bare []float64
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if wrapped.Embedding == nil {
		return nil, fmt.Errorf("%s: %w", path, errNoEmbedding)
	}
	return wrapped.Embedding, nil
}

var errNoEmbedding = errors.New("no embedding field")
