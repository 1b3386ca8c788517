package face

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/config"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/dlib"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/insightface"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider/yolo"
)

// ModelType selects the primary detect-and-embed backend
type ModelType string

const (
	ModelInsightFace ModelType = "insightface"
	ModelDeepFace    ModelType = "deepface"
	ModelDlib        ModelType = "dlib"
	ModelMock        ModelType = "mock"
	ModelNone        ModelType = "none"
)

// DetectorType selects the secondary box-only backend
type DetectorType string

const (
	DetectorYOLO        DetectorType = "yolo"
	DetectorDeepFace    DetectorType = "deepface"
	DetectorRekognition DetectorType = "rekognition"
	DetectorMock        DetectorType = "mock"
	DetectorNone        DetectorType = "none"
)

// Capabilities holds the two guarded model instances shared by every request
type Capabilities struct {
	Model    *provider.Model
	Detector *provider.Detector
}

// NewCapabilities builds both capabilities from configuration. Nothing is
// loaded here; see LoadAll.
//
// Environment variables:
//   - PRIMARY_MODEL: insightface, deepface, dlib, mock or none
//   - FACE_DETECTOR: yolo, deepface, rekognition, mock or none
//   - MODEL_TIMEOUT: per-invocation bound applied by the guard
func NewCapabilities(cfg *config.Config) (*Capabilities, error) {
	model, err := newFaceModel(cfg)
	if err != nil {
		return nil, err
	}

	detector, err := newFaceDetector(cfg)
	if err != nil {
		return nil, err
	}

	return &Capabilities{
		Model:    provider.NewModel(model, cfg.ModelTimeout),
		Detector: provider.NewDetector(detector, cfg.ModelTimeout),
	}, nil
}

func newFaceModel(cfg *config.Config) (provider.FaceModel, error) {
	switch ModelType(cfg.PrimaryModel) {
	case ModelInsightFace, "":
		c := insightface.DefaultConfig()
		setIfNotEmpty(&c.BaseURL, cfg.InsightFaceURL)
		setIfNotEmpty(&c.Model, cfg.InsightFaceModel)
		c.CtxID = cfg.InsightFaceCtxID
		return insightface.NewModel(c), nil

	case ModelDeepFace:
		return deepface.NewModel(deepfaceConfig(cfg)), nil

	case ModelDlib:
		c := dlib.DefaultConfig()
		setIfNotEmpty(&c.ModelsDir, cfg.DlibModelsDir)
		return dlib.NewModel(c), nil

	case ModelMock:
		return mock.NewModel(), nil

	case ModelNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown primary model: %s (supported: %s, %s, %s, %s, %s)",
			cfg.PrimaryModel, ModelInsightFace, ModelDeepFace, ModelDlib, ModelMock, ModelNone)
	}
}

func newFaceDetector(cfg *config.Config) (provider.FaceDetector, error) {
	switch DetectorType(cfg.FaceDetector) {
	case DetectorYOLO, "":
		c := yolo.DefaultConfig()
		setIfNotEmpty(&c.BaseURL, cfg.YOLOURL)
		setIfNotEmpty(&c.Weights, cfg.YOLOFaceWeights)
		return yolo.NewDetector(c), nil

	case DetectorDeepFace:
		return deepface.NewDetector(deepfaceConfig(cfg)), nil

	case DetectorRekognition:
		c := rekognition.DefaultConfig()
		setIfNotEmpty(&c.Region, cfg.AWSRegion)
		return rekognition.NewDetector(c), nil

	case DetectorMock:
		return mock.NewDetector(), nil

	case DetectorNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown face detector: %s (supported: %s, %s, %s, %s, %s)",
			cfg.FaceDetector, DetectorYOLO, DetectorDeepFace, DetectorRekognition, DetectorMock, DetectorNone)
	}
}

func deepfaceConfig(cfg *config.Config) deepface.Config {
	c := deepface.DefaultConfig()
	setIfNotEmpty(&c.BaseURL, cfg.DeepFaceURL)
	setIfNotEmpty(&c.Model, cfg.DeepFaceModel)
	setIfNotEmpty(&c.Detector, cfg.DeepFaceDetector)
	return c
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// LoadAll loads both capabilities concurrently and returns once both are
// resolved. Load failures leave the capability unavailable and are logged,
// never returned.
func (c *Capabilities) LoadAll(ctx context.Context, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	type loader struct {
		kind string
		name string
		load func(context.Context) error
	}

	loaders := []loader{
		{kind: "model", name: c.Model.Name(), load: c.Model.Load},
		{kind: "detector", name: c.Detector.Name(), load: c.Detector.Load},
	}

	var wg sync.WaitGroup
	for _, l := range loaders {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Now()
			if err := l.load(ctx); err != nil {
				logger.WarnContext(ctx, "capability unavailable",
					"kind", l.kind,
					"name", l.name,
					"error", err,
				)
				return
			}
			logger.InfoContext(ctx, "capability loaded",
				"kind", l.kind,
				"name", l.name,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()
	}
	wg.Wait()
}

// Resolved reports whether both load attempts have finished
func (c *Capabilities) Resolved() bool {
	return c.Model.State() != provider.StateUninitialized &&
		c.Detector.State() != provider.StateUninitialized
}

// CapabilityStatus is the externally visible state of one capability
type CapabilityStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// Status reports both capabilities keyed by role
func (c *Capabilities) Status() map[string]CapabilityStatus {
	return map[string]CapabilityStatus{
		"model":    {Name: c.Model.Name(), State: c.Model.State().String()},
		"detector": {Name: c.Detector.Name(), State: c.Detector.State().String()},
	}
}
