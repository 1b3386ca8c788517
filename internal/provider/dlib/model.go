// Package dlib runs the dlib ResNet face recognizer in process through
// go-face. The cgo binding is only compiled with the "dlib" build tag; without
// it the model always reports unavailable.
package dlib

import (
	"errors"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

// ErrNotCompiled is the load error of a binary built without the dlib tag
var ErrNotCompiled = errors.New("dlib support not compiled in (build with -tags dlib)")

// descriptorSize is the length of a dlib face descriptor
const descriptorSize = 128

// Config points at the directory holding shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and mmod_human_face_detector.dat
type Config struct {
	ModelsDir string
}

func DefaultConfig() Config {
	return Config{ModelsDir: "models"}
}

func (m *Model) Name() string { return "dlib" }

func (m *Model) Meta() domain.ReferenceMeta {
	return domain.ReferenceMeta{Method: "dlib", Model: "resnet_v1"}
}

// padDescriptor widens a 128-d descriptor to the service dimension with
// trailing zeros. Dot products and norms are unchanged, so cosine scores match
// the native descriptor.
func padDescriptor(d [descriptorSize]float32) []float64 {
	out := domain.ZeroEmbedding()
	for i, v := range d {
		out[i] = float64(v)
	}
	return out
}

var _ provider.FaceModel = (*Model)(nil)
