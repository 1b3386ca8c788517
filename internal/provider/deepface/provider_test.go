package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Config {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	return config
}

func TestModel_DetectAndEmbed(t *testing.T) {
	config := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(RepresentResponse{
			Results: []RepresentResult{
				{Embedding: []float64{1, 2}, FacialArea: FacialArea{X: 10, Y: 20, W: 30, H: 40}, FaceConfidence: 0.8},
			},
		})
	})

	m := NewModel(config)
	faces, err := m.DetectAndEmbed(context.Background(), imagecodec.New(64, 64))
	require.NoError(t, err)
	require.Len(t, faces, 1)

	assert.Equal(t, provider.BoundingBox{X1: 10, Y1: 20, X2: 40, Y2: 60, Score: 0.8}, faces[0].Box)
	assert.Equal(t, []float64{1, 2}, faces[0].Embedding)
	assert.Equal(t, "facenet", m.Meta().Method)
	assert.Equal(t, "Facenet512", m.Meta().Model)
}

func TestModel_NoFace(t *testing.T) {
	config := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Face could not be detected"}`))
	})

	faces, err := NewModel(config).DetectAndEmbed(context.Background(), imagecodec.New(8, 8))
	assert.NoError(t, err)
	assert.Empty(t, faces)
}

func TestModel_ServerError(t *testing.T) {
	config := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewModel(config).DetectAndEmbed(context.Background(), imagecodec.New(8, 8))
	assert.Error(t, err)
}

func TestDetector_Detect(t *testing.T) {
	config := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{
			Results: []AnalyzeResult{
				{Region: FacialArea{X: 0, Y: 0, W: 10, H: 10}},
				{Region: FacialArea{X: 5, Y: 5, W: 20, H: 20}},
			},
		})
	})

	d := NewDetector(config)
	boxes, err := d.Detect(context.Background(), imagecodec.New(64, 64))
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	assert.Equal(t, 25, boxes[1].X2)
}

func TestLoad_PingsAPI(t *testing.T) {
	config := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, NewModel(config).Load(context.Background()))
	assert.NoError(t, NewDetector(config).Load(context.Background()))
}
