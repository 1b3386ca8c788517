package insightface

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

func newModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	return NewModel(config)
}

func TestModel_Load(t *testing.T) {
	m := newModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/load", r.URL.Path)

		var req LoadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "buffalo_l", req.Model)
		assert.Equal(t, -1, req.CtxID)
		assert.Equal(t, [2]int{640, 640}, req.DetSize)

		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, m.Load(context.Background()))
}

func TestModel_LoadFailure(t *testing.T) {
	m := newModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model pack not found"))
	})

	err := m.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffalo_l")
}

func TestModel_DetectAndEmbed(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []provider.Face
		wantErr  bool
	}{
		{
			name:     "two faces in model order",
			response: `{"faces":[{"bbox":[10.7,20.2,50.9,60.1],"det_score":0.91,"embedding":[0.1,0.2]},{"bbox":[0,0,5,5],"det_score":0.5,"embedding":[]}]}`,
			want: []provider.Face{
				{Box: provider.BoundingBox{X1: 10, Y1: 20, X2: 50, Y2: 60, Score: 0.91}, Embedding: []float64{0.1, 0.2}},
				{Box: provider.BoundingBox{X1: 0, Y1: 0, X2: 5, Y2: 5, Score: 0.5}, Embedding: []float64{}},
			},
		},
		{
			name:     "no faces",
			response: `{"faces":[]}`,
			want:     []provider.Face{},
		},
		{
			name:     "malformed bbox skipped",
			response: `{"faces":[{"bbox":[1,2],"det_score":0.9}]}`,
			want:     []provider.Face{},
		},
		{
			name:     "invalid json",
			response: `nope`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/faces", r.URL.Path)

				var req FacesRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.NotEmpty(t, req.Image)

				_, _ = w.Write([]byte(tt.response))
			})

			faces, err := m.DetectAndEmbed(context.Background(), imagecodec.New(64, 64))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, faces)
		})
	}
}

func TestModel_Meta(t *testing.T) {
	m := NewModel(DefaultConfig())
	assert.Equal(t, "arcface", m.Meta().Method)
	assert.Equal(t, "r100", m.Meta().Model)
	assert.Equal(t, "insightface", m.Name())
}
