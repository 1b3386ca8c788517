package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/provider"
)

// minSide é o menor lado (em pixels) em que o mock "encontra" uma face
const minSide = 8

// Model implementa provider.FaceModel para testes e desenvolvimento.
// Toda imagem com lados >= minSide tem exatamente uma face ocupando o quadro
// inteiro e o embedding é derivado do hash dos pixels.
type Model struct{}

// NewModel cria uma nova instância do mock
func NewModel() *Model {
	return &Model{}
}

func (m *Model) Name() string { return "mock" }

func (m *Model) Meta() domain.ReferenceMeta {
	return domain.ReferenceMeta{Method: "mock", Model: "sha256"}
}

func (m *Model) Load(ctx context.Context) error { return nil }

// DetectAndEmbed gera embedding determinístico baseado no hash da imagem
func (m *Model) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]provider.Face, error) {
	if tooSmall(img) {
		return nil, nil
	}

	return []provider.Face{{
		Box:       fullFrame(img),
		Embedding: GenerateEmbedding(img.Pix),
	}}, nil
}

// Detector implementa provider.FaceDetector devolvendo o quadro inteiro
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) Name() string { return "mock" }

func (d *Detector) Load(ctx context.Context) error { return nil }

func (d *Detector) Detect(ctx context.Context, img *imagecodec.Image) ([]provider.BoundingBox, error) {
	if tooSmall(img) {
		return nil, nil
	}
	return []provider.BoundingBox{fullFrame(img)}, nil
}

func tooSmall(img *imagecodec.Image) bool {
	return img.Empty() || img.Width < minSide || img.Height < minSide
}

func fullFrame(img *imagecodec.Image) provider.BoundingBox {
	return provider.BoundingBox{X1: 0, Y1: 0, X2: img.Width, Y2: img.Height, Score: 0.99}
}

// GenerateEmbedding gera um vetor unitário de domain.EmbeddingDimension
// posições a partir do sha256 dos dados
func GenerateEmbedding(data []byte) []float64 {
	seed := sha256.Sum256(data)
	embedding := make([]float64, domain.EmbeddingDimension)

	// expande o hash em blocos: sha256(seed || contador)
	var block [sha256.Size]byte
	var buf [sha256.Size + 4]byte
	copy(buf[:], seed[:])
	for i := range embedding {
		if i%sha256.Size == 0 {
			binary.BigEndian.PutUint32(buf[sha256.Size:], uint32(i/sha256.Size)) // #nosec G115 - i < EmbeddingDimension
			block = sha256.Sum256(buf[:])
		}
		embedding[i] = (float64(block[i%sha256.Size])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return embedding
	}

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var (
	_ provider.FaceModel    = (*Model)(nil)
	_ provider.FaceDetector = (*Detector)(nil)
)
