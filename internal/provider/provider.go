package provider

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
)

// FaceModel é o modelo principal: detecta faces e extrai um embedding por face
// numa única chamada.
type FaceModel interface {
	// Name identifica o backend nos logs e no /ready
	Name() string

	// Meta descreve o método e a variante do embedding gerado
	Meta() domain.ReferenceMeta

	// Load prepara o runtime do modelo. Chamado uma única vez.
	Load(ctx context.Context) error

	// DetectAndEmbed retorna as faces na ordem de confiança do próprio modelo.
	// Embedding pode vir vazio quando o modelo não conseguiu extrair.
	DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]Face, error)
}

// FaceDetector é o detector secundário: apenas caixas, sem embedding.
type FaceDetector interface {
	Name() string
	Load(ctx context.Context) error
	Detect(ctx context.Context, img *imagecodec.Image) ([]BoundingBox, error)
}

// BoundingBox is a face region in pixel coordinates of the image it was
// detected on. X2/Y2 are exclusive.
type BoundingBox struct {
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Score float64 `json:"score"`
}

// Area is width*height, 0 for inverted boxes.
func (b BoundingBox) Area() int64 {
	w := int64(b.X2) - int64(b.X1)
	h := int64(b.Y2) - int64(b.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Clamp limits the coordinates to [0,width] x [0,height].
func (b BoundingBox) Clamp(width, height int) BoundingBox {
	b.X1 = clampInt(b.X1, 0, width)
	b.X2 = clampInt(b.X2, 0, width)
	b.Y1 = clampInt(b.Y1, 0, height)
	b.Y2 = clampInt(b.Y2, 0, height)
	return b
}

// Degenerate reports a box with no usable pixels.
func (b BoundingBox) Degenerate() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Face is one detection from a FaceModel.
type Face struct {
	Box       BoundingBox `json:"box"`
	Embedding []float64   `json:"embedding,omitempty"`
}

// LargestBox picks the box with the largest area. Among equal areas the one
// reported first wins, so the choice is stable for a given model output.
func LargestBox(boxes []BoundingBox) (BoundingBox, bool) {
	return largest(boxes, func(b BoundingBox) BoundingBox { return b })
}

// LargestFace applies the LargestBox rule to faces.
func LargestFace(faces []Face) (Face, bool) {
	return largest(faces, func(f Face) BoundingBox { return f.Box })
}

func largest[T any](items []T, box func(T) BoundingBox) (T, bool) {
	var best T
	if len(items) == 0 {
		return best, false
	}

	best = items[0]
	bestArea := box(best).Area()
	for _, it := range items[1:] {
		if a := box(it).Area(); a > bestArea {
			best, bestArea = it, a
		}
	}
	return best, true
}
